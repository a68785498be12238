package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
	"clickup-mcp/internal/testutil"
)

type testServices struct {
	repo      *testutil.FakeRepository
	workspace *WorkspaceService
	resolver  *Resolver
	folders   *FolderService
	lists     *ListService
	tags      *TagService
	tasks     *TaskService
}

// setupTestServices builds every service over a fake repository seeded with:
//
//	Engineering (123)
//	├── Sprint 1 (456)
//	│   └── Backlog (789)
//	├── Sprint 2 (457)
//	│   └── Backlog (790)
//	└── Inbox (791)
//	Marketing (124)
//	└── Campaigns (792)
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	repo := testutil.NewFakeRepository()
	repo.AddSpace("123", "Engineering")
	repo.AddSpace("124", "Marketing")
	repo.AddFolder("123", "456", "Sprint 1")
	repo.AddFolder("123", "457", "Sprint 2")
	repo.AddList("123", "456", "789", "Backlog")
	repo.AddList("123", "457", "790", "Backlog")
	repo.AddList("123", "", "791", "Inbox")
	repo.AddList("124", "", "792", "Campaigns")
	repo.AddTask("789", "t1", "Fix login")
	repo.AddTask("790", "t2", "Fix login")
	repo.AddTask("791", "t3", "Write docs")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ws := NewWorkspaceService(repo, testutil.TeamID, 4, logger)
	resolver := NewResolver(ws, logger)

	return &testServices{
		repo:      repo,
		workspace: ws,
		resolver:  resolver,
		folders:   NewFolderService(repo, resolver, logger),
		lists:     NewListService(repo, resolver, testutil.TeamID, logger),
		tags:      NewTagService(repo, resolver, logger),
		tasks:     NewTaskService(repo, resolver, testutil.TeamID, BulkOptions{Concurrency: 2, MaxConcurrency: 4}, logger),
	}
}

func TestWorkspaceService_GetHierarchy(t *testing.T) {
	s := setupTestServices(t)

	root, err := s.workspace.GetHierarchy(context.Background(), HierarchyOptions{})
	if err != nil {
		t.Fatalf("GetHierarchy() error = %v", err)
	}

	if root.Kind != workspace.KindWorkspace || root.ID != testutil.TeamID {
		t.Errorf("root = %+v, want workspace %s", root, testutil.TeamID)
	}
	if len(root.Children) != 2 {
		t.Fatalf("len(root.Children) = %d, want 2", len(root.Children))
	}
	eng := root.Children[0]
	if eng.Name != "Engineering" || len(eng.Children) != 3 {
		t.Errorf("Engineering children = %d, want 3", len(eng.Children))
	}
	if eng.Children[2].Kind != workspace.KindList || eng.Children[2].Name != "Inbox" {
		t.Errorf("folderless list should follow folders, got %+v", eng.Children[2])
	}
	if got := root.Count(workspace.KindTask); got != 0 {
		t.Errorf("tasks included without IncludeTasks: %d", got)
	}
}

func TestWorkspaceService_GetHierarchyWithTasks(t *testing.T) {
	s := setupTestServices(t)

	root, err := s.workspace.GetHierarchy(context.Background(), HierarchyOptions{IncludeTasks: true})
	if err != nil {
		t.Fatalf("GetHierarchy() error = %v", err)
	}
	if got := root.Count(workspace.KindTask); got != 3 {
		t.Errorf("Count(task) = %d, want 3", got)
	}
	if got := s.repo.Calls("GetTasks"); got != 4 {
		t.Errorf("GetTasks calls = %d, want one per list (4)", got)
	}
}

func TestWorkspaceService_GetHierarchyFailure(t *testing.T) {
	s := setupTestServices(t)
	s.repo.Errs["GetFolders"] = &workspace.APIError{StatusCode: 500, Message: "boom"}

	_, err := s.workspace.GetHierarchy(context.Background(), HierarchyOptions{})
	if err == nil {
		t.Fatal("GetHierarchy() expected error")
	}
	var apiErr *workspace.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "boom" {
		t.Errorf("error = %v, want wrapped APIError", err)
	}
}

func TestWorkspaceService_RenderHierarchy(t *testing.T) {
	s := setupTestServices(t)

	text, err := s.workspace.RenderHierarchy(context.Background(), HierarchyOptions{})
	if err != nil {
		t.Fatalf("RenderHierarchy() error = %v", err)
	}
	for _, want := range []string{
		"Workspace (Workspace ID: 9000)",
		"├── Engineering (Space ID: 123)",
		"│   ├── Sprint 1 (Folder ID: 456)",
		"│   │   └── Backlog (List ID: 789)",
		"└── Marketing (Space ID: 124)",
		"    └── Campaigns (List ID: 792)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("RenderHierarchy() missing line %q\n%s", want, text)
		}
	}
}

func TestWorkspaceService_TasksForListPages(t *testing.T) {
	s := setupTestServices(t)
	s.repo.PageSize = 2
	s.repo.AddTask("791", "t4", "Review docs")
	s.repo.AddTask("791", "t5", "Publish docs")

	tasks, err := s.workspace.TasksForList(context.Background(), "791")
	if err != nil {
		t.Fatalf("TasksForList() error = %v", err)
	}
	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	if strings.Join(ids, ",") != "t3,t4,t5" {
		t.Errorf("TasksForList() ids = %v, want t3,t4,t5", ids)
	}
	if got := s.repo.Calls("GetTasks"); got != 2 {
		t.Errorf("GetTasks calls = %d, want 2", got)
	}

	// name lookups see tasks beyond the first page
	target, err := s.resolver.NewLookup().ResolveTask(context.Background(), TaskRef{TaskName: "Publish docs"})
	if err != nil || target.ID != "t5" {
		t.Errorf("ResolveTask() = %+v, %v, want t5", target, err)
	}
}

func TestWorkspaceService_TasksForListPageLimit(t *testing.T) {
	repo := testutil.NewFakeRepository()
	repo.AddSpace("123", "Engineering")
	repo.AddList("123", "", "791", "Inbox")
	for i := range 5 {
		repo.AddTask("791", fmt.Sprintf("t%d", i), fmt.Sprintf("Task %d", i))
	}
	repo.PageSize = 1

	var logs bytes.Buffer
	ws := NewWorkspaceService(repo, testutil.TeamID, 1, slog.New(slog.NewTextHandler(&logs, nil)))
	ws.maxPages = 3

	tasks, err := ws.TasksForList(context.Background(), "791")
	if err != nil {
		t.Fatalf("TasksForList() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Errorf("len(tasks) = %d, want 3", len(tasks))
	}
	if !strings.Contains(logs.String(), "task page limit reached") || !strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("logs = %q, want a page limit warning", logs.String())
	}
}
