package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestTaskService_CreateTask(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	task, err := s.tasks.CreateTask(ctx, Ref{Name: "Inbox"}, workspace.CreateTask{
		Name:     "Triage bugs",
		Priority: intPtr(2),
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.List.ID != "791" {
		t.Errorf("CreateTask().List.ID = %q, want 791", task.List.ID)
	}
	if task.Priority == nil || task.Priority.Label != "high" {
		t.Errorf("CreateTask().Priority = %+v, want high", task.Priority)
	}
}

func TestTaskService_CreateTaskValidation(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   workspace.CreateTask
	}{
		{name: "missing name", in: workspace.CreateTask{}},
		{name: "blank name", in: workspace.CreateTask{Name: "   "}},
		{name: "priority out of range", in: workspace.CreateTask{Name: "x", Priority: intPtr(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.tasks.CreateTask(ctx, Ref{ID: "791"}, tt.in)
			if !errors.Is(err, workspace.ErrValidation) {
				t.Errorf("CreateTask() error = %v, want validation error", err)
			}
		})
	}
	if n := s.repo.TotalCalls(); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestTaskService_UpdateTaskRequiresField(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.tasks.UpdateTask(context.Background(), TaskRef{TaskID: "t3"}, workspace.UpdateTask{})
	if !errors.Is(err, workspace.ErrValidation) {
		t.Fatalf("UpdateTask() error = %v, want validation error", err)
	}
	if n := s.repo.TotalCalls(); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestTaskService_UpdateTask(t *testing.T) {
	s := setupTestServices(t)

	task, err := s.tasks.UpdateTask(context.Background(), TaskRef{TaskName: "Write docs"}, workspace.UpdateTask{
		Status: strPtr("in progress"),
	})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if task.ID != "t3" || task.Status.Status != "in progress" {
		t.Errorf("UpdateTask() = %+v", task)
	}
}

func TestTaskService_MoveTask(t *testing.T) {
	s := setupTestServices(t)

	moved, err := s.tasks.MoveTask(context.Background(), TaskRef{TaskID: "t3"}, Ref{Name: "Campaigns"})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if moved.List.ID != "792" || moved.Name != "Write docs" {
		t.Errorf("MoveTask() = %+v", moved)
	}
	if _, ok := s.repo.Task("t3"); ok {
		t.Error("original task still exists after move")
	}
}

func TestTaskService_DuplicateTask(t *testing.T) {
	s := setupTestServices(t)

	dup, err := s.tasks.DuplicateTask(context.Background(), TaskRef{TaskID: "t3"}, Ref{})
	if err != nil {
		t.Fatalf("DuplicateTask() error = %v", err)
	}
	if dup.ID == "t3" || dup.List.ID != "791" {
		t.Errorf("DuplicateTask() = %+v, want a new task in 791", dup)
	}
	if _, ok := s.repo.Task("t3"); !ok {
		t.Error("original task removed by duplicate")
	}
}

func TestTaskService_DuplicateTaskBlankTarget(t *testing.T) {
	s := setupTestServices(t)

	dup, err := s.tasks.DuplicateTask(context.Background(), TaskRef{TaskID: "t3"}, Ref{ID: " ", Name: "  "})
	if err != nil {
		t.Fatalf("DuplicateTask() error = %v", err)
	}
	if dup.List.ID != "791" {
		t.Errorf("DuplicateTask() list = %s, want source list 791", dup.List.ID)
	}
}

func TestTaskService_CopySubtaskParent(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	sub, err := s.tasks.CreateTask(ctx, Ref{ID: "791"}, workspace.CreateTask{Name: "Proofread", Parent: "t3"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	dup, err := s.tasks.DuplicateTask(ctx, TaskRef{TaskID: sub.ID}, Ref{})
	if err != nil {
		t.Fatalf("DuplicateTask() error = %v", err)
	}
	if dup.Parent != "t3" {
		t.Errorf("duplicate in same list parent = %q, want t3", dup.Parent)
	}

	moved, err := s.tasks.MoveTask(ctx, TaskRef{TaskID: sub.ID}, Ref{ID: "792"})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if moved.Parent != "" {
		t.Errorf("moved to another list parent = %q, want top-level", moved.Parent)
	}
}

func TestTaskService_DeleteTaskAmbiguous(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.tasks.DeleteTask(context.Background(), TaskRef{TaskName: "Fix login"})
	if !errors.Is(err, workspace.ErrAmbiguous) {
		t.Fatalf("DeleteTask() error = %v, want ambiguity", err)
	}
	if got := s.repo.Calls("DeleteTask"); got != 0 {
		t.Errorf("DeleteTask calls = %d, want 0", got)
	}
}

func TestTaskService_Comments(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()
	ref := TaskRef{TaskID: "t1"}

	if _, err := s.tasks.CreateTaskComment(ctx, ref, workspace.CreateComment{}); !errors.Is(err, workspace.ErrValidation) {
		t.Errorf("CreateTaskComment(empty) error = %v, want validation error", err)
	}

	if _, err := s.tasks.CreateTaskComment(ctx, ref, workspace.CreateComment{Text: "looks good"}); err != nil {
		t.Fatalf("CreateTaskComment() error = %v", err)
	}
	comments, err := s.tasks.GetTaskComments(ctx, ref, nil, "")
	if err != nil {
		t.Fatalf("GetTaskComments() error = %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "looks good" {
		t.Errorf("GetTaskComments() = %+v", comments)
	}
}

func TestTaskService_GetWorkspaceTasksRequiresFilter(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.tasks.GetWorkspaceTasks(context.Background(), workspace.WorkspaceTaskFilter{Page: 1})
	if !errors.Is(err, workspace.ErrValidation) {
		t.Errorf("GetWorkspaceTasks() error = %v, want validation error", err)
	}

	page, err := s.tasks.GetWorkspaceTasks(context.Background(), workspace.WorkspaceTaskFilter{ListIDs: []string{"789", "791"}})
	if err != nil {
		t.Fatalf("GetWorkspaceTasks() error = %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(page.Items))
	}
}

func TestTaskService_CreateBulkTasksPartialFailure(t *testing.T) {
	s := setupTestServices(t)
	s.repo.CreateTaskErr = func(in workspace.CreateTask) error {
		if in.Name == "Task 3" {
			return &workspace.APIError{StatusCode: 400, Code: "INPUT_005", Message: "Task name invalid"}
		}
		return nil
	}

	items := make([]workspace.CreateTask, 5)
	for i := range items {
		items[i] = workspace.CreateTask{Name: "Task " + string(rune('1'+i))}
	}

	res, err := s.tasks.CreateBulkTasks(context.Background(), Ref{Name: "Inbox"}, items, 0)
	if err != nil {
		t.Fatalf("CreateBulkTasks() error = %v", err)
	}
	if len(res.Successful) != 4 || len(res.Failed) != 1 || res.Totals.Total != 5 {
		t.Fatalf("result totals = %+v, successful=%d failed=%d", res.Totals, len(res.Successful), len(res.Failed))
	}
	if res.Failed[0].Item.Name != "Task 3" {
		t.Errorf("Failed[0].Item = %+v", res.Failed[0].Item)
	}
	if !strings.Contains(res.Failed[0].Err.Error(), "Task name invalid") {
		t.Errorf("Failed[0].Err = %v, want remote message", res.Failed[0].Err)
	}
	if got := len(s.repo.TasksIn("791")); got != 5 {
		t.Errorf("tasks in Inbox = %d, want 1 existing + 4 created", got)
	}
}

func TestTaskService_CreateBulkTasksValidatesAllItemsFirst(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.tasks.CreateBulkTasks(context.Background(), Ref{ID: "791"}, []workspace.CreateTask{{Name: "ok"}, {Name: ""}}, 0)
	if !errors.Is(err, workspace.ErrValidation) || !strings.Contains(err.Error(), "tasks[1]") {
		t.Fatalf("CreateBulkTasks() error = %v, want validation error for tasks[1]", err)
	}
	if n := s.repo.TotalCalls(); n != 0 {
		t.Errorf("remote calls = %d, want 0", n)
	}
}

func TestTaskService_UpdateBulkTasksSharesSnapshot(t *testing.T) {
	s := setupTestServices(t)

	items := []BulkUpdateItem{
		{TaskRef: TaskRef{TaskName: "Write docs"}, UpdateTask: workspace.UpdateTask{Priority: intPtr(1)}},
		{TaskRef: TaskRef{TaskName: "Fix login", Scope: Scope{FolderName: "Sprint 1", ListName: "Backlog"}}, UpdateTask: workspace.UpdateTask{Name: strPtr("Fix SSO login")}},
		{TaskRef: TaskRef{TaskName: "Fix login"}, UpdateTask: workspace.UpdateTask{Status: strPtr("done")}},
	}

	res, err := s.tasks.UpdateBulkTasks(context.Background(), items, 3)
	if err != nil {
		t.Fatalf("UpdateBulkTasks() error = %v", err)
	}
	if res.Totals.Success+res.Totals.Failure != 3 {
		t.Errorf("Totals = %+v", res.Totals)
	}
	if got := s.repo.Calls("GetSpaces"); got != 1 {
		t.Errorf("GetSpaces calls = %d, want one shared snapshot", got)
	}
}

func TestTaskService_DeleteBulkTasks(t *testing.T) {
	s := setupTestServices(t)

	res, err := s.tasks.DeleteBulkTasks(context.Background(), []TaskRef{{TaskID: "t1"}, {TaskID: "missing"}, {TaskName: "Write docs"}}, 0)
	if err != nil {
		t.Fatalf("DeleteBulkTasks() error = %v", err)
	}
	if res.Totals.Success != 2 || res.Totals.Failure != 1 {
		t.Errorf("Totals = %+v, want 2 success 1 failure", res.Totals)
	}
	if !errors.Is(res.Failed[0].Err, workspace.ErrNotFound) {
		t.Errorf("Failed[0].Err = %v, want not found", res.Failed[0].Err)
	}
}

func TestTaskService_DeleteBulkTasksCancelled(t *testing.T) {
	s := setupTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []TaskRef{{TaskID: "t1"}, {TaskID: "t2"}, {TaskID: "t3"}}
	res, err := s.tasks.DeleteBulkTasks(ctx, items, 0)
	if err != nil {
		t.Fatalf("DeleteBulkTasks() error = %v", err)
	}
	if res.Totals.Total != len(items) || res.Totals.Failure != len(items) {
		t.Errorf("Totals = %+v, want every item failed", res.Totals)
	}
	for _, f := range res.Failed {
		if !errors.Is(f.Err, context.Canceled) {
			t.Errorf("Failed[%d].Err = %v, want context.Canceled", f.Index, f.Err)
		}
	}
	if got := s.repo.Calls("DeleteTask"); got != 0 {
		t.Errorf("DeleteTask calls = %d, want 0", got)
	}
}

func TestTaskService_MoveBulkTasks(t *testing.T) {
	s := setupTestServices(t)

	res, err := s.tasks.MoveBulkTasks(context.Background(), []TaskRef{{TaskID: "t1"}, {TaskID: "t2"}}, Ref{Name: "Campaigns"}, 2)
	if err != nil {
		t.Fatalf("MoveBulkTasks() error = %v", err)
	}
	if res.Totals.Success != 2 {
		t.Errorf("Totals = %+v", res.Totals)
	}
	if got := len(s.repo.TasksIn("792")); got != 2 {
		t.Errorf("tasks in Campaigns = %d, want 2", got)
	}
}

func TestTaskService_BulkConcurrencyBound(t *testing.T) {
	s := setupTestServices(t)
	s.repo.Delay = 5 * time.Millisecond

	items := make([]workspace.CreateTask, 10)
	for i := range items {
		items[i] = workspace.CreateTask{Name: "n"}
	}

	// max_concurrency is 4
	if _, err := s.tasks.CreateBulkTasks(context.Background(), Ref{ID: "791"}, items, 50); err != nil {
		t.Fatalf("CreateBulkTasks() error = %v", err)
	}
	if got := s.repo.MaxInFlight(); got > 4 {
		t.Errorf("MaxInFlight = %d, want <= 4", got)
	}
}
