package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"clickup-mcp/internal/domain/workspace"
)

// maxTaskPages bounds how many 100-task pages are read per list.
const maxTaskPages = 50

// WorkspaceService fetches the workspace hierarchy and renders it.
// Every call is a full fetch; nothing is cached between calls.
type WorkspaceService struct {
	repo        workspace.Repository
	teamID      string
	concurrency int
	maxPages    int
	logger      *slog.Logger
}

// NewWorkspaceService creates a new workspace service for the given team.
// concurrency bounds the per-space and per-list fan-out of a fetch.
func NewWorkspaceService(repo workspace.Repository, teamID string, concurrency int, logger *slog.Logger) *WorkspaceService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkspaceService{
		repo:        repo,
		teamID:      teamID,
		concurrency: concurrency,
		maxPages:    maxTaskPages,
		logger:      logger,
	}
}

// TeamID returns the workspace ID this service reads.
func (s *WorkspaceService) TeamID() string {
	return s.teamID
}

// HierarchyOptions controls what GetHierarchy includes.
type HierarchyOptions struct {
	IncludeTasks bool
}

// GetHierarchy fetches spaces, folders, lists and optionally tasks and
// assembles them under a synthetic workspace root. Any failed request fails
// the whole fetch.
func (s *WorkspaceService) GetHierarchy(ctx context.Context, opts HierarchyOptions) (*workspace.Node, error) {
	start := time.Now()

	spaces, err := s.repo.GetSpaces(ctx, s.teamID)
	if err != nil {
		return nil, errors.Wrap(err, "get spaces")
	}

	root := workspace.NewRoot(s.teamID)
	nodes := make([]*workspace.Node, len(spaces))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sp := range spaces {
		node := &workspace.Node{ID: sp.ID, Name: sp.Name, Kind: workspace.KindSpace}
		nodes[i] = node
		g.Go(func() error {
			return s.fillSpace(gctx, node)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.Add(n)
	}

	if opts.IncludeTasks {
		if err := s.fillTasks(ctx, root); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("hierarchy fetched",
		"team_id", s.teamID,
		"spaces", len(spaces),
		"lists", root.Count(workspace.KindList),
		"tasks", opts.IncludeTasks,
		"duration", time.Since(start),
	)
	return root, nil
}

// fillSpace adds folders (with their lists) and folderless lists to node.
func (s *WorkspaceService) fillSpace(ctx context.Context, node *workspace.Node) error {
	folders, err := s.repo.GetFolders(ctx, node.ID)
	if err != nil {
		return errors.Wrapf(err, "get folders of space %s", node.ID)
	}
	for _, f := range folders {
		fn := node.Add(&workspace.Node{ID: f.ID, Name: f.Name, Kind: workspace.KindFolder})
		for _, l := range f.Lists {
			fn.Add(&workspace.Node{ID: l.ID, Name: l.Name, Kind: workspace.KindList})
		}
	}

	lists, err := s.repo.GetFolderlessLists(ctx, node.ID)
	if err != nil {
		return errors.Wrapf(err, "get lists of space %s", node.ID)
	}
	for _, l := range lists {
		node.Add(&workspace.Node{ID: l.ID, Name: l.Name, Kind: workspace.KindList})
	}
	return nil
}

// fillTasks attaches task nodes to every list under root.
func (s *WorkspaceService) fillTasks(ctx context.Context, root *workspace.Node) error {
	var lists []*workspace.Node
	root.Walk(func(n *workspace.Node, _ []*workspace.Node) bool {
		if n.Kind == workspace.KindList {
			lists = append(lists, n)
			return false
		}
		return true
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, list := range lists {
		g.Go(func() error {
			tasks, err := s.TasksForList(gctx, list.ID)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				list.Add(&workspace.Node{ID: t.ID, Name: t.Name, Kind: workspace.KindTask})
			}
			return nil
		})
	}
	return g.Wait()
}

// TasksForList returns every open and closed task of a list, subtasks
// included. Reading stops after maxPages pages with a warning.
func (s *WorkspaceService) TasksForList(ctx context.Context, listID string) ([]workspace.Task, error) {
	var tasks []workspace.Task
	for page := 0; ; page++ {
		if page == s.maxPages {
			s.logger.Warn("task page limit reached, remaining tasks skipped",
				"list_id", listID,
				"pages", page,
				"tasks", len(tasks),
			)
			break
		}
		res, err := s.repo.GetTasks(ctx, listID, workspace.TaskFilter{
			Page:          page,
			IncludeClosed: true,
			Subtasks:      true,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "get tasks of list %s", listID)
		}
		tasks = append(tasks, res.Items...)
		if res.LastPage || len(res.Items) == 0 {
			break
		}
	}
	return tasks, nil
}

// RenderHierarchy fetches the hierarchy and renders it as tree text.
func (s *WorkspaceService) RenderHierarchy(ctx context.Context, opts HierarchyOptions) (string, error) {
	root, err := s.GetHierarchy(ctx, opts)
	if err != nil {
		return "", err
	}
	return workspace.Render(root), nil
}
