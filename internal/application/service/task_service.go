package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

// BulkOptions bounds bulk operation parallelism.
type BulkOptions struct {
	Concurrency    int
	MaxConcurrency int
}

// TaskService provides task, comment and bulk task operations.
type TaskService struct {
	repo     workspace.Repository
	resolver *Resolver
	teamID   string
	bulk     BulkOptions
	logger   *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(repo workspace.Repository, resolver *Resolver, teamID string, bulk BulkOptions, logger *slog.Logger) *TaskService {
	if bulk.Concurrency < 1 {
		bulk.Concurrency = 1
	}
	if bulk.MaxConcurrency < bulk.Concurrency {
		bulk.MaxConcurrency = bulk.Concurrency
	}
	return &TaskService{
		repo:     repo,
		resolver: resolver,
		teamID:   teamID,
		bulk:     bulk,
		logger:   logger,
	}
}

// concurrency returns the worker count for a bulk call; 0 means default.
func (s *TaskService) concurrency(requested int) int {
	switch {
	case requested <= 0:
		return s.bulk.Concurrency
	case requested > s.bulk.MaxConcurrency:
		return s.bulk.MaxConcurrency
	}
	return requested
}

func validateCreateTask(in workspace.CreateTask) error {
	if strings.TrimSpace(in.Name) == "" {
		return workspace.NewValidationError("name", "name is required")
	}
	if in.Priority != nil && (*in.Priority < 1 || *in.Priority > 4) {
		return workspace.NewValidationError("priority", "priority must be between 1 (urgent) and 4 (low)")
	}
	return nil
}

func validateUpdateTask(in workspace.UpdateTask) error {
	if in.IsEmpty() {
		return workspace.NewValidationError("name", "at least one field to update must be provided")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return workspace.NewValidationError("name", "name cannot be empty")
	}
	if in.Priority != nil && (*in.Priority < 1 || *in.Priority > 4) {
		return workspace.NewValidationError("priority", "priority must be between 1 (urgent) and 4 (low)")
	}
	return nil
}

// CreateTask creates a task in a list.
func (s *TaskService) CreateTask(ctx context.Context, list Ref, in workspace.CreateTask) (*workspace.Task, error) {
	if err := validateCreateTask(in); err != nil {
		return nil, err
	}
	listID, err := s.resolver.Resolve(ctx, workspace.KindList, list)
	if err != nil {
		return nil, err
	}
	return s.createTask(ctx, listID, in)
}

func (s *TaskService) createTask(ctx context.Context, listID string, in workspace.CreateTask) (*workspace.Task, error) {
	t, err := s.repo.CreateTask(ctx, listID, in)
	if err != nil {
		s.logger.Error("failed to create task", "list_id", listID, "name", in.Name, "error", err)
		return nil, errors.Wrapf(err, "create task %q", in.Name)
	}
	s.logger.Info("task created", "id", t.ID, "name", t.Name, "list_id", listID)
	return t, nil
}

// GetTask retrieves a task.
func (s *TaskService) GetTask(ctx context.Context, ref TaskRef, subtasks bool) (*workspace.Task, error) {
	target, err := s.resolver.NewLookup().ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetTask(ctx, target, subtasks)
	if err != nil {
		return nil, errors.Wrap(err, "get task")
	}
	return t, nil
}

// GetTasks returns one page of the tasks in a list.
func (s *TaskService) GetTasks(ctx context.Context, list Ref, filter workspace.TaskFilter) (*workspace.Page[workspace.Task], error) {
	if filter.Page < 0 {
		return nil, workspace.NewValidationError("page", "page must not be negative")
	}
	listID, err := s.resolver.Resolve(ctx, workspace.KindList, list)
	if err != nil {
		return nil, err
	}
	page, err := s.repo.GetTasks(ctx, listID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "get tasks")
	}
	return page, nil
}

// GetWorkspaceTasks returns one page of tasks across the workspace.
// At least one narrowing filter is required.
func (s *TaskService) GetWorkspaceTasks(ctx context.Context, filter workspace.WorkspaceTaskFilter) (*workspace.Page[workspace.Task], error) {
	if filter.IsEmpty() {
		return nil, workspace.NewValidationError("filters", "at least one filter (tags, list_ids, folder_ids, space_ids, statuses, assignees) is required")
	}
	if filter.Page < 0 {
		return nil, workspace.NewValidationError("page", "page must not be negative")
	}
	page, err := s.repo.GetWorkspaceTasks(ctx, s.teamID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "get workspace tasks")
	}
	return page, nil
}

// UpdateTask changes the supplied fields of a task.
func (s *TaskService) UpdateTask(ctx context.Context, ref TaskRef, in workspace.UpdateTask) (*workspace.Task, error) {
	if err := validateUpdateTask(in); err != nil {
		return nil, err
	}
	return s.updateTask(ctx, s.resolver.NewLookup(), ref, in)
}

func (s *TaskService) updateTask(ctx context.Context, lk *Lookup, ref TaskRef, in workspace.UpdateTask) (*workspace.Task, error) {
	target, err := lk.ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.UpdateTask(ctx, target, in)
	if err != nil {
		s.logger.Error("failed to update task", "id", target.ID, "error", err)
		return nil, errors.Wrapf(err, "update task %s", target.ID)
	}
	s.logger.Info("task updated", "id", t.ID)
	return t, nil
}

// MoveTask moves a task to another list. The task is recreated in the
// target list and the original is deleted, so the result has a new ID.
func (s *TaskService) MoveTask(ctx context.Context, ref TaskRef, targetList Ref) (*workspace.Task, error) {
	lk := s.resolver.NewLookup()
	listID, err := lk.Resolve(ctx, workspace.KindList, targetList)
	if err != nil {
		return nil, err
	}
	return s.moveTask(ctx, lk, ref, listID)
}

func (s *TaskService) moveTask(ctx context.Context, lk *Lookup, ref TaskRef, listID string) (*workspace.Task, error) {
	target, err := lk.ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	src, err := s.repo.GetTask(ctx, target, false)
	if err != nil {
		return nil, errors.Wrapf(err, "get task %s", target.ID)
	}

	moved, err := s.createTask(ctx, listID, copyOf(src, listID))
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteTask(ctx, workspace.TaskTarget{ID: src.ID}); err != nil {
		s.logger.Error("task copied but original not deleted", "id", src.ID, "copy_id", moved.ID, "error", err)
		return nil, errors.Wrapf(err, "task copied to %s as %s but original %s was not deleted", listID, moved.ID, src.ID)
	}

	s.logger.Info("task moved", "from_id", src.ID, "to_id", moved.ID, "list_id", listID)
	return moved, nil
}

// DuplicateTask copies a task into targetList, or into its own list when
// targetList is empty.
func (s *TaskService) DuplicateTask(ctx context.Context, ref TaskRef, targetList Ref) (*workspace.Task, error) {
	lk := s.resolver.NewLookup()
	target, err := lk.ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	src, err := s.repo.GetTask(ctx, target, false)
	if err != nil {
		return nil, errors.Wrapf(err, "get task %s", target.ID)
	}

	listID := src.List.ID
	if strings.TrimSpace(targetList.ID) != "" || strings.TrimSpace(targetList.Name) != "" {
		if listID, err = lk.Resolve(ctx, workspace.KindList, targetList); err != nil {
			return nil, err
		}
	}
	return s.createTask(ctx, listID, copyOf(src, listID))
}

// copyOf returns the create input that reproduces src in listID. Status is
// left to the target list's default since statuses differ between lists.
// A subtask keeps its parent only within its own list.
func copyOf(src *workspace.Task, listID string) workspace.CreateTask {
	in := workspace.CreateTask{
		Name:        src.Name,
		Description: src.Description,
		DueDate:     src.DueDate,
		StartDate:   src.StartDate,
	}
	if listID == src.List.ID {
		in.Parent = src.Parent
	}
	if in.Description == "" {
		in.Description = src.TextContent
	}
	if src.Priority != nil && src.Priority.ID > 0 {
		p := src.Priority.ID
		in.Priority = &p
	}
	for _, tag := range src.Tags {
		in.Tags = append(in.Tags, tag.Name)
	}
	for _, u := range src.Assignees {
		in.Assignees = append(in.Assignees, u.ID)
	}
	return in
}

// DeleteTask deletes a task and returns the resolved target.
func (s *TaskService) DeleteTask(ctx context.Context, ref TaskRef) (workspace.TaskTarget, error) {
	return s.deleteTask(ctx, s.resolver.NewLookup(), ref)
}

func (s *TaskService) deleteTask(ctx context.Context, lk *Lookup, ref TaskRef) (workspace.TaskTarget, error) {
	target, err := lk.ResolveTask(ctx, ref)
	if err != nil {
		return workspace.TaskTarget{}, err
	}
	if err := s.repo.DeleteTask(ctx, target); err != nil {
		s.logger.Error("failed to delete task", "id", target.ID, "error", err)
		return workspace.TaskTarget{}, errors.Wrapf(err, "delete task %s", target.ID)
	}
	s.logger.Info("task deleted", "id", target.ID)
	return target, nil
}

// GetTaskComments returns comments on a task, newest first. start and
// startID page backwards from an earlier response.
func (s *TaskService) GetTaskComments(ctx context.Context, ref TaskRef, start *time.Time, startID string) ([]workspace.Comment, error) {
	target, err := s.resolver.NewLookup().ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.GetTaskComments(ctx, target, start, startID)
	if err != nil {
		return nil, errors.Wrap(err, "get task comments")
	}
	return comments, nil
}

// CreateTaskComment adds a comment to a task.
func (s *TaskService) CreateTaskComment(ctx context.Context, ref TaskRef, in workspace.CreateComment) (*workspace.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, workspace.NewValidationError("commentText", "commentText is required")
	}
	target, err := s.resolver.NewLookup().ResolveTask(ctx, ref)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.CreateTaskComment(ctx, target, in)
	if err != nil {
		s.logger.Error("failed to create comment", "task_id", target.ID, "error", err)
		return nil, errors.Wrap(err, "create task comment")
	}
	s.logger.Info("comment created", "id", c.ID, "task_id", target.ID)
	return c, nil
}

// Bulk operations

// BulkUpdateItem names one task and the fields to change on it.
type BulkUpdateItem struct {
	TaskRef
	workspace.UpdateTask
}

// CreateBulkTasks creates every item in one list. The list is resolved once;
// item failures are reported in the result.
func (s *TaskService) CreateBulkTasks(ctx context.Context, list Ref, items []workspace.CreateTask, concurrency int) (*BatchResult[workspace.CreateTask, *workspace.Task], error) {
	if len(items) == 0 {
		return nil, workspace.NewValidationError("tasks", "tasks must contain at least one item")
	}
	for i, in := range items {
		if err := validateCreateTask(in); err != nil {
			return nil, workspace.NewValidationError("tasks", "tasks[%d]: %s", i, err.Error())
		}
	}

	listID, err := s.resolver.Resolve(ctx, workspace.KindList, list)
	if err != nil {
		return nil, err
	}

	res := RunBatch(ctx, items, s.concurrency(concurrency), func(ctx context.Context, in workspace.CreateTask) (*workspace.Task, error) {
		return s.createTask(ctx, listID, in)
	})
	s.logBatch(ctx, "create", res.Totals)
	return res, nil
}

// UpdateBulkTasks applies each item's update. Items are resolved against one
// shared hierarchy snapshot.
func (s *TaskService) UpdateBulkTasks(ctx context.Context, items []BulkUpdateItem, concurrency int) (*BatchResult[BulkUpdateItem, *workspace.Task], error) {
	if len(items) == 0 {
		return nil, workspace.NewValidationError("tasks", "tasks must contain at least one item")
	}
	for i, item := range items {
		if item.TaskRef.IsZero() {
			return nil, workspace.NewValidationError("tasks", "tasks[%d]: either taskId, customTaskId or taskName is required", i)
		}
		if err := validateUpdateTask(item.UpdateTask); err != nil {
			return nil, workspace.NewValidationError("tasks", "tasks[%d]: %s", i, err.Error())
		}
	}

	lk := s.resolver.NewLookup()
	res := RunBatch(ctx, items, s.concurrency(concurrency), func(ctx context.Context, item BulkUpdateItem) (*workspace.Task, error) {
		return s.updateTask(ctx, lk, item.TaskRef, item.UpdateTask)
	})
	s.logBatch(ctx, "update", res.Totals)
	return res, nil
}

// MoveBulkTasks moves every item to one target list.
func (s *TaskService) MoveBulkTasks(ctx context.Context, items []TaskRef, targetList Ref, concurrency int) (*BatchResult[TaskRef, *workspace.Task], error) {
	if err := validateRefs(items); err != nil {
		return nil, err
	}

	lk := s.resolver.NewLookup()
	listID, err := lk.Resolve(ctx, workspace.KindList, targetList)
	if err != nil {
		return nil, err
	}

	res := RunBatch(ctx, items, s.concurrency(concurrency), func(ctx context.Context, ref TaskRef) (*workspace.Task, error) {
		return s.moveTask(ctx, lk, ref, listID)
	})
	s.logBatch(ctx, "move", res.Totals)
	return res, nil
}

// DeleteBulkTasks deletes every item.
func (s *TaskService) DeleteBulkTasks(ctx context.Context, items []TaskRef, concurrency int) (*BatchResult[TaskRef, workspace.TaskTarget], error) {
	if err := validateRefs(items); err != nil {
		return nil, err
	}

	lk := s.resolver.NewLookup()
	res := RunBatch(ctx, items, s.concurrency(concurrency), func(ctx context.Context, ref TaskRef) (workspace.TaskTarget, error) {
		return s.deleteTask(ctx, lk, ref)
	})
	s.logBatch(ctx, "delete", res.Totals)
	return res, nil
}

func validateRefs(items []TaskRef) error {
	if len(items) == 0 {
		return workspace.NewValidationError("tasks", "tasks must contain at least one item")
	}
	for i, ref := range items {
		if ref.IsZero() {
			return workspace.NewValidationError("tasks", "tasks[%d]: either taskId, customTaskId or taskName is required", i)
		}
	}
	return nil
}

func (s *TaskService) logBatch(ctx context.Context, op string, totals Totals) {
	level := slog.LevelInfo
	if totals.Failure > 0 {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "bulk operation finished",
		"operation", op,
		"total", totals.Total,
		"success", totals.Success,
		"failure", totals.Failure,
	)
}
