package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"clickup-mcp/internal/application/service"
	"clickup-mcp/internal/domain/workspace"
)

const bulkHelp = " Items run in parallel; a failing item does not stop the others. The result lists successful and failed items with totals."

// Bulk tool registrations

func (s *Server) registerCreateBulkTasks() {
	tool := newTool("create_bulk_tasks",
		describe("Create several tasks in one list."+bulkHelp, additive()),
		listParams(),
		[]mcp.ToolOption{
			mcp.WithArray("tasks",
				mcp.Required(),
				mcp.Description("Tasks to create. Each needs a name."),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": mergeSchema(taskFieldSchema(), map[string]any{
						"parent":    map[string]any{"type": "string"},
						"tags":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"assignees": map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
					}),
					"required": []string{"name"},
				}),
			),
		},
		bulkOptionsParam(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateBulkTasks))
}

func (s *Server) registerUpdateBulkTasks() {
	tool := newTool("update_bulk_tasks",
		describe("Update several tasks. Each item identifies a task and carries the fields to change."+bulkHelp, additive()),
		[]mcp.ToolOption{
			mcp.WithArray("tasks",
				mcp.Required(),
				mcp.Description("Updates to apply. Each item needs taskId, customTaskId or taskName, and at least one field."),
				mcp.Items(map[string]any{
					"type":       "object",
					"properties": mergeSchema(taskRefSchema, taskFieldSchema()),
				}),
			),
		},
		bulkOptionsParam(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleUpdateBulkTasks))
}

func (s *Server) registerMoveBulkTasks() {
	tool := newTool("move_bulk_tasks",
		describe("Move several tasks to one list. Moved tasks are recreated and get new IDs."+bulkHelp, destructive()),
		[]mcp.ToolOption{
			mcp.WithArray("tasks",
				mcp.Required(),
				mcp.Description("Tasks to move, each identified by taskId, customTaskId or taskName."),
				mcp.Items(map[string]any{
					"type":       "object",
					"properties": taskRefSchema,
				}),
			),
		},
		targetListParams(true),
		bulkOptionsParam(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleMoveBulkTasks))
}

func (s *Server) registerDeleteBulkTasks() {
	tool := newTool("delete_bulk_tasks",
		describe("Delete several tasks. This action is irreversible!"+bulkHelp, destructive()),
		[]mcp.ToolOption{
			mcp.WithArray("tasks",
				mcp.Required(),
				mcp.Description("Tasks to delete, each identified by taskId, customTaskId or taskName."),
				mcp.Items(map[string]any{
					"type":       "object",
					"properties": taskRefSchema,
				}),
			),
		},
		bulkOptionsParam(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDeleteBulkTasks))
}

// Bulk handlers

func (s *Server) handleCreateBulkTasks(ctx context.Context, in *CreateBulkTasksInput) (any, error) {
	now := s.now()
	items := make([]workspace.CreateTask, 0, len(in.Tasks))
	for i, item := range in.Tasks {
		create, err := item.toCreate(now)
		if err != nil {
			return nil, itemError(i, err)
		}
		items = append(items, create)
	}

	res, err := s.taskService.CreateBulkTasks(ctx, in.ref(), items, in.Options.Concurrency)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBulk("create", res.Totals.Success, res.Totals.Failure)
	return res, nil
}

func (s *Server) handleUpdateBulkTasks(ctx context.Context, in *UpdateBulkTasksInput) (any, error) {
	now := s.now()
	items := make([]service.BulkUpdateItem, 0, len(in.Tasks))
	for i, item := range in.Tasks {
		update, err := item.toUpdate(now)
		if err != nil {
			return nil, itemError(i, err)
		}
		items = append(items, service.BulkUpdateItem{TaskRef: item.TaskRef, UpdateTask: update})
	}

	res, err := s.taskService.UpdateBulkTasks(ctx, items, in.Options.Concurrency)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBulk("update", res.Totals.Success, res.Totals.Failure)
	return res, nil
}

func (s *Server) handleMoveBulkTasks(ctx context.Context, in *MoveBulkTasksInput) (any, error) {
	res, err := s.taskService.MoveBulkTasks(ctx, in.Tasks, in.TargetListArgs.ref(), in.Options.Concurrency)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBulk("move", res.Totals.Success, res.Totals.Failure)
	return res, nil
}

func (s *Server) handleDeleteBulkTasks(ctx context.Context, in *DeleteBulkTasksInput) (any, error) {
	res, err := s.taskService.DeleteBulkTasks(ctx, in.Tasks, in.Options.Concurrency)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBulk("delete", res.Totals.Success, res.Totals.Failure)
	return res, nil
}

// itemError prefixes an item conversion error with its position.
func itemError(i int, err error) error {
	return workspace.NewValidationError("tasks", "tasks[%d].%v", i, err)
}
