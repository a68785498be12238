package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"clickup-mcp/internal/domain/workspace"
)

// Task tool registrations

func (s *Server) registerCreateTask() {
	tool := newTool("create_task",
		describe("Create a task in a list. Identify the list with listId, or listName plus optional folder or space.", additive()),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the task."),
			),
		},
		listParams(),
		taskFieldParams(),
		[]mcp.ToolOption{
			mcp.WithString("parent",
				mcp.Description("ID of the parent task, to create a subtask."),
			),
			mcp.WithArray("tags",
				mcp.Description("Names of existing space tags to attach."),
				mcp.WithStringItems(),
			),
			mcp.WithArray("assignees",
				mcp.Description("User IDs to assign."),
				mcp.Items(map[string]any{"type": "number"}),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateTask))
}

func (s *Server) registerGetTask() {
	tool := newTool("get_task",
		describe("Get a task by taskId, customTaskId, or taskName (add listName when the name is not unique).", readOnly()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithBoolean("subtasks",
				mcp.Description("Include subtasks."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetTask))
}

func (s *Server) registerGetTasks() {
	tool := newTool("get_tasks",
		describe("Get one page (up to 100) of the tasks in a list, with optional filters.", readOnly()),
		listParams(),
		[]mcp.ToolOption{
			mcp.WithBoolean("archived",
				mcp.Description("Return archived tasks."),
			),
			mcp.WithNumber("page",
				mcp.Description("Page number, starting at 0."),
				mcp.Min(0),
			),
			mcp.WithString("order_by",
				mcp.Description("Sort field."),
				mcp.Enum("id", "created", "updated", "due_date"),
			),
			mcp.WithBoolean("reverse",
				mcp.Description("Reverse the sort order."),
			),
			mcp.WithBoolean("subtasks",
				mcp.Description("Include subtasks."),
			),
			mcp.WithArray("statuses",
				mcp.Description("Only tasks in these statuses."),
				mcp.WithStringItems(),
			),
			mcp.WithBoolean("include_closed",
				mcp.Description("Include closed tasks."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetTasks))
}

func (s *Server) registerGetWorkspaceTasks() {
	tool := newTool("get_workspace_tasks",
		describe("Search tasks across the whole workspace. At least one of list_ids, space_ids, folder_ids, tags, statuses or assignees is required.", readOnly()),
		[]mcp.ToolOption{
			mcp.WithArray("list_ids", mcp.Description("Only tasks in these lists."), mcp.WithStringItems()),
			mcp.WithArray("space_ids", mcp.Description("Only tasks in these spaces."), mcp.WithStringItems()),
			mcp.WithArray("folder_ids", mcp.Description("Only tasks in these folders."), mcp.WithStringItems()),
			mcp.WithArray("tags", mcp.Description("Only tasks with these tags."), mcp.WithStringItems()),
			mcp.WithArray("statuses", mcp.Description("Only tasks in these statuses."), mcp.WithStringItems()),
			mcp.WithArray("assignees", mcp.Description("Only tasks assigned to these user IDs."), mcp.WithStringItems()),
			mcp.WithNumber("page", mcp.Description("Page number, starting at 0."), mcp.Min(0)),
			mcp.WithBoolean("include_closed", mcp.Description("Include closed tasks.")),
			mcp.WithBoolean("subtasks", mcp.Description("Include subtasks.")),
			mcp.WithString("order_by", mcp.Description("Sort field."), mcp.Enum("id", "created", "updated", "due_date")),
			mcp.WithBoolean("reverse", mcp.Description("Reverse the sort order.")),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetWorkspaceTasks))
}

func (s *Server) registerUpdateTask() {
	tool := newTool("update_task",
		describe("Update a task. At least one field to change is required.", additive()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Description("New task name."),
			),
		},
		taskFieldParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleUpdateTask))
}

func (s *Server) registerMoveTask() {
	tool := newTool("move_task",
		describe("Move a task to another list. The task is recreated in the target list and the original is deleted, so it gets a new ID. A subtask moved to another list becomes a top-level task.", destructive()),
		taskRefParams(),
		targetListParams(true),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleMoveTask))
}

func (s *Server) registerDuplicateTask() {
	tool := newTool("duplicate_task",
		describe("Copy a task into a list. The copy goes to the same list unless a target list is given. A subtask copied within its list stays under its parent; copied to another list it becomes a top-level task.", additive()),
		taskRefParams(),
		targetListParams(false),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDuplicateTask))
}

func (s *Server) registerDeleteTask() {
	tool := newTool("delete_task",
		describe("Delete a task. This action is irreversible!", destructive()),
		taskRefParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDeleteTask))
}

func (s *Server) registerGetTaskComments() {
	tool := newTool("get_task_comments",
		describe("Get up to 25 comments on a task, newest first. Pass start and startId from the oldest comment to page further back.", readOnly()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithString("start",
				mcp.Description("Date of the oldest comment already seen. "+dateHelp),
			),
			mcp.WithString("startId",
				mcp.Description("ID of the oldest comment already seen."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetTaskComments))
}

func (s *Server) registerCreateTaskComment() {
	tool := newTool("create_task_comment",
		describe("Add a comment to a task.", additive()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithString("commentText",
				mcp.Required(),
				mcp.Description("Comment text."),
			),
			mcp.WithBoolean("notifyAll",
				mcp.Description("Notify everyone watching the task, including the creator."),
			),
			mcp.WithNumber("assignee",
				mcp.Description("User ID to assign the comment to."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateTaskComment))
}

// Task handlers

func (s *Server) handleCreateTask(ctx context.Context, in *CreateTaskInput) (any, error) {
	create, err := in.toCreate(s.now())
	if err != nil {
		return nil, err
	}

	t, err := s.taskService.CreateTask(ctx, in.ref(), create)
	if err != nil {
		return nil, err
	}

	response := taskToMap(t)
	response["message"] = fmt.Sprintf("Task '%s' created successfully", t.Name)
	return response, nil
}

func (s *Server) handleGetTask(ctx context.Context, in *GetTaskInput) (any, error) {
	t, err := s.taskService.GetTask(ctx, in.TaskRef, in.Subtasks)
	if err != nil {
		return nil, err
	}
	return taskToMap(t), nil
}

func (s *Server) handleGetTasks(ctx context.Context, in *GetTasksInput) (any, error) {
	page, err := s.taskService.GetTasks(ctx, in.ref(), workspace.TaskFilter{
		Archived:      in.Archived,
		IncludeClosed: in.IncludeClosed,
		Subtasks:      in.Subtasks,
		Page:          in.Page,
		OrderBy:       in.OrderBy,
		Reverse:       in.Reverse,
		Statuses:      in.Statuses,
	})
	if err != nil {
		return nil, err
	}
	return pageResponse(page), nil
}

func (s *Server) handleGetWorkspaceTasks(ctx context.Context, in *GetWorkspaceTasksInput) (any, error) {
	page, err := s.taskService.GetWorkspaceTasks(ctx, workspace.WorkspaceTaskFilter{
		ListIDs:       in.ListIDs,
		SpaceIDs:      in.SpaceIDs,
		FolderIDs:     in.FolderIDs,
		Tags:          in.Tags,
		Statuses:      in.Statuses,
		Assignees:     in.Assignees,
		IncludeClosed: in.IncludeClosed,
		Subtasks:      in.Subtasks,
		Page:          in.Page,
		OrderBy:       in.OrderBy,
		Reverse:       in.Reverse,
	})
	if err != nil {
		return nil, err
	}
	return pageResponse(page), nil
}

func pageResponse(page *workspace.Page[workspace.Task]) map[string]interface{} {
	return map[string]interface{}{
		"tasks":     tasksToMaps(page.Items),
		"count":     len(page.Items),
		"page":      page.Page,
		"last_page": page.LastPage,
	}
}

func (s *Server) handleUpdateTask(ctx context.Context, in *UpdateTaskInput) (any, error) {
	update, err := in.toUpdate(s.now())
	if err != nil {
		return nil, err
	}

	t, err := s.taskService.UpdateTask(ctx, in.TaskRef, update)
	if err != nil {
		return nil, err
	}

	response := taskToMap(t)
	response["message"] = fmt.Sprintf("Task '%s' updated successfully", t.Name)
	return response, nil
}

func (s *Server) handleMoveTask(ctx context.Context, in *MoveTaskInput) (any, error) {
	t, err := s.taskService.MoveTask(ctx, in.TaskRef, in.TargetListArgs.ref())
	if err != nil {
		return nil, err
	}

	response := taskToMap(t)
	response["message"] = fmt.Sprintf("Task '%s' moved to list %s", t.Name, spaceLabel(t.List.Name, t.List.ID))
	return response, nil
}

func (s *Server) handleDuplicateTask(ctx context.Context, in *DuplicateTaskInput) (any, error) {
	t, err := s.taskService.DuplicateTask(ctx, in.TaskRef, in.TargetListArgs.ref())
	if err != nil {
		return nil, err
	}

	response := taskToMap(t)
	response["message"] = fmt.Sprintf("Task '%s' duplicated as %s", t.Name, t.ID)
	return response, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, in *TaskInput) (any, error) {
	target, err := s.taskService.DeleteTask(ctx, in.TaskRef)
	if err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Deleted %s", taskLabel(target))), nil
}

func (s *Server) handleGetTaskComments(ctx context.Context, in *GetTaskCommentsInput) (any, error) {
	start, err := in.Start.parse("start", s.now())
	if err != nil {
		return nil, err
	}

	comments, err := s.taskService.GetTaskComments(ctx, in.TaskRef, start, in.StartID)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(comments))
	for i := range comments {
		out = append(out, commentToMap(&comments[i]))
	}
	return map[string]interface{}{
		"comments": out,
		"count":    len(out),
	}, nil
}

func (s *Server) handleCreateTaskComment(ctx context.Context, in *CreateTaskCommentInput) (any, error) {
	c, err := s.taskService.CreateTaskComment(ctx, in.TaskRef, workspace.CreateComment{
		Text:      in.CommentText,
		NotifyAll: in.NotifyAll,
		Assignee:  in.Assignee,
	})
	if err != nil {
		return nil, err
	}

	response := commentToMap(c)
	response["message"] = "Comment created successfully"
	return response, nil
}
