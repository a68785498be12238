package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"clickup-mcp/internal/application/service"
	"clickup-mcp/internal/domain/workspace"
)

// List tool registrations

func (s *Server) registerCreateList() {
	tool := newTool("create_list",
		describe("Create a list directly in a space (not in a folder). Identify the space with spaceId or spaceName.", additive()),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the new list."),
			),
			mcp.WithString("content",
				mcp.Description("Description of the list."),
			),
			mcp.WithString("dueDate",
				mcp.Description("Due date. "+dateHelp),
			),
			mcp.WithNumber("priority",
				mcp.Description("Priority: 1 urgent, 2 high, 3 normal, 4 low."),
				mcp.Min(1),
				mcp.Max(4),
			),
			mcp.WithNumber("assignee",
				mcp.Description("User ID to assign the list to."),
			),
			mcp.WithString("status",
				mcp.Description("List status (a color name, e.g. 'red')."),
			),
		},
		spaceParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateList))
}

func (s *Server) registerCreateListInFolder() {
	tool := newTool("create_list_in_folder",
		describe("Create a list inside a folder. Use folderId, or folderName with spaceId or spaceName.", additive()),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the new list."),
			),
			mcp.WithString("content",
				mcp.Description("Description of the list."),
			),
			mcp.WithString("status",
				mcp.Description("List status (a color name, e.g. 'red')."),
			),
		},
		folderParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateListInFolder))
}

func (s *Server) registerGetList() {
	tool := newTool("get_list",
		describe("Get a list by listId, or by listName optionally narrowed by folder or space.", readOnly()),
		listParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetList))
}

func (s *Server) registerUpdateList() {
	tool := newTool("update_list",
		describe("Update a list's name, content, or status. At least one of them is required.", additive()),
		listParams(),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Description("New list name."),
			),
			mcp.WithString("content",
				mcp.Description("New list description."),
			),
			mcp.WithString("status",
				mcp.Description("New list status."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleUpdateList))
}

func (s *Server) registerDeleteList() {
	tool := newTool("delete_list",
		describe("Delete a list and ALL its tasks. This action is irreversible!", destructive()),
		listParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDeleteList))
}

// List handlers

func (s *Server) listResponse(l *workspace.List, message string) map[string]interface{} {
	response := listToMap(l, s.listService.URL(l.ID))
	if message != "" {
		response["message"] = message
	}
	return response
}

func (s *Server) handleCreateList(ctx context.Context, in *CreateListInput) (any, error) {
	create, err := in.toCreate(s.now())
	if err != nil {
		return nil, err
	}

	l, err := s.listService.CreateList(ctx, in.ref(), create)
	if err != nil {
		return nil, err
	}
	return s.listResponse(l, fmt.Sprintf("List '%s' created successfully", l.Name)), nil
}

func (s *Server) handleCreateListInFolder(ctx context.Context, in *CreateListInFolderInput) (any, error) {
	l, err := s.listService.CreateListInFolder(ctx, in.ref(), workspace.CreateList{
		Name:    in.Name,
		Content: in.Content,
		Status:  in.Status,
	})
	if err != nil {
		return nil, err
	}

	folder := ""
	if l.Folder != nil {
		folder = spaceLabel(l.Folder.Name, l.Folder.ID)
	}
	return s.listResponse(l, fmt.Sprintf("List '%s' created in folder '%s'", l.Name, folder)), nil
}

func (s *Server) handleGetList(ctx context.Context, in *ListInput) (any, error) {
	l, err := s.listService.GetList(ctx, in.ref())
	if err != nil {
		return nil, err
	}
	return s.listResponse(l, ""), nil
}

func (s *Server) handleUpdateList(ctx context.Context, in *UpdateListInput) (any, error) {
	l, err := s.listService.UpdateList(ctx, service.UpdateListRequest{
		List:    in.ref(),
		Name:    in.Name,
		Content: in.Content,
		Status:  in.Status,
	})
	if err != nil {
		return nil, err
	}
	return s.listResponse(l, fmt.Sprintf("List '%s' updated successfully", l.Name)), nil
}

func (s *Server) handleDeleteList(ctx context.Context, in *ListInput) (any, error) {
	id, err := s.listService.DeleteList(ctx, in.ref())
	if err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("List %s deleted successfully", id)), nil
}
