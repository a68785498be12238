package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"clickup-mcp/internal/application/service"
)

// Folder tool registrations

func (s *Server) registerCreateFolder() {
	tool := newTool("create_folder",
		describe("Create a folder in a space. Identify the space with spaceId or spaceName.", additive()),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the new folder."),
			),
			mcp.WithBoolean("override_statuses",
				mcp.Description("Whether the folder uses its own statuses instead of the space's."),
			),
		},
		spaceParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateFolder))
}

func (s *Server) registerGetFolder() {
	tool := newTool("get_folder",
		describe("Get a folder and its lists. Use folderId, or folderName with spaceId or spaceName.", readOnly()),
		folderParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetFolder))
}

func (s *Server) registerUpdateFolder() {
	tool := newTool("update_folder",
		describe("Rename a folder or change its status override. At least one of name or override_statuses is required.", additive()),
		folderParams(),
		[]mcp.ToolOption{
			mcp.WithString("name",
				mcp.Description("New folder name."),
			),
			mcp.WithBoolean("override_statuses",
				mcp.Description("Whether the folder uses its own statuses."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleUpdateFolder))
}

func (s *Server) registerDeleteFolder() {
	tool := newTool("delete_folder",
		describe("Delete a folder with ALL its lists and tasks. This action is irreversible!", destructive()),
		folderParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDeleteFolder))
}

// Folder handlers

func (s *Server) handleCreateFolder(ctx context.Context, in *CreateFolderInput) (any, error) {
	f, err := s.folderService.CreateFolder(ctx, service.CreateFolderRequest{
		Space:            in.ref(),
		Name:             in.Name,
		OverrideStatuses: in.OverrideStatuses,
	})
	if err != nil {
		return nil, err
	}

	response := folderToMap(f)
	response["message"] = fmt.Sprintf("Folder '%s' created in space '%s'", f.Name, spaceLabel(f.Space.Name, f.Space.ID))
	return response, nil
}

func (s *Server) handleGetFolder(ctx context.Context, in *FolderInput) (any, error) {
	f, err := s.folderService.GetFolder(ctx, in.ref())
	if err != nil {
		return nil, err
	}
	return folderToMap(f), nil
}

func (s *Server) handleUpdateFolder(ctx context.Context, in *UpdateFolderInput) (any, error) {
	f, err := s.folderService.UpdateFolder(ctx, service.UpdateFolderRequest{
		Folder:           in.ref(),
		Name:             in.Name,
		OverrideStatuses: in.OverrideStatuses,
	})
	if err != nil {
		return nil, err
	}

	response := folderToMap(f)
	response["message"] = fmt.Sprintf("Folder '%s' updated successfully", f.Name)
	return response, nil
}

func (s *Server) handleDeleteFolder(ctx context.Context, in *FolderInput) (any, error) {
	id, err := s.folderService.DeleteFolder(ctx, in.ref())
	if err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Folder %s deleted successfully", id)), nil
}

func spaceLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
