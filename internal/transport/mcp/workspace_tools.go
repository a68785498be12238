package mcp

import (
	"context"

	"clickup-mcp/internal/application/service"
)

func (s *Server) registerGetWorkspaceHierarchy() {
	tool := newTool("get_workspace_hierarchy",
		describe("Get the complete workspace hierarchy (spaces, folders, lists) as a tree with IDs. Use it to discover names and IDs before calling other tools.", readOnly()),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetWorkspaceHierarchy))
}

func (s *Server) handleGetWorkspaceHierarchy(ctx context.Context, _ *NoInput) (any, error) {
	tree, err := s.workspaceService.RenderHierarchy(ctx, service.HierarchyOptions{})
	if err != nil {
		return nil, err
	}
	return textPayload(tree), nil
}
