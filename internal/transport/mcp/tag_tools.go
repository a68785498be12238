package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"clickup-mcp/internal/application/service"
)

const colorCommandHelp = "Natural language color such as 'blue', 'dark green' or 'light red'. Overrides tagBg and picks a readable tagFg."

// Tag tool registrations

func (s *Server) registerGetSpaceTags() {
	tool := newTool("get_space_tags",
		describe("List the tags defined in a space.", readOnly()),
		spaceParams(),
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleGetSpaceTags))
}

func (s *Server) registerCreateSpaceTag() {
	tool := newTool("create_space_tag",
		describe("Create a tag in a space. Colors default to white text on black.", additive()),
		spaceParams(),
		[]mcp.ToolOption{
			mcp.WithString("tagName",
				mcp.Required(),
				mcp.Description("Name of the tag."),
			),
			mcp.WithString("tagBg",
				mcp.Description("Background color as hex, e.g. #ff0000."),
			),
			mcp.WithString("tagFg",
				mcp.Description("Text color as hex, e.g. #ffffff."),
			),
			mcp.WithString("colorCommand",
				mcp.Description(colorCommandHelp),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleCreateSpaceTag))
}

func (s *Server) registerUpdateSpaceTag() {
	tool := newTool("update_space_tag",
		describe("Rename or recolor a space tag. At least one of newTagName, tagBg, tagFg or colorCommand is required.", additive()),
		spaceParams(),
		[]mcp.ToolOption{
			mcp.WithString("tagName",
				mcp.Required(),
				mcp.Description("Current name of the tag."),
			),
			mcp.WithString("newTagName",
				mcp.Description("New name for the tag."),
			),
			mcp.WithString("tagBg",
				mcp.Description("New background color as hex."),
			),
			mcp.WithString("tagFg",
				mcp.Description("New text color as hex."),
			),
			mcp.WithString("colorCommand",
				mcp.Description(colorCommandHelp),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleUpdateSpaceTag))
}

func (s *Server) registerDeleteSpaceTag() {
	tool := newTool("delete_space_tag",
		describe("Delete a tag from a space. It is removed from every task that carries it.", destructive()),
		spaceParams(),
		[]mcp.ToolOption{
			mcp.WithString("tagName",
				mcp.Required(),
				mcp.Description("Name of the tag to delete."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleDeleteSpaceTag))
}

func (s *Server) registerAddTagToTask() {
	tool := newTool("add_tag_to_task",
		describe("Attach an existing space tag to a task.", additive()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithString("tagName",
				mcp.Required(),
				mcp.Description("Name of the tag. It must already exist in the task's space."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleAddTagToTask))
}

func (s *Server) registerRemoveTagFromTask() {
	tool := newTool("remove_tag_from_task",
		describe("Detach a tag from a task. The tag stays defined in the space.", additive()),
		taskRefParams(),
		[]mcp.ToolOption{
			mcp.WithString("tagName",
				mcp.Required(),
				mcp.Description("Name of the tag."),
			),
		},
	)

	s.mcpServer.AddTool(tool, handle(s, tool.Name, s.handleRemoveTagFromTask))
}

// Tag handlers

func (s *Server) handleGetSpaceTags(ctx context.Context, in *SpaceTagsInput) (any, error) {
	tags, err := s.tagService.GetSpaceTags(ctx, in.ref())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"tags":  tags,
		"count": len(tags),
	}, nil
}

func (s *Server) handleCreateSpaceTag(ctx context.Context, in *CreateSpaceTagInput) (any, error) {
	tag, err := s.tagService.CreateSpaceTag(ctx, service.CreateSpaceTagRequest{
		Space:        in.ref(),
		Name:         in.TagName,
		BG:           in.TagBg,
		FG:           in.TagFg,
		ColorCommand: in.ColorCommand,
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"name":    tag.Name,
		"tag_bg":  tag.BG,
		"tag_fg":  tag.FG,
		"message": fmt.Sprintf("Tag '%s' created successfully", tag.Name),
	}, nil
}

func (s *Server) handleUpdateSpaceTag(ctx context.Context, in *UpdateSpaceTagInput) (any, error) {
	tag, err := s.tagService.UpdateSpaceTag(ctx, service.UpdateSpaceTagRequest{
		Space:        in.ref(),
		Name:         in.TagName,
		NewName:      in.NewTagName,
		BG:           in.TagBg,
		FG:           in.TagFg,
		ColorCommand: in.ColorCommand,
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"name":    tag.Name,
		"tag_bg":  tag.BG,
		"tag_fg":  tag.FG,
		"message": fmt.Sprintf("Tag '%s' updated successfully", tag.Name),
	}, nil
}

func (s *Server) handleDeleteSpaceTag(ctx context.Context, in *DeleteSpaceTagInput) (any, error) {
	if err := s.tagService.DeleteSpaceTag(ctx, in.ref(), in.TagName); err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Tag '%s' deleted successfully", in.TagName)), nil
}

func (s *Server) handleAddTagToTask(ctx context.Context, in *TaskTagInput) (any, error) {
	target, err := s.tagService.AddTagToTask(ctx, in.TaskRef, in.TagName)
	if err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Tag '%s' added to %s", in.TagName, taskLabel(target))), nil
}

func (s *Server) handleRemoveTagFromTask(ctx context.Context, in *TaskTagInput) (any, error) {
	target, err := s.tagService.RemoveTagFromTask(ctx, in.TaskRef, in.TagName)
	if err != nil {
		return nil, err
	}
	return successResult(fmt.Sprintf("Tag '%s' removed from %s", in.TagName, taskLabel(target))), nil
}
