package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// newTool builds a tool from groups of options.
func newTool(name string, groups ...[]mcp.ToolOption) mcp.Tool {
	var opts []mcp.ToolOption
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return mcp.NewTool(name, opts...)
}

func describe(description string, annotations ...mcp.ToolOption) []mcp.ToolOption {
	return append([]mcp.ToolOption{mcp.WithDescription(description)}, annotations...)
}

func readOnly() mcp.ToolOption {
	return mcp.WithReadOnlyHintAnnotation(true)
}

func destructive() mcp.ToolOption {
	return mcp.WithDestructiveHintAnnotation(true)
}

func additive() mcp.ToolOption {
	return mcp.WithDestructiveHintAnnotation(false)
}

func spaceParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("spaceId",
			mcp.Description("ID of the space. Takes precedence over spaceName."),
		),
		mcp.WithString("spaceName",
			mcp.Description("Name of the space (case-insensitive). Only used when spaceId is not given."),
		),
	}
}

func folderParams() []mcp.ToolOption {
	return append([]mcp.ToolOption{
		mcp.WithString("folderId",
			mcp.Description("ID of the folder. Takes precedence over folderName."),
		),
		mcp.WithString("folderName",
			mcp.Description("Name of the folder. Requires spaceId or spaceName."),
		),
	}, spaceParams()...)
}

func listParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("listId",
			mcp.Description("ID of the list. Takes precedence over listName."),
		),
		mcp.WithString("listName",
			mcp.Description("Name of the list. Add folderName or spaceName when several lists share the name."),
		),
		mcp.WithString("folderId",
			mcp.Description("Optional folder ID narrowing the list search."),
		),
		mcp.WithString("folderName",
			mcp.Description("Optional folder name narrowing the list search."),
		),
		mcp.WithString("spaceId",
			mcp.Description("Optional space ID narrowing the search."),
		),
		mcp.WithString("spaceName",
			mcp.Description("Optional space name narrowing the search."),
		),
	}
}

func taskRefParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("taskId",
			mcp.Description("ID of the task. Values shaped like DEV-123 are treated as custom task IDs."),
		),
		mcp.WithString("customTaskId",
			mcp.Description("Custom task ID, such as DEV-123."),
		),
		mcp.WithString("taskName",
			mcp.Description("Name of the task. Add listName (or listId) when several tasks share the name."),
		),
		mcp.WithString("listId",
			mcp.Description("Optional list ID narrowing a taskName search."),
		),
		mcp.WithString("listName",
			mcp.Description("Optional list name narrowing a taskName search."),
		),
		mcp.WithString("folderName",
			mcp.Description("Optional folder name narrowing a taskName search."),
		),
		mcp.WithString("spaceName",
			mcp.Description("Optional space name narrowing a taskName search."),
		),
	}
}

func targetListParams(required bool) []mcp.ToolOption {
	desc := "ID of the destination list."
	if !required {
		desc = "ID of the destination list. Defaults to the source task's list."
	}
	return []mcp.ToolOption{
		mcp.WithString("targetListId", mcp.Description(desc)),
		mcp.WithString("targetListName", mcp.Description("Name of the destination list. Only used when targetListId is not given.")),
	}
}

const dateHelp = "Accepts YYYY-MM-DD, RFC3339, Unix milliseconds, or phrases like 'today', 'tomorrow', 'next week', 'in 3 days'."

func taskFieldParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("description",
			mcp.Description("Plain text description."),
		),
		mcp.WithString("markdown_description",
			mcp.Description("Markdown description. Overrides description when both are set."),
		),
		mcp.WithString("status",
			mcp.Description("Status name, as configured on the list."),
		),
		mcp.WithNumber("priority",
			mcp.Description("Priority: 1 urgent, 2 high, 3 normal, 4 low."),
			mcp.Min(1),
			mcp.Max(4),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date. "+dateHelp),
		),
		mcp.WithString("startDate",
			mcp.Description("Start date. "+dateHelp),
		),
	}
}

func bulkOptionsParam() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithObject("options",
			mcp.Description("Bulk execution options."),
			mcp.Properties(map[string]any{
				"concurrency": map[string]any{
					"type":        "number",
					"description": "Maximum parallel requests. Defaults to the server setting and is capped by it.",
				},
			}),
		),
	}
}

var taskRefSchema = map[string]any{
	"taskId":       map[string]any{"type": "string"},
	"customTaskId": map[string]any{"type": "string"},
	"taskName":     map[string]any{"type": "string"},
	"listId":       map[string]any{"type": "string"},
	"listName":     map[string]any{"type": "string"},
	"folderName":   map[string]any{"type": "string"},
	"spaceName":    map[string]any{"type": "string"},
}

func taskFieldSchema() map[string]any {
	return map[string]any{
		"name":                 map[string]any{"type": "string"},
		"description":          map[string]any{"type": "string"},
		"markdown_description": map[string]any{"type": "string"},
		"status":               map[string]any{"type": "string"},
		"priority":             map[string]any{"type": "number", "minimum": 1, "maximum": 4},
		"dueDate":              map[string]any{"type": "string"},
		"startDate":            map[string]any{"type": "string"},
	}
}

func mergeSchema(parts ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, p := range parts {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}
