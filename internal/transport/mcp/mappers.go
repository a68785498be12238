package mcp

import (
	"time"

	"clickup-mcp/internal/domain/workspace"
)

func refToMap(r workspace.EntityRef) map[string]interface{} {
	m := map[string]interface{}{"id": r.ID}
	if r.Name != "" {
		m["name"] = r.Name
	}
	return m
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func folderToMap(f *workspace.Folder) map[string]interface{} {
	m := map[string]interface{}{
		"id":                f.ID,
		"name":              f.Name,
		"space":             refToMap(f.Space),
		"override_statuses": f.OverrideStatuses,
	}
	if f.TaskCount > 0 {
		m["task_count"] = f.TaskCount
	}
	if f.Lists != nil {
		lists := make([]map[string]interface{}, 0, len(f.Lists))
		for _, l := range f.Lists {
			lists = append(lists, map[string]interface{}{"id": l.ID, "name": l.Name})
		}
		m["lists"] = lists
	}
	return m
}

func listToMap(l *workspace.List, url string) map[string]interface{} {
	m := map[string]interface{}{
		"id":      l.ID,
		"name":    l.Name,
		"content": l.Content,
		"space":   refToMap(l.Space),
		"url":     url,
	}
	if l.Folder != nil {
		m["folder"] = refToMap(*l.Folder)
	}
	if l.Status != "" {
		m["status"] = l.Status
	}
	if l.Priority != nil {
		m["priority"] = l.Priority.Label
	}
	if l.DueDate != nil {
		m["due_date"] = formatTime(l.DueDate)
	}
	if l.TaskCount > 0 {
		m["task_count"] = l.TaskCount
	}
	return m
}

func taskToMap(t *workspace.Task) map[string]interface{} {
	m := map[string]interface{}{
		"id":     t.ID,
		"name":   t.Name,
		"status": t.Status.Status,
		"list":   refToMap(t.List),
	}
	if t.CustomID != "" {
		m["custom_id"] = t.CustomID
	}
	if t.Description != "" {
		m["description"] = t.Description
	} else if t.TextContent != "" {
		m["description"] = t.TextContent
	}
	if t.Priority != nil {
		m["priority"] = map[string]interface{}{"id": t.Priority.ID, "priority": t.Priority.Label}
	}
	if t.Parent != "" {
		m["parent"] = t.Parent
	}
	if t.DueDate != nil {
		m["due_date"] = formatTime(t.DueDate)
	}
	if t.StartDate != nil {
		m["start_date"] = formatTime(t.StartDate)
	}
	if t.CreatedAt != nil {
		m["date_created"] = formatTime(t.CreatedAt)
	}
	if t.UpdatedAt != nil {
		m["date_updated"] = formatTime(t.UpdatedAt)
	}
	if len(t.Assignees) > 0 {
		m["assignees"] = t.Assignees
	}
	if len(t.Tags) > 0 {
		m["tags"] = t.Tags
	}
	if t.URL != "" {
		m["url"] = t.URL
	}
	if !t.Folder.IsZero() {
		m["folder"] = refToMap(t.Folder)
	}
	if !t.Space.IsZero() {
		m["space"] = refToMap(t.Space)
	}
	if len(t.Subtasks) > 0 {
		subtasks := make([]map[string]interface{}, 0, len(t.Subtasks))
		for i := range t.Subtasks {
			subtasks = append(subtasks, taskToMap(&t.Subtasks[i]))
		}
		m["subtasks"] = subtasks
	}
	return m
}

func tasksToMaps(tasks []workspace.Task) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskToMap(&tasks[i]))
	}
	return out
}

func commentToMap(c *workspace.Comment) map[string]interface{} {
	m := map[string]interface{}{
		"id":           c.ID,
		"comment_text": c.Text,
		"resolved":     c.Resolved,
	}
	if c.User.ID != 0 || c.User.Username != "" {
		m["user"] = c.User
	}
	if c.Assignee != nil {
		m["assignee"] = c.Assignee
	}
	if c.Date != nil {
		m["date"] = formatTime(c.Date)
	}
	return m
}

// taskLabel names a task target in messages.
func taskLabel(target workspace.TaskTarget) string {
	if target.Custom {
		return "custom task " + target.ID
	}
	return "task " + target.ID
}
