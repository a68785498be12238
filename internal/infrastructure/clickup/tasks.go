package clickup

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clickup-mcp/internal/domain/workspace"
)

// pageSize is the fixed number of tasks ClickUp returns per page.
const pageSize = 100

type tasksResponse struct {
	Tasks    []taskDTO `json:"tasks"`
	LastPage *bool     `json:"last_page"`
}

func (r tasksResponse) toPage(page int) *workspace.Page[workspace.Task] {
	out := &workspace.Page[workspace.Task]{
		Items: make([]workspace.Task, 0, len(r.Tasks)),
		Page:  page,
	}
	for _, t := range r.Tasks {
		out.Items = append(out.Items, t.toDomain())
	}
	if r.LastPage != nil {
		out.LastPage = *r.LastPage
	} else {
		out.LastPage = len(r.Tasks) < pageSize
	}
	return out
}

func setBool(q url.Values, key string, v bool) {
	if v {
		q.Set(key, "true")
	}
}

func addAll(q url.Values, key string, values []string) {
	for _, v := range values {
		q.Add(key, v)
	}
}

func taskPath(target workspace.TaskTarget) string {
	return "/task/" + url.PathEscape(target.ID)
}

// CreateTask creates a task in a list.
func (c *Client) CreateTask(ctx context.Context, listID string, in workspace.CreateTask) (*workspace.Task, error) {
	var dto taskDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/list/{id}/task",
		path:   "/list/" + url.PathEscape(listID) + "/task",
		body: createTaskBody{
			Name:                in.Name,
			Description:         in.Description,
			MarkdownDescription: in.MarkdownDescription,
			Status:              in.Status,
			Priority:            in.Priority,
			DueDate:             toMillis(in.DueDate),
			DueDateTime:         hasClock(in.DueDate),
			StartDate:           toMillis(in.StartDate),
			StartDateTime:       hasClock(in.StartDate),
			Parent:              in.Parent,
			Tags:                in.Tags,
			Assignees:           in.Assignees,
		},
	}, &dto)
	if err != nil {
		return nil, err
	}
	t := dto.toDomain()
	return &t, nil
}

// GetTask retrieves a task, optionally with its subtasks.
func (c *Client) GetTask(ctx context.Context, target workspace.TaskTarget, subtasks bool) (*workspace.Task, error) {
	q := c.customIDQuery(target, nil)
	setBool(q, "include_subtasks", subtasks)

	var dto taskDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/task/{id}",
		path:   taskPath(target),
		query:  q,
	}, &dto)
	if err != nil {
		return nil, err
	}
	t := dto.toDomain()
	return &t, nil
}

// GetTasks returns one page of the tasks in a list.
func (c *Client) GetTasks(ctx context.Context, listID string, filter workspace.TaskFilter) (*workspace.Page[workspace.Task], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(filter.Page))
	setBool(q, "archived", filter.Archived)
	setBool(q, "include_closed", filter.IncludeClosed)
	setBool(q, "subtasks", filter.Subtasks)
	setBool(q, "reverse", filter.Reverse)
	if filter.OrderBy != "" {
		q.Set("order_by", filter.OrderBy)
	}
	addAll(q, "statuses[]", filter.Statuses)

	var resp tasksResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/list/{id}/task",
		path:   "/list/" + url.PathEscape(listID) + "/task",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toPage(filter.Page), nil
}

// GetWorkspaceTasks returns one page of tasks matching filter across the workspace.
func (c *Client) GetWorkspaceTasks(ctx context.Context, teamID string, filter workspace.WorkspaceTaskFilter) (*workspace.Page[workspace.Task], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(filter.Page))
	addAll(q, "list_ids[]", filter.ListIDs)
	addAll(q, "space_ids[]", filter.SpaceIDs)
	addAll(q, "project_ids[]", filter.FolderIDs)
	addAll(q, "tags[]", filter.Tags)
	addAll(q, "statuses[]", filter.Statuses)
	addAll(q, "assignees[]", filter.Assignees)
	setBool(q, "include_closed", filter.IncludeClosed)
	setBool(q, "subtasks", filter.Subtasks)
	setBool(q, "reverse", filter.Reverse)
	if filter.OrderBy != "" {
		q.Set("order_by", filter.OrderBy)
	}

	var resp tasksResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/team/{id}/task",
		path:   "/team/" + url.PathEscape(teamID) + "/task",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.toPage(filter.Page), nil
}

// UpdateTask changes task fields.
func (c *Client) UpdateTask(ctx context.Context, target workspace.TaskTarget, in workspace.UpdateTask) (*workspace.Task, error) {
	var dto taskDTO
	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/task/{id}",
		path:   taskPath(target),
		query:  c.customIDQuery(target, nil),
		body: updateTaskBody{
			Name:                in.Name,
			Description:         in.Description,
			MarkdownDescription: in.MarkdownDescription,
			Status:              in.Status,
			Priority:            in.Priority,
			DueDate:             toMillis(in.DueDate),
			DueDateTime:         hasClock(in.DueDate),
			StartDate:           toMillis(in.StartDate),
			StartDateTime:       hasClock(in.StartDate),
		},
	}, &dto)
	if err != nil {
		return nil, err
	}
	t := dto.toDomain()
	return &t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, target workspace.TaskTarget) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/task/{id}",
		path:   taskPath(target),
		query:  c.customIDQuery(target, nil),
	}, nil)
}

// GetTaskComments returns up to 25 comments, newest first. start and
// startID page backwards from an earlier result.
func (c *Client) GetTaskComments(ctx context.Context, target workspace.TaskTarget, start *time.Time, startID string) ([]workspace.Comment, error) {
	q := c.customIDQuery(target, nil)
	if start != nil {
		q.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	}
	if startID != "" {
		q.Set("start_id", startID)
	}

	var resp struct {
		Comments []commentDTO `json:"comments"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/task/{id}/comment",
		path:   taskPath(target) + "/comment",
		query:  q,
	}, &resp)
	if err != nil {
		return nil, err
	}
	comments := make([]workspace.Comment, 0, len(resp.Comments))
	for _, cm := range resp.Comments {
		comments = append(comments, cm.toDomain())
	}
	return comments, nil
}

// CreateTaskComment posts a comment. The API answers with the new ID and
// date only, so the rest of the comment is filled from the input.
func (c *Client) CreateTaskComment(ctx context.Context, target workspace.TaskTarget, in workspace.CreateComment) (*workspace.Comment, error) {
	var resp struct {
		ID   flexString `json:"id"`
		Date msTime     `json:"date"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/task/{id}/comment",
		path:   taskPath(target) + "/comment",
		query:  c.customIDQuery(target, nil),
		body:   commentBody{Text: in.Text, NotifyAll: in.NotifyAll, Assignee: in.Assignee},
	}, &resp)
	if err != nil {
		return nil, err
	}
	comment := &workspace.Comment{ID: string(resp.ID), Text: in.Text, Date: resp.Date.t}
	if in.Assignee != nil {
		comment.Assignee = &workspace.User{ID: *in.Assignee}
	}
	return comment, nil
}
