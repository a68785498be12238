package clickup

import (
	"context"
	"net/http"
	"net/url"

	"clickup-mcp/internal/domain/workspace"
)

func spaceTagPath(spaceID, tagName string) string {
	return "/space/" + url.PathEscape(spaceID) + "/tag/" + url.PathEscape(tagName)
}

// GetSpaceTags lists the tags defined in a space.
func (c *Client) GetSpaceTags(ctx context.Context, spaceID string) ([]workspace.Tag, error) {
	var resp struct {
		Tags []tagDTO `json:"tags"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/space/{id}/tag",
		path:   "/space/" + url.PathEscape(spaceID) + "/tag",
	}, &resp)
	if err != nil {
		return nil, err
	}
	tags := make([]workspace.Tag, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		tags = append(tags, t.toDomain())
	}
	return tags, nil
}

// CreateSpaceTag defines a tag in a space. The API returns an empty body.
func (c *Client) CreateSpaceTag(ctx context.Context, spaceID string, in workspace.TagInput) (*workspace.Tag, error) {
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/space/{id}/tag",
		path:   "/space/" + url.PathEscape(spaceID) + "/tag",
		body:   createTagBody{Tag: tagDTO{Name: in.Name, FG: in.FG, BG: in.BG}},
	}, nil)
	if err != nil {
		return nil, err
	}
	return &workspace.Tag{Name: in.Name, FG: in.FG, BG: in.BG}, nil
}

// UpdateSpaceTag renames or recolors a tag.
func (c *Client) UpdateSpaceTag(ctx context.Context, spaceID, tagName string, in workspace.TagInput) (*workspace.Tag, error) {
	var body updateTagBody
	body.Tag.Name = in.Name
	body.Tag.FG = in.FG
	body.Tag.BG = in.BG

	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/space/{id}/tag/{name}",
		path:   spaceTagPath(spaceID, tagName),
		body:   body,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &workspace.Tag{Name: in.Name, FG: in.FG, BG: in.BG}, nil
}

// DeleteSpaceTag removes a tag from a space and all its tasks.
func (c *Client) DeleteSpaceTag(ctx context.Context, spaceID, tagName string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/space/{id}/tag/{name}",
		path:   spaceTagPath(spaceID, tagName),
	}, nil)
}

// AddTagToTask attaches an existing space tag to a task.
func (c *Client) AddTagToTask(ctx context.Context, target workspace.TaskTarget, tagName string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		route:  "/task/{id}/tag/{name}",
		path:   taskPath(target) + "/tag/" + url.PathEscape(tagName),
		query:  c.customIDQuery(target, nil),
	}, nil)
}

// RemoveTagFromTask detaches a tag from a task.
func (c *Client) RemoveTagFromTask(ctx context.Context, target workspace.TaskTarget, tagName string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/task/{id}/tag/{name}",
		path:   taskPath(target) + "/tag/" + url.PathEscape(tagName),
		query:  c.customIDQuery(target, nil),
	}, nil)
}
