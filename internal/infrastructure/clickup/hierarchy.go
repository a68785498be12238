package clickup

import (
	"context"
	"net/http"
	"net/url"

	"clickup-mcp/internal/domain/workspace"
)

func notArchived() url.Values {
	return url.Values{"archived": {"false"}}
}

// GetSpaces returns the non-archived spaces of a workspace.
func (c *Client) GetSpaces(ctx context.Context, teamID string) ([]workspace.Space, error) {
	var resp struct {
		Spaces []spaceDTO `json:"spaces"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/team/{id}/space",
		path:   "/team/" + url.PathEscape(teamID) + "/space",
		query:  notArchived(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	spaces := make([]workspace.Space, 0, len(resp.Spaces))
	for _, s := range resp.Spaces {
		spaces = append(spaces, s.toDomain())
	}
	return spaces, nil
}

// GetSpace retrieves a space by ID.
func (c *Client) GetSpace(ctx context.Context, spaceID string) (*workspace.Space, error) {
	var dto spaceDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/space/{id}",
		path:   "/space/" + url.PathEscape(spaceID),
	}, &dto)
	if err != nil {
		return nil, err
	}
	s := dto.toDomain()
	return &s, nil
}

// GetFolders returns the folders of a space with their lists.
func (c *Client) GetFolders(ctx context.Context, spaceID string) ([]workspace.Folder, error) {
	var resp struct {
		Folders []folderDTO `json:"folders"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/space/{id}/folder",
		path:   "/space/" + url.PathEscape(spaceID) + "/folder",
		query:  notArchived(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	folders := make([]workspace.Folder, 0, len(resp.Folders))
	for _, f := range resp.Folders {
		folder := f.toDomain()
		if folder.Space.ID == "" {
			folder.Space = workspace.EntityRef{ID: spaceID}
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// GetFolderlessLists returns lists that sit directly in a space.
func (c *Client) GetFolderlessLists(ctx context.Context, spaceID string) ([]workspace.List, error) {
	var resp struct {
		Lists []listDTO `json:"lists"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/space/{id}/list",
		path:   "/space/" + url.PathEscape(spaceID) + "/list",
		query:  notArchived(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	lists := make([]workspace.List, 0, len(resp.Lists))
	for _, l := range resp.Lists {
		list := l.toDomain()
		list.Folder = nil
		if list.Space.ID == "" {
			list.Space = workspace.EntityRef{ID: spaceID}
		}
		lists = append(lists, list)
	}
	return lists, nil
}

// CreateFolder creates a folder in a space.
func (c *Client) CreateFolder(ctx context.Context, spaceID string, in workspace.CreateFolder) (*workspace.Folder, error) {
	name := in.Name
	var dto folderDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/space/{id}/folder",
		path:   "/space/" + url.PathEscape(spaceID) + "/folder",
		body:   folderBody{Name: &name, OverrideStatuses: in.OverrideStatuses},
	}, &dto)
	if err != nil {
		return nil, err
	}
	f := dto.toDomain()
	return &f, nil
}

// GetFolder retrieves a folder by ID.
func (c *Client) GetFolder(ctx context.Context, folderID string) (*workspace.Folder, error) {
	var dto folderDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/folder/{id}",
		path:   "/folder/" + url.PathEscape(folderID),
	}, &dto)
	if err != nil {
		return nil, err
	}
	f := dto.toDomain()
	return &f, nil
}

// UpdateFolder changes the name or status override of a folder.
func (c *Client) UpdateFolder(ctx context.Context, folderID string, in workspace.UpdateFolder) (*workspace.Folder, error) {
	var dto folderDTO
	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/folder/{id}",
		path:   "/folder/" + url.PathEscape(folderID),
		body:   folderBody{Name: in.Name, OverrideStatuses: in.OverrideStatuses},
	}, &dto)
	if err != nil {
		return nil, err
	}
	f := dto.toDomain()
	return &f, nil
}

// DeleteFolder removes a folder and everything in it.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/folder/{id}",
		path:   "/folder/" + url.PathEscape(folderID),
	}, nil)
}

func createListBodyFrom(in workspace.CreateList) createListBody {
	return createListBody{
		Name:        in.Name,
		Content:     in.Content,
		DueDate:     toMillis(in.DueDate),
		DueDateTime: hasClock(in.DueDate),
		Priority:    in.Priority,
		Assignee:    in.Assignee,
		Status:      in.Status,
	}
}

// CreateList creates a folderless list in a space.
func (c *Client) CreateList(ctx context.Context, spaceID string, in workspace.CreateList) (*workspace.List, error) {
	var dto listDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/space/{id}/list",
		path:   "/space/" + url.PathEscape(spaceID) + "/list",
		body:   createListBodyFrom(in),
	}, &dto)
	if err != nil {
		return nil, err
	}
	l := dto.toDomain()
	l.Folder = nil
	if l.Space.ID == "" {
		l.Space = workspace.EntityRef{ID: spaceID}
	}
	return &l, nil
}

// CreateListInFolder creates a list inside a folder.
func (c *Client) CreateListInFolder(ctx context.Context, folderID string, in workspace.CreateList) (*workspace.List, error) {
	var dto listDTO
	err := c.do(ctx, request{
		method: http.MethodPost,
		route:  "/folder/{id}/list",
		path:   "/folder/" + url.PathEscape(folderID) + "/list",
		body:   createListBodyFrom(in),
	}, &dto)
	if err != nil {
		return nil, err
	}
	l := dto.toDomain()
	if l.Folder == nil {
		l.Folder = &workspace.EntityRef{ID: folderID}
	}
	return &l, nil
}

// GetList retrieves a list by ID.
func (c *Client) GetList(ctx context.Context, listID string) (*workspace.List, error) {
	var dto listDTO
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/list/{id}",
		path:   "/list/" + url.PathEscape(listID),
	}, &dto)
	if err != nil {
		return nil, err
	}
	l := dto.toDomain()
	return &l, nil
}

// UpdateList changes list fields.
func (c *Client) UpdateList(ctx context.Context, listID string, in workspace.UpdateList) (*workspace.List, error) {
	var dto listDTO
	err := c.do(ctx, request{
		method: http.MethodPut,
		route:  "/list/{id}",
		path:   "/list/" + url.PathEscape(listID),
		body:   updateListBody{Name: in.Name, Content: in.Content, Status: in.Status},
	}, &dto)
	if err != nil {
		return nil, err
	}
	l := dto.toDomain()
	return &l, nil
}

// DeleteList removes a list and its tasks.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/list/{id}",
		path:   "/list/" + url.PathEscape(listID),
	}, nil)
}
