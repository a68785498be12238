package clickup

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"clickup-mcp/internal/domain/workspace"
)

// flexString accepts a JSON string or number. ClickUp returns some IDs as
// numbers in write responses and strings elsewhere.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	d := jx.DecodeBytes(b)
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		*f = flexString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return err
		}
		*f = flexString(n.String())
	case jx.Null:
		*f = ""
		return d.Null()
	default:
		return errors.Errorf("unexpected %s for string field", d.Next())
	}
	return nil
}

// flexInt accepts a JSON number or a numeric string such as "3".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	d := jx.DecodeBytes(b)
	switch d.Next() {
	case jx.Number:
		n, err := d.Int()
		if err != nil {
			return err
		}
		*f = flexInt(n)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.Wrapf(err, "parse %q as int", s)
		}
		*f = flexInt(n)
	case jx.Null:
		*f = 0
		return d.Null()
	default:
		return errors.Errorf("unexpected %s for int field", d.Next())
	}
	return nil
}

// msTime is a Unix millisecond timestamp sent as a string or number.
type msTime struct {
	t *time.Time
}

func (m *msTime) UnmarshalJSON(b []byte) error {
	var v flexString
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	if v == "" {
		m.t = nil
		return nil
	}
	ms, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse timestamp %q", string(v))
	}
	t := time.UnixMilli(ms).UTC()
	m.t = &t
	return nil
}

func toMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func hasClock(t *time.Time) bool {
	if t == nil {
		return false
	}
	u := t.UTC()
	return u.Hour() != 0 || u.Minute() != 0 || u.Second() != 0
}

type refDTO struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
}

func (r refDTO) toDomain() workspace.EntityRef {
	return workspace.EntityRef{ID: string(r.ID), Name: r.Name}
}

type spaceDTO struct {
	ID       flexString `json:"id"`
	Name     string     `json:"name"`
	Private  bool       `json:"private"`
	Archived bool       `json:"archived"`
}

func (s spaceDTO) toDomain() workspace.Space {
	return workspace.Space{ID: string(s.ID), Name: s.Name, Private: s.Private, Archived: s.Archived}
}

type priorityDTO struct {
	ID       flexInt `json:"id"`
	Priority string  `json:"priority"`
	Color    string  `json:"color"`
}

func (p *priorityDTO) toDomain() *workspace.Priority {
	if p == nil || (p.ID == 0 && p.Priority == "") {
		return nil
	}
	id := int(p.ID)
	if id == 0 {
		// list priorities carry only the label
		for i := 1; i <= 4; i++ {
			if workspace.PriorityLabel(i) == p.Priority {
				id = i
			}
		}
	}
	return &workspace.Priority{ID: id, Label: p.Priority, Color: p.Color}
}

type listStatusDTO struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}

type listDTO struct {
	ID        flexString     `json:"id"`
	Name      string         `json:"name"`
	Content   string         `json:"content"`
	Status    *listStatusDTO `json:"status"`
	Priority  *priorityDTO   `json:"priority"`
	DueDate   msTime         `json:"due_date"`
	TaskCount flexInt        `json:"task_count"`
	Archived  bool           `json:"archived"`
	Folder    *refDTO        `json:"folder"`
	Space     refDTO         `json:"space"`
}

func (l listDTO) toDomain() workspace.List {
	out := workspace.List{
		ID:        string(l.ID),
		Name:      l.Name,
		Content:   l.Content,
		Priority:  l.Priority.toDomain(),
		DueDate:   l.DueDate.t,
		TaskCount: int(l.TaskCount),
		Archived:  l.Archived,
		Space:     l.Space.toDomain(),
	}
	if l.Status != nil {
		out.Status = l.Status.Status
	}
	// folderless lists point at a hidden placeholder folder
	if l.Folder != nil && l.Folder.ID != "" && l.Folder.Name != "hidden" {
		ref := l.Folder.toDomain()
		out.Folder = &ref
	}
	return out
}

type folderDTO struct {
	ID               flexString `json:"id"`
	Name             string     `json:"name"`
	Hidden           bool       `json:"hidden"`
	OverrideStatuses bool       `json:"override_statuses"`
	TaskCount        flexInt    `json:"task_count"`
	Space            refDTO     `json:"space"`
	Lists            []listDTO  `json:"lists"`
}

func (f folderDTO) toDomain() workspace.Folder {
	out := workspace.Folder{
		ID:               string(f.ID),
		Name:             f.Name,
		Hidden:           f.Hidden,
		OverrideStatuses: f.OverrideStatuses,
		TaskCount:        int(f.TaskCount),
		Space:            f.Space.toDomain(),
	}
	ref := workspace.EntityRef{ID: out.ID, Name: out.Name}
	for _, l := range f.Lists {
		list := l.toDomain()
		list.Folder = &ref
		if list.Space.ID == "" {
			list.Space = out.Space
		}
		out.Lists = append(out.Lists, list)
	}
	return out
}

type userDTO struct {
	ID       flexInt `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
}

func (u userDTO) toDomain() workspace.User {
	return workspace.User{ID: int(u.ID), Username: u.Username, Email: u.Email}
}

type tagDTO struct {
	Name string `json:"name"`
	FG   string `json:"tag_fg"`
	BG   string `json:"tag_bg"`
}

func (t tagDTO) toDomain() workspace.Tag {
	return workspace.Tag{Name: t.Name, FG: t.FG, BG: t.BG}
}

type taskDTO struct {
	ID          flexString       `json:"id"`
	CustomID    string           `json:"custom_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	TextContent string           `json:"text_content"`
	Status      workspace.Status `json:"status"`
	Priority    *priorityDTO     `json:"priority"`
	Parent      string           `json:"parent"`
	DueDate     msTime           `json:"due_date"`
	StartDate   msTime           `json:"start_date"`
	DateCreated msTime           `json:"date_created"`
	DateUpdated msTime           `json:"date_updated"`
	Assignees   []userDTO        `json:"assignees"`
	Tags        []tagDTO         `json:"tags"`
	URL         string           `json:"url"`
	List        refDTO           `json:"list"`
	Folder      refDTO           `json:"folder"`
	Space       refDTO           `json:"space"`
	Subtasks    []taskDTO        `json:"subtasks"`
}

func (t taskDTO) toDomain() workspace.Task {
	out := workspace.Task{
		ID:          string(t.ID),
		CustomID:    t.CustomID,
		Name:        t.Name,
		Description: t.Description,
		TextContent: t.TextContent,
		Status:      t.Status,
		Priority:    t.Priority.toDomain(),
		Parent:      t.Parent,
		DueDate:     t.DueDate.t,
		StartDate:   t.StartDate.t,
		CreatedAt:   t.DateCreated.t,
		UpdatedAt:   t.DateUpdated.t,
		URL:         t.URL,
		List:        t.List.toDomain(),
		Folder:      t.Folder.toDomain(),
		Space:       t.Space.toDomain(),
	}
	for _, u := range t.Assignees {
		out.Assignees = append(out.Assignees, u.toDomain())
	}
	for _, tag := range t.Tags {
		out.Tags = append(out.Tags, tag.toDomain())
	}
	for _, st := range t.Subtasks {
		out.Subtasks = append(out.Subtasks, st.toDomain())
	}
	return out
}

type commentDTO struct {
	ID       flexString `json:"id"`
	Text     string     `json:"comment_text"`
	User     userDTO    `json:"user"`
	Resolved bool       `json:"resolved"`
	Assignee *userDTO   `json:"assignee"`
	Date     msTime     `json:"date"`
}

func (c commentDTO) toDomain() workspace.Comment {
	out := workspace.Comment{
		ID:       string(c.ID),
		Text:     c.Text,
		User:     c.User.toDomain(),
		Resolved: c.Resolved,
		Date:     c.Date.t,
	}
	if c.Assignee != nil && c.Assignee.ID != 0 {
		u := c.Assignee.toDomain()
		out.Assignee = &u
	}
	return out
}

// Request bodies.

type folderBody struct {
	Name             *string `json:"name,omitempty"`
	OverrideStatuses *bool   `json:"override_statuses,omitempty"`
}

type createListBody struct {
	Name        string `json:"name"`
	Content     string `json:"content,omitempty"`
	DueDate     *int64 `json:"due_date,omitempty"`
	DueDateTime bool   `json:"due_date_time,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
	Assignee    *int   `json:"assignee,omitempty"`
	Status      string `json:"status,omitempty"`
}

type updateListBody struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
	Status  *string `json:"status,omitempty"`
}

type createTaskBody struct {
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	MarkdownDescription string   `json:"markdown_description,omitempty"`
	Status              string   `json:"status,omitempty"`
	Priority            *int     `json:"priority,omitempty"`
	DueDate             *int64   `json:"due_date,omitempty"`
	DueDateTime         bool     `json:"due_date_time,omitempty"`
	StartDate           *int64   `json:"start_date,omitempty"`
	StartDateTime       bool     `json:"start_date_time,omitempty"`
	Parent              string   `json:"parent,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	Assignees           []int    `json:"assignees,omitempty"`
}

type updateTaskBody struct {
	Name                *string `json:"name,omitempty"`
	Description         *string `json:"description,omitempty"`
	MarkdownDescription *string `json:"markdown_description,omitempty"`
	Status              *string `json:"status,omitempty"`
	Priority            *int    `json:"priority,omitempty"`
	DueDate             *int64  `json:"due_date,omitempty"`
	DueDateTime         bool    `json:"due_date_time,omitempty"`
	StartDate           *int64  `json:"start_date,omitempty"`
	StartDateTime       bool    `json:"start_date_time,omitempty"`
}

type commentBody struct {
	Text      string `json:"comment_text"`
	NotifyAll bool   `json:"notify_all"`
	Assignee  *int   `json:"assignee,omitempty"`
}

type createTagBody struct {
	Tag tagDTO `json:"tag"`
}

type updateTagBody struct {
	Tag struct {
		Name string `json:"name"`
		FG   string `json:"fg_color"`
		BG   string `json:"bg_color"`
	} `json:"tag"`
}
