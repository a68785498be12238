package workspace

import (
	"regexp"
	"strings"
	"time"
)

// Kind identifies the level of an entity in the workspace hierarchy.
type Kind string

const (
	KindWorkspace Kind = "workspace"
	KindSpace     Kind = "space"
	KindFolder    Kind = "folder"
	KindList      Kind = "list"
	KindTask      Kind = "task"
)

func (k Kind) String() string {
	return string(k)
}

// Label returns the capitalised kind, used in rendered trees and messages.
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindWorkspace, KindSpace, KindFolder, KindList, KindTask:
		return true
	}
	return false
}

// EntityRef is the {id, name} pair the API embeds when one entity points at another.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// IsZero reports whether the reference is empty.
func (r EntityRef) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// Space is the top-level container under a workspace.
type Space struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived,omitempty"`
}

// Folder groups lists inside a space.
type Folder struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Hidden           bool      `json:"hidden,omitempty"`
	OverrideStatuses bool      `json:"override_statuses"`
	TaskCount        int       `json:"task_count,omitempty"`
	Space            EntityRef `json:"space"`
	Lists            []List    `json:"lists,omitempty"`
}

// List holds tasks and lives either directly in a space or in a folder.
type List struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Content   string     `json:"content,omitempty"`
	Status    string     `json:"status,omitempty"`
	Priority  *Priority  `json:"priority,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	TaskCount int        `json:"task_count,omitempty"`
	Archived  bool       `json:"archived,omitempty"`
	Folder    *EntityRef `json:"folder,omitempty"`
	Space     EntityRef  `json:"space"`
}

// Priority is the ClickUp urgency scale: 1 urgent, 2 high, 3 normal, 4 low.
type Priority struct {
	ID    int    `json:"id"`
	Label string `json:"priority"`
	Color string `json:"color,omitempty"`
}

// PriorityLabel returns the API label for a numeric priority.
func PriorityLabel(p int) string {
	switch p {
	case 1:
		return "urgent"
	case 2:
		return "high"
	case 3:
		return "normal"
	case 4:
		return "low"
	}
	return ""
}

// Status is a task workflow state.
type Status struct {
	Status string `json:"status"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type,omitempty"`
}

// User is a workspace member as embedded in tasks and comments.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Tag is a space-level label that can be attached to tasks.
type Tag struct {
	Name string `json:"name"`
	FG   string `json:"tag_fg"`
	BG   string `json:"tag_bg"`
}

// Task is a unit of work inside a list.
type Task struct {
	ID          string     `json:"id"`
	CustomID    string     `json:"custom_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TextContent string     `json:"text_content,omitempty"`
	Status      Status     `json:"status"`
	Priority    *Priority  `json:"priority,omitempty"`
	Parent      string     `json:"parent,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	CreatedAt   *time.Time `json:"date_created,omitempty"`
	UpdatedAt   *time.Time `json:"date_updated,omitempty"`
	Assignees   []User     `json:"assignees,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	URL         string     `json:"url,omitempty"`
	List        EntityRef  `json:"list"`
	Folder      EntityRef  `json:"folder,omitempty"`
	Space       EntityRef  `json:"space,omitempty"`
	Subtasks    []Task     `json:"subtasks,omitempty"`
}

// Comment is a task comment.
type Comment struct {
	ID       string     `json:"id"`
	Text     string     `json:"comment_text"`
	User     User       `json:"user"`
	Resolved bool       `json:"resolved"`
	Assignee *User      `json:"assignee,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// TaskTarget addresses a task either by its canonical ID or by a custom ID.
type TaskTarget struct {
	ID     string `json:"id"`
	Custom bool   `json:"custom,omitempty"`
}

var customTaskIDPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// LooksLikeCustomID reports whether id has the PREFIX-123 shape of a custom task ID.
func LooksLikeCustomID(id string) bool {
	return customTaskIDPattern.MatchString(id)
}

// NewTaskTarget builds a target from a taskId value, detecting custom IDs.
func NewTaskTarget(id string) TaskTarget {
	id = strings.TrimSpace(id)
	return TaskTarget{ID: id, Custom: LooksLikeCustomID(id)}
}
