package workspace

import (
	"context"
	"time"
)

// Page is one page of results from a paginated endpoint.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	LastPage bool `json:"last_page"`
}

// CreateFolder holds the fields accepted when creating a folder.
type CreateFolder struct {
	Name             string
	OverrideStatuses *bool
}

// UpdateFolder holds the mutable folder fields; nil means unchanged.
type UpdateFolder struct {
	Name             *string
	OverrideStatuses *bool
}

// CreateList holds the fields accepted when creating a list.
type CreateList struct {
	Name     string
	Content  string
	DueDate  *time.Time
	Priority *int
	Assignee *int
	Status   string
}

// UpdateList holds the mutable list fields; nil means unchanged.
type UpdateList struct {
	Name    *string
	Content *string
	Status  *string
}

// CreateTask holds the fields accepted when creating a task.
type CreateTask struct {
	Name                string     `json:"name"`
	Description         string     `json:"description,omitempty"`
	MarkdownDescription string     `json:"markdown_description,omitempty"`
	Status              string     `json:"status,omitempty"`
	Priority            *int       `json:"priority,omitempty"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	StartDate           *time.Time `json:"startDate,omitempty"`
	Parent              string     `json:"parent,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	Assignees           []int      `json:"assignees,omitempty"`
}

// UpdateTask holds the mutable task fields; nil means unchanged.
type UpdateTask struct {
	Name                *string    `json:"name,omitempty"`
	Description         *string    `json:"description,omitempty"`
	MarkdownDescription *string    `json:"markdown_description,omitempty"`
	Status              *string    `json:"status,omitempty"`
	Priority            *int       `json:"priority,omitempty"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	StartDate           *time.Time `json:"startDate,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u UpdateTask) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.MarkdownDescription == nil &&
		u.Status == nil && u.Priority == nil && u.DueDate == nil && u.StartDate == nil
}

// TagInput holds tag name and colors for create and update.
type TagInput struct {
	Name string
	FG   string
	BG   string
}

// CreateComment holds a new comment.
type CreateComment struct {
	Text      string
	NotifyAll bool
	Assignee  *int
}

// TaskFilter narrows the tasks returned for a single list.
type TaskFilter struct {
	Archived      bool
	IncludeClosed bool
	Subtasks      bool
	Page          int
	OrderBy       string
	Reverse       bool
	Statuses      []string
}

// WorkspaceTaskFilter narrows tasks across the whole workspace.
type WorkspaceTaskFilter struct {
	ListIDs       []string
	SpaceIDs      []string
	FolderIDs     []string
	Tags          []string
	Statuses      []string
	Assignees     []string
	IncludeClosed bool
	Subtasks      bool
	Page          int
	OrderBy       string
	Reverse       bool
}

// IsEmpty reports whether no narrowing filter is set.
func (f WorkspaceTaskFilter) IsEmpty() bool {
	return len(f.ListIDs) == 0 && len(f.SpaceIDs) == 0 && len(f.FolderIDs) == 0 &&
		len(f.Tags) == 0 && len(f.Statuses) == 0 && len(f.Assignees) == 0
}

// Repository is the contract for the remote project-management API.
type Repository interface {
	// Hierarchy

	// GetSpaces returns the non-archived spaces of a workspace.
	GetSpaces(ctx context.Context, teamID string) ([]Space, error)

	// GetSpace retrieves a space by ID.
	GetSpace(ctx context.Context, spaceID string) (*Space, error)

	// GetFolders returns the folders of a space, each carrying its lists.
	GetFolders(ctx context.Context, spaceID string) ([]Folder, error)

	// GetFolderlessLists returns lists that sit directly in a space.
	GetFolderlessLists(ctx context.Context, spaceID string) ([]List, error)

	// Folders

	CreateFolder(ctx context.Context, spaceID string, in CreateFolder) (*Folder, error)
	GetFolder(ctx context.Context, folderID string) (*Folder, error)
	UpdateFolder(ctx context.Context, folderID string, in UpdateFolder) (*Folder, error)
	DeleteFolder(ctx context.Context, folderID string) error

	// Lists

	CreateList(ctx context.Context, spaceID string, in CreateList) (*List, error)
	CreateListInFolder(ctx context.Context, folderID string, in CreateList) (*List, error)
	GetList(ctx context.Context, listID string) (*List, error)
	UpdateList(ctx context.Context, listID string, in UpdateList) (*List, error)
	DeleteList(ctx context.Context, listID string) error

	// Tasks

	CreateTask(ctx context.Context, listID string, in CreateTask) (*Task, error)
	GetTask(ctx context.Context, target TaskTarget, subtasks bool) (*Task, error)
	GetTasks(ctx context.Context, listID string, filter TaskFilter) (*Page[Task], error)
	GetWorkspaceTasks(ctx context.Context, teamID string, filter WorkspaceTaskFilter) (*Page[Task], error)
	UpdateTask(ctx context.Context, target TaskTarget, in UpdateTask) (*Task, error)
	DeleteTask(ctx context.Context, target TaskTarget) error

	// Comments

	GetTaskComments(ctx context.Context, target TaskTarget, start *time.Time, startID string) ([]Comment, error)
	CreateTaskComment(ctx context.Context, target TaskTarget, in CreateComment) (*Comment, error)

	// Tags

	GetSpaceTags(ctx context.Context, spaceID string) ([]Tag, error)
	CreateSpaceTag(ctx context.Context, spaceID string, in TagInput) (*Tag, error)
	UpdateSpaceTag(ctx context.Context, spaceID, tagName string, in TagInput) (*Tag, error)
	DeleteSpaceTag(ctx context.Context, spaceID, tagName string) error
	AddTagToTask(ctx context.Context, target TaskTarget, tagName string) error
	RemoveTagFromTask(ctx context.Context, target TaskTarget, tagName string) error
}
