package mcp

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"clickup-mcp/internal/application/service"
	"clickup-mcp/internal/domain/workspace"
)

// Reference arguments shared by several tools.

// SpaceArgs names a space by ID or name.
type SpaceArgs struct {
	SpaceID   string `json:"spaceId"`
	SpaceName string `json:"spaceName"`
}

func (a SpaceArgs) ref() service.Ref {
	return service.Ref{ID: a.SpaceID, Name: a.SpaceName}
}

// FolderArgs names a folder by ID, or by name within a space.
type FolderArgs struct {
	FolderID   string `json:"folderId"`
	FolderName string `json:"folderName"`
	SpaceArgs
}

func (a FolderArgs) ref() service.Ref {
	return service.Ref{
		ID:    a.FolderID,
		Name:  a.FolderName,
		Scope: service.Scope{SpaceID: a.SpaceID, SpaceName: a.SpaceName},
	}
}

// ListArgs names a list by ID, or by name with optional folder and space hints.
type ListArgs struct {
	ListID     string `json:"listId"`
	ListName   string `json:"listName"`
	FolderID   string `json:"folderId"`
	FolderName string `json:"folderName"`
	SpaceArgs
}

func (a ListArgs) ref() service.Ref {
	return service.Ref{
		ID:   a.ListID,
		Name: a.ListName,
		Scope: service.Scope{
			SpaceID:    a.SpaceID,
			SpaceName:  a.SpaceName,
			FolderID:   a.FolderID,
			FolderName: a.FolderName,
		},
	}
}

// TargetListArgs names the destination list of a move or duplicate.
type TargetListArgs struct {
	TargetListID   string `json:"targetListId"`
	TargetListName string `json:"targetListName"`
}

func (a TargetListArgs) ref() service.Ref {
	return service.Ref{ID: a.TargetListID, Name: a.TargetListName}
}

func (a TargetListArgs) isZero() bool {
	return strings.TrimSpace(a.TargetListID) == "" && strings.TrimSpace(a.TargetListName) == ""
}

// BulkOptionsArg carries per-call bulk tuning.
type BulkOptionsArg struct {
	Concurrency int `json:"concurrency" validate:"gte=0"`
}

// DateArg accepts an ISO date, a relative phrase such as "tomorrow", or
// Unix milliseconds given as a number or string.
type DateArg string

func (d *DateArg) UnmarshalJSON(b []byte) error {
	dec := jx.DecodeBytes(b)
	switch dec.Next() {
	case jx.String:
		s, err := dec.Str()
		*d = DateArg(s)
		return err
	case jx.Number:
		n, err := dec.Num()
		*d = DateArg(n.String())
		return err
	case jx.Null:
		*d = ""
		return dec.Null()
	}
	return errors.New("date must be a string or Unix milliseconds")
}

func (d DateArg) parse(field string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(string(d)) == "" {
		return nil, nil
	}
	t, err := service.ParseDate(string(d), now)
	if err != nil {
		return nil, workspace.NewValidationError(field, "%s: %v", field, err)
	}
	return &t, nil
}

// Folder inputs.

type CreateFolderInput struct {
	Name             string `json:"name" validate:"required"`
	OverrideStatuses *bool  `json:"override_statuses"`
	SpaceArgs
}

type FolderInput struct {
	FolderArgs
}

type UpdateFolderInput struct {
	FolderArgs
	Name             *string `json:"name"`
	OverrideStatuses *bool   `json:"override_statuses"`
}

func (in *UpdateFolderInput) Validate() error {
	if in.Name == nil && in.OverrideStatuses == nil {
		return workspace.NewValidationError("name", "at least one of name or override_statuses must be provided")
	}
	return nil
}

// List inputs.

type CreateListInput struct {
	Name     string  `json:"name" validate:"required"`
	Content  string  `json:"content"`
	DueDate  DateArg `json:"dueDate"`
	Priority *int    `json:"priority" validate:"omitempty,min=1,max=4"`
	Assignee *int    `json:"assignee"`
	Status   string  `json:"status"`
	SpaceArgs
}

func (in *CreateListInput) toCreate(now time.Time) (workspace.CreateList, error) {
	due, err := in.DueDate.parse("dueDate", now)
	if err != nil {
		return workspace.CreateList{}, err
	}
	return workspace.CreateList{
		Name:     in.Name,
		Content:  in.Content,
		DueDate:  due,
		Priority: in.Priority,
		Assignee: in.Assignee,
		Status:   in.Status,
	}, nil
}

type CreateListInFolderInput struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content"`
	Status  string `json:"status"`
	FolderArgs
}

type ListInput struct {
	ListArgs
}

type UpdateListInput struct {
	ListArgs
	Name    *string `json:"name"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (in *UpdateListInput) Validate() error {
	if in.Name == nil && in.Content == nil && in.Status == nil {
		return workspace.NewValidationError("name", "at least one of name, content, or status must be provided")
	}
	return nil
}

// Tag inputs.

type SpaceTagsInput struct {
	SpaceArgs
}

type CreateSpaceTagInput struct {
	SpaceArgs
	TagName      string `json:"tagName" validate:"required"`
	TagBg        string `json:"tagBg" validate:"omitempty,hexcolor"`
	TagFg        string `json:"tagFg" validate:"omitempty,hexcolor"`
	ColorCommand string `json:"colorCommand"`
}

type UpdateSpaceTagInput struct {
	SpaceArgs
	TagName      string  `json:"tagName" validate:"required"`
	NewTagName   *string `json:"newTagName"`
	TagBg        *string `json:"tagBg" validate:"omitempty,hexcolor"`
	TagFg        *string `json:"tagFg" validate:"omitempty,hexcolor"`
	ColorCommand string  `json:"colorCommand"`
}

func (in *UpdateSpaceTagInput) Validate() error {
	if in.NewTagName == nil && in.TagBg == nil && in.TagFg == nil && strings.TrimSpace(in.ColorCommand) == "" {
		return workspace.NewValidationError("newTagName", "at least one of newTagName, tagBg, tagFg, or colorCommand must be provided")
	}
	return nil
}

type DeleteSpaceTagInput struct {
	SpaceArgs
	TagName string `json:"tagName" validate:"required"`
}

type TaskTagInput struct {
	service.TaskRef
	TagName string `json:"tagName" validate:"required"`
}

// Task inputs.

// TaskFields holds the optional fields of a new task.
type TaskFields struct {
	Description         string   `json:"description"`
	MarkdownDescription string   `json:"markdown_description"`
	Status              string   `json:"status"`
	Priority            *int     `json:"priority" validate:"omitempty,min=1,max=4"`
	DueDate             DateArg  `json:"dueDate"`
	StartDate           DateArg  `json:"startDate"`
	Parent              string   `json:"parent"`
	Tags                []string `json:"tags"`
	Assignees           []int    `json:"assignees"`
}

// CreateTaskItem is one task to create.
type CreateTaskItem struct {
	Name string `json:"name" validate:"required"`
	TaskFields
}

func (i CreateTaskItem) toCreate(now time.Time) (workspace.CreateTask, error) {
	due, err := i.DueDate.parse("dueDate", now)
	if err != nil {
		return workspace.CreateTask{}, err
	}
	start, err := i.StartDate.parse("startDate", now)
	if err != nil {
		return workspace.CreateTask{}, err
	}
	return workspace.CreateTask{
		Name:                i.Name,
		Description:         i.Description,
		MarkdownDescription: i.MarkdownDescription,
		Status:              i.Status,
		Priority:            i.Priority,
		DueDate:             due,
		StartDate:           start,
		Parent:              i.Parent,
		Tags:                i.Tags,
		Assignees:           i.Assignees,
	}, nil
}

// UpdateTaskFields holds the mutable task fields; absent means unchanged.
type UpdateTaskFields struct {
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	MarkdownDescription *string `json:"markdown_description"`
	Status              *string `json:"status"`
	Priority            *int    `json:"priority" validate:"omitempty,min=1,max=4"`
	DueDate             DateArg `json:"dueDate"`
	StartDate           DateArg `json:"startDate"`
}

func (f UpdateTaskFields) toUpdate(now time.Time) (workspace.UpdateTask, error) {
	due, err := f.DueDate.parse("dueDate", now)
	if err != nil {
		return workspace.UpdateTask{}, err
	}
	start, err := f.StartDate.parse("startDate", now)
	if err != nil {
		return workspace.UpdateTask{}, err
	}
	return workspace.UpdateTask{
		Name:                f.Name,
		Description:         f.Description,
		MarkdownDescription: f.MarkdownDescription,
		Status:              f.Status,
		Priority:            f.Priority,
		DueDate:             due,
		StartDate:           start,
	}, nil
}

type CreateTaskInput struct {
	ListArgs
	CreateTaskItem
}

type GetTaskInput struct {
	service.TaskRef
	Subtasks bool `json:"subtasks"`
}

type GetTasksInput struct {
	ListArgs
	Archived      bool     `json:"archived"`
	Page          int      `json:"page" validate:"gte=0"`
	OrderBy       string   `json:"order_by" validate:"omitempty,oneof=id created updated due_date"`
	Reverse       bool     `json:"reverse"`
	Subtasks      bool     `json:"subtasks"`
	Statuses      []string `json:"statuses"`
	IncludeClosed bool     `json:"include_closed"`
}

type GetWorkspaceTasksInput struct {
	ListIDs       []string `json:"list_ids"`
	SpaceIDs      []string `json:"space_ids"`
	FolderIDs     []string `json:"folder_ids"`
	Tags          []string `json:"tags"`
	Statuses      []string `json:"statuses"`
	Assignees     []string `json:"assignees"`
	Page          int      `json:"page" validate:"gte=0"`
	IncludeClosed bool     `json:"include_closed"`
	Subtasks      bool     `json:"subtasks"`
	OrderBy       string   `json:"order_by" validate:"omitempty,oneof=id created updated due_date"`
	Reverse       bool     `json:"reverse"`
}

type UpdateTaskInput struct {
	service.TaskRef
	UpdateTaskFields
}

type TaskInput struct {
	service.TaskRef
}

type MoveTaskInput struct {
	service.TaskRef
	TargetListArgs
}

func (in *MoveTaskInput) Validate() error {
	if in.isZero() {
		return workspace.NewValidationError("targetListId", "either targetListId or targetListName is required")
	}
	return nil
}

type DuplicateTaskInput struct {
	service.TaskRef
	TargetListArgs
}

type GetTaskCommentsInput struct {
	service.TaskRef
	Start   DateArg `json:"start"`
	StartID string  `json:"startId"`
}

type CreateTaskCommentInput struct {
	service.TaskRef
	CommentText string `json:"commentText" validate:"required"`
	NotifyAll   bool   `json:"notifyAll"`
	Assignee    *int   `json:"assignee"`
}

// Bulk inputs.

type CreateBulkTasksInput struct {
	ListArgs
	Tasks   []CreateTaskItem `json:"tasks" validate:"dive"`
	Options BulkOptionsArg   `json:"options"`
}

// UpdateBulkItem names one task and the fields to change on it.
type UpdateBulkItem struct {
	service.TaskRef
	UpdateTaskFields
}

type UpdateBulkTasksInput struct {
	Tasks   []UpdateBulkItem `json:"tasks" validate:"dive"`
	Options BulkOptionsArg   `json:"options"`
}

type MoveBulkTasksInput struct {
	Tasks []service.TaskRef `json:"tasks"`
	TargetListArgs
	Options BulkOptionsArg `json:"options"`
}

func (in *MoveBulkTasksInput) Validate() error {
	if in.isZero() {
		return workspace.NewValidationError("targetListId", "either targetListId or targetListName is required")
	}
	return nil
}

type DeleteBulkTasksInput struct {
	Tasks   []service.TaskRef `json:"tasks"`
	Options BulkOptionsArg    `json:"options"`
}

// NoInput is used by tools without arguments.
type NoInput struct{}
