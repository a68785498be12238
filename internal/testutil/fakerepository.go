// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"clickup-mcp/internal/domain/workspace"
)

// TeamID is the workspace ID the fake answers for.
const TeamID = "9000"

// FakeRepository is an in-memory implementation of workspace.Repository for testing.
type FakeRepository struct {
	mu       sync.Mutex
	spaces   []workspace.Space
	folders  []*workspace.Folder
	lists    []*workspace.List
	tasks    []*workspace.Task
	tags     map[string][]workspace.Tag
	comments map[string][]workspace.Comment
	nextID   int
	calls    map[string]int

	inFlight    int
	maxInFlight int

	// Errs injects a failure for every call to the named method.
	Errs map[string]error
	// CreateTaskErr, when set, decides per input whether CreateTask fails.
	CreateTaskErr func(in workspace.CreateTask) error
	// Delay is slept inside every call, to make concurrency observable.
	Delay time.Duration
	// PageSize, when positive, splits GetTasks results into pages.
	PageSize int
}

// NewFakeRepository creates an empty FakeRepository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		tags:     make(map[string][]workspace.Tag),
		comments: make(map[string][]workspace.Comment),
		calls:    make(map[string]int),
		Errs:     make(map[string]error),
		nextID:   1000,
	}
}

// AddSpace adds a space.
func (f *FakeRepository) AddSpace(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces = append(f.spaces, workspace.Space{ID: id, Name: name})
}

// AddFolder adds a folder to a space.
func (f *FakeRepository) AddFolder(spaceID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append(f.folders, &workspace.Folder{ID: id, Name: name, Space: f.spaceRef(spaceID)})
}

// AddList adds a list to a space, or to a folder when folderID is not empty.
func (f *FakeRepository) AddList(spaceID, folderID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &workspace.List{ID: id, Name: name, Space: f.spaceRef(spaceID)}
	if folderID != "" {
		ref := f.folderRef(folderID)
		l.Folder = &ref
	}
	f.lists = append(f.lists, l)
}

// AddTask adds a task to a list.
func (f *FakeRepository) AddTask(listID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, &workspace.Task{
		ID:     id,
		Name:   name,
		Status: workspace.Status{Status: "to do"},
		List:   f.listRef(listID),
		Space:  f.listSpace(listID),
	})
}

// AddTag adds a tag to a space.
func (f *FakeRepository) AddTag(spaceID string, tag workspace.Tag) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[spaceID] = append(f.tags[spaceID], tag)
}

// Calls returns how many times method was invoked.
func (f *FakeRepository) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeRepository) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// MaxInFlight returns the highest number of calls observed running at once.
func (f *FakeRepository) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// Task returns a stored task by ID.
func (f *FakeRepository) Task(id string) (workspace.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return *t, true
		}
	}
	return workspace.Task{}, false
}

// TasksIn returns the stored tasks of a list.
func (f *FakeRepository) TasksIn(listID string) []workspace.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []workspace.Task
	for _, t := range f.tasks {
		if t.List.ID == listID {
			out = append(out, *t)
		}
	}
	return out
}

// enter records a call, applies Delay and returns the injected error, if any.
// The returned func must be deferred to mark the call finished.
func (f *FakeRepository) enter(ctx context.Context, method string) (func(), error) {
	f.mu.Lock()
	f.calls[method]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	err := f.Errs[method]
	f.mu.Unlock()

	done := func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return done, ctx.Err()
		}
	}
	return done, err
}

func (f *FakeRepository) newID() string {
	f.nextID++
	return fmt.Sprintf("%d", f.nextID)
}

func (f *FakeRepository) spaceRef(id string) workspace.EntityRef {
	for _, s := range f.spaces {
		if s.ID == id {
			return workspace.EntityRef{ID: s.ID, Name: s.Name}
		}
	}
	return workspace.EntityRef{ID: id}
}

func (f *FakeRepository) folderRef(id string) workspace.EntityRef {
	for _, fo := range f.folders {
		if fo.ID == id {
			return workspace.EntityRef{ID: fo.ID, Name: fo.Name}
		}
	}
	return workspace.EntityRef{ID: id}
}

func (f *FakeRepository) listRef(id string) workspace.EntityRef {
	for _, l := range f.lists {
		if l.ID == id {
			return workspace.EntityRef{ID: l.ID, Name: l.Name}
		}
	}
	return workspace.EntityRef{ID: id}
}

func (f *FakeRepository) listSpace(id string) workspace.EntityRef {
	for _, l := range f.lists {
		if l.ID == id {
			return l.Space
		}
	}
	return workspace.EntityRef{}
}

func (f *FakeRepository) findTask(target workspace.TaskTarget) *workspace.Task {
	for _, t := range f.tasks {
		if (!target.Custom && t.ID == target.ID) || (target.Custom && t.CustomID == target.ID) {
			return t
		}
	}
	return nil
}

func notFound(what, id string) error {
	return &workspace.APIError{StatusCode: 404, Code: "ITEM_013", Message: fmt.Sprintf("%s %s not found", what, id)}
}

// GetSpaces implements workspace.Repository.
func (f *FakeRepository) GetSpaces(ctx context.Context, teamID string) ([]workspace.Space, error) {
	done, err := f.enter(ctx, "GetSpaces")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workspace.Space(nil), f.spaces...), nil
}

// GetSpace implements workspace.Repository.
func (f *FakeRepository) GetSpace(ctx context.Context, spaceID string) (*workspace.Space, error) {
	done, err := f.enter(ctx, "GetSpace")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.spaces {
		if s.ID == spaceID {
			s := s
			return &s, nil
		}
	}
	return nil, notFound("space", spaceID)
}

// GetFolders implements workspace.Repository.
func (f *FakeRepository) GetFolders(ctx context.Context, spaceID string) ([]workspace.Folder, error) {
	done, err := f.enter(ctx, "GetFolders")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []workspace.Folder
	for _, fo := range f.folders {
		if fo.Space.ID == spaceID {
			out = append(out, f.folderWithLists(fo))
		}
	}
	return out, nil
}

func (f *FakeRepository) folderWithLists(fo *workspace.Folder) workspace.Folder {
	c := *fo
	c.Lists = nil
	for _, l := range f.lists {
		if l.Folder != nil && l.Folder.ID == fo.ID {
			c.Lists = append(c.Lists, *l)
		}
	}
	return c
}

// GetFolderlessLists implements workspace.Repository.
func (f *FakeRepository) GetFolderlessLists(ctx context.Context, spaceID string) ([]workspace.List, error) {
	done, err := f.enter(ctx, "GetFolderlessLists")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []workspace.List
	for _, l := range f.lists {
		if l.Folder == nil && l.Space.ID == spaceID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// CreateFolder implements workspace.Repository.
func (f *FakeRepository) CreateFolder(ctx context.Context, spaceID string, in workspace.CreateFolder) (*workspace.Folder, error) {
	done, err := f.enter(ctx, "CreateFolder")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fo := &workspace.Folder{ID: f.newID(), Name: in.Name, Space: f.spaceRef(spaceID)}
	if in.OverrideStatuses != nil {
		fo.OverrideStatuses = *in.OverrideStatuses
	}
	f.folders = append(f.folders, fo)
	c := *fo
	return &c, nil
}

// GetFolder implements workspace.Repository.
func (f *FakeRepository) GetFolder(ctx context.Context, folderID string) (*workspace.Folder, error) {
	done, err := f.enter(ctx, "GetFolder")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fo := range f.folders {
		if fo.ID == folderID {
			c := f.folderWithLists(fo)
			return &c, nil
		}
	}
	return nil, notFound("folder", folderID)
}

// UpdateFolder implements workspace.Repository.
func (f *FakeRepository) UpdateFolder(ctx context.Context, folderID string, in workspace.UpdateFolder) (*workspace.Folder, error) {
	done, err := f.enter(ctx, "UpdateFolder")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fo := range f.folders {
		if fo.ID == folderID {
			if in.Name != nil {
				fo.Name = *in.Name
			}
			if in.OverrideStatuses != nil {
				fo.OverrideStatuses = *in.OverrideStatuses
			}
			c := *fo
			return &c, nil
		}
	}
	return nil, notFound("folder", folderID)
}

// DeleteFolder implements workspace.Repository.
func (f *FakeRepository) DeleteFolder(ctx context.Context, folderID string) error {
	done, err := f.enter(ctx, "DeleteFolder")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fo := range f.folders {
		if fo.ID == folderID {
			f.folders = append(f.folders[:i], f.folders[i+1:]...)
			return nil
		}
	}
	return notFound("folder", folderID)
}

func (f *FakeRepository) createList(spaceID string, folder *workspace.EntityRef, in workspace.CreateList) *workspace.List {
	l := &workspace.List{ID: f.newID(), Name: in.Name, Content: in.Content, Status: in.Status, DueDate: in.DueDate, Space: f.spaceRef(spaceID), Folder: folder}
	f.lists = append(f.lists, l)
	c := *l
	return &c
}

// CreateList implements workspace.Repository.
func (f *FakeRepository) CreateList(ctx context.Context, spaceID string, in workspace.CreateList) (*workspace.List, error) {
	done, err := f.enter(ctx, "CreateList")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createList(spaceID, nil, in), nil
}

// CreateListInFolder implements workspace.Repository.
func (f *FakeRepository) CreateListInFolder(ctx context.Context, folderID string, in workspace.CreateList) (*workspace.List, error) {
	done, err := f.enter(ctx, "CreateListInFolder")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fo := range f.folders {
		if fo.ID == folderID {
			ref := workspace.EntityRef{ID: fo.ID, Name: fo.Name}
			return f.createList(fo.Space.ID, &ref, in), nil
		}
	}
	return nil, notFound("folder", folderID)
}

// GetList implements workspace.Repository.
func (f *FakeRepository) GetList(ctx context.Context, listID string) (*workspace.List, error) {
	done, err := f.enter(ctx, "GetList")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lists {
		if l.ID == listID {
			c := *l
			return &c, nil
		}
	}
	return nil, notFound("list", listID)
}

// UpdateList implements workspace.Repository.
func (f *FakeRepository) UpdateList(ctx context.Context, listID string, in workspace.UpdateList) (*workspace.List, error) {
	done, err := f.enter(ctx, "UpdateList")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lists {
		if l.ID == listID {
			if in.Name != nil {
				l.Name = *in.Name
			}
			if in.Content != nil {
				l.Content = *in.Content
			}
			if in.Status != nil {
				l.Status = *in.Status
			}
			c := *l
			return &c, nil
		}
	}
	return nil, notFound("list", listID)
}

// DeleteList implements workspace.Repository.
func (f *FakeRepository) DeleteList(ctx context.Context, listID string) error {
	done, err := f.enter(ctx, "DeleteList")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			return nil
		}
	}
	return notFound("list", listID)
}

// CreateTask implements workspace.Repository.
func (f *FakeRepository) CreateTask(ctx context.Context, listID string, in workspace.CreateTask) (*workspace.Task, error) {
	done, err := f.enter(ctx, "CreateTask")
	defer done()
	if err != nil {
		return nil, err
	}
	if f.CreateTaskErr != nil {
		if err := f.CreateTaskErr(in); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &workspace.Task{
		ID:          f.newID(),
		Name:        in.Name,
		Description: in.Description,
		Status:      workspace.Status{Status: in.Status},
		Parent:      in.Parent,
		DueDate:     in.DueDate,
		StartDate:   in.StartDate,
		List:        f.listRef(listID),
		Space:       f.listSpace(listID),
	}
	if t.Status.Status == "" {
		t.Status.Status = "to do"
	}
	if in.Priority != nil {
		t.Priority = &workspace.Priority{ID: *in.Priority, Label: workspace.PriorityLabel(*in.Priority)}
	}
	for _, name := range in.Tags {
		t.Tags = append(t.Tags, workspace.Tag{Name: name})
	}
	f.tasks = append(f.tasks, t)
	c := *t
	return &c, nil
}

// GetTask implements workspace.Repository.
func (f *FakeRepository) GetTask(ctx context.Context, target workspace.TaskTarget, subtasks bool) (*workspace.Task, error) {
	done, err := f.enter(ctx, "GetTask")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if t := f.findTask(target); t != nil {
		c := *t
		return &c, nil
	}
	return nil, notFound("task", target.ID)
}

// GetTasks implements workspace.Repository.
func (f *FakeRepository) GetTasks(ctx context.Context, listID string, filter workspace.TaskFilter) (*workspace.Page[workspace.Task], error) {
	done, err := f.enter(ctx, "GetTasks")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &workspace.Page[workspace.Task]{Page: filter.Page, LastPage: true}
	for _, t := range f.tasks {
		if t.List.ID != listID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsFold(filter.Statuses, t.Status.Status) {
			continue
		}
		page.Items = append(page.Items, *t)
	}
	if f.PageSize > 0 {
		start := min(filter.Page*f.PageSize, len(page.Items))
		end := min(start+f.PageSize, len(page.Items))
		page.LastPage = end == len(page.Items)
		page.Items = page.Items[start:end]
	}
	return page, nil
}

// GetWorkspaceTasks implements workspace.Repository.
func (f *FakeRepository) GetWorkspaceTasks(ctx context.Context, teamID string, filter workspace.WorkspaceTaskFilter) (*workspace.Page[workspace.Task], error) {
	done, err := f.enter(ctx, "GetWorkspaceTasks")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &workspace.Page[workspace.Task]{Page: filter.Page, LastPage: true}
	for _, t := range f.tasks {
		if len(filter.ListIDs) > 0 && !containsFold(filter.ListIDs, t.List.ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsFold(filter.Statuses, t.Status.Status) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(t, filter.Tags) {
			continue
		}
		page.Items = append(page.Items, *t)
	}
	return page, nil
}

// UpdateTask implements workspace.Repository.
func (f *FakeRepository) UpdateTask(ctx context.Context, target workspace.TaskTarget, in workspace.UpdateTask) (*workspace.Task, error) {
	done, err := f.enter(ctx, "UpdateTask")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(target)
	if t == nil {
		return nil, notFound("task", target.ID)
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = &workspace.Priority{ID: *in.Priority, Label: workspace.PriorityLabel(*in.Priority)}
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.StartDate != nil {
		t.StartDate = in.StartDate
	}
	c := *t
	return &c, nil
}

// DeleteTask implements workspace.Repository.
func (f *FakeRepository) DeleteTask(ctx context.Context, target workspace.TaskTarget) error {
	done, err := f.enter(ctx, "DeleteTask")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if (!target.Custom && t.ID == target.ID) || (target.Custom && t.CustomID == target.ID) {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound("task", target.ID)
}

// GetTaskComments implements workspace.Repository.
func (f *FakeRepository) GetTaskComments(ctx context.Context, target workspace.TaskTarget, start *time.Time, startID string) ([]workspace.Comment, error) {
	done, err := f.enter(ctx, "GetTaskComments")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(target)
	if t == nil {
		return nil, notFound("task", target.ID)
	}
	return append([]workspace.Comment(nil), f.comments[t.ID]...), nil
}

// CreateTaskComment implements workspace.Repository.
func (f *FakeRepository) CreateTaskComment(ctx context.Context, target workspace.TaskTarget, in workspace.CreateComment) (*workspace.Comment, error) {
	done, err := f.enter(ctx, "CreateTaskComment")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(target)
	if t == nil {
		return nil, notFound("task", target.ID)
	}
	c := workspace.Comment{ID: f.newID(), Text: in.Text}
	f.comments[t.ID] = append(f.comments[t.ID], c)
	return &c, nil
}

// GetSpaceTags implements workspace.Repository.
func (f *FakeRepository) GetSpaceTags(ctx context.Context, spaceID string) ([]workspace.Tag, error) {
	done, err := f.enter(ctx, "GetSpaceTags")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workspace.Tag(nil), f.tags[spaceID]...), nil
}

// CreateSpaceTag implements workspace.Repository.
func (f *FakeRepository) CreateSpaceTag(ctx context.Context, spaceID string, in workspace.TagInput) (*workspace.Tag, error) {
	done, err := f.enter(ctx, "CreateSpaceTag")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tag := workspace.Tag{Name: in.Name, FG: in.FG, BG: in.BG}
	f.tags[spaceID] = append(f.tags[spaceID], tag)
	return &tag, nil
}

// UpdateSpaceTag implements workspace.Repository.
func (f *FakeRepository) UpdateSpaceTag(ctx context.Context, spaceID, tagName string, in workspace.TagInput) (*workspace.Tag, error) {
	done, err := f.enter(ctx, "UpdateSpaceTag")
	defer done()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, tag := range f.tags[spaceID] {
		if strings.EqualFold(tag.Name, tagName) {
			updated := workspace.Tag{Name: in.Name, FG: in.FG, BG: in.BG}
			f.tags[spaceID][i] = updated
			return &updated, nil
		}
	}
	return nil, notFound("tag", tagName)
}

// DeleteSpaceTag implements workspace.Repository.
func (f *FakeRepository) DeleteSpaceTag(ctx context.Context, spaceID, tagName string) error {
	done, err := f.enter(ctx, "DeleteSpaceTag")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tags := f.tags[spaceID]
	for i, tag := range tags {
		if strings.EqualFold(tag.Name, tagName) {
			f.tags[spaceID] = append(tags[:i], tags[i+1:]...)
			return nil
		}
	}
	return notFound("tag", tagName)
}

// AddTagToTask implements workspace.Repository.
func (f *FakeRepository) AddTagToTask(ctx context.Context, target workspace.TaskTarget, tagName string) error {
	done, err := f.enter(ctx, "AddTagToTask")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(target)
	if t == nil {
		return notFound("task", target.ID)
	}
	t.Tags = append(t.Tags, workspace.Tag{Name: tagName})
	return nil
}

// RemoveTagFromTask implements workspace.Repository.
func (f *FakeRepository) RemoveTagFromTask(ctx context.Context, target workspace.TaskTarget, tagName string) error {
	done, err := f.enter(ctx, "RemoveTagFromTask")
	defer done()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.findTask(target)
	if t == nil {
		return notFound("task", target.ID)
	}
	kept := t.Tags[:0]
	for _, tag := range t.Tags {
		if !strings.EqualFold(tag.Name, tagName) {
			kept = append(kept, tag)
		}
	}
	t.Tags = kept
	return nil
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func hasAnyTag(t *workspace.Task, tags []string) bool {
	for _, tag := range t.Tags {
		if containsFold(tags, tag.Name) {
			return true
		}
	}
	return false
}

var _ workspace.Repository = (*FakeRepository)(nil)
