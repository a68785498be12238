package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

func TestTagService_CreateSpaceTagDefaults(t *testing.T) {
	s := setupTestServices(t)

	tag, err := s.tags.CreateSpaceTag(context.Background(), CreateSpaceTagRequest{
		Space: Ref{Name: "Engineering"},
		Name:  "bug",
	})
	if err != nil {
		t.Fatalf("CreateSpaceTag() error = %v", err)
	}
	if tag.BG != DefaultTagBG || tag.FG != DefaultTagFG {
		t.Errorf("colors = %s/%s, want defaults", tag.BG, tag.FG)
	}
}

func TestTagService_CreateSpaceTagColorCommand(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	tag, err := s.tags.CreateSpaceTag(ctx, CreateSpaceTagRequest{
		Space:        Ref{ID: "123"},
		Name:         "urgent",
		BG:           "#123456",
		ColorCommand: "red tag",
	})
	if err != nil {
		t.Fatalf("CreateSpaceTag() error = %v", err)
	}
	if tag.BG != "#ff0000" || tag.FG != "#ffffff" {
		t.Errorf("colors = %s/%s, want #ff0000/#ffffff", tag.BG, tag.FG)
	}

	// unparseable commands keep defaults rather than failing
	tag, err = s.tags.CreateSpaceTag(ctx, CreateSpaceTagRequest{
		Space:        Ref{ID: "123"},
		Name:         "later",
		ColorCommand: "something nice",
	})
	if err != nil {
		t.Fatalf("CreateSpaceTag() error = %v", err)
	}
	if tag.BG != DefaultTagBG || tag.FG != DefaultTagFG {
		t.Errorf("colors = %s/%s, want defaults", tag.BG, tag.FG)
	}
}

func TestTagService_UpdateSpaceTagKeepsUnsetFields(t *testing.T) {
	s := setupTestServices(t)
	s.repo.AddTag("123", workspace.Tag{Name: "bug", BG: "#ff0000", FG: "#ffffff"})

	tag, err := s.tags.UpdateSpaceTag(context.Background(), UpdateSpaceTagRequest{
		Space:   Ref{ID: "123"},
		Name:    "BUG",
		NewName: strPtr("defect"),
	})
	if err != nil {
		t.Fatalf("UpdateSpaceTag() error = %v", err)
	}
	if tag.Name != "defect" || tag.BG != "#ff0000" || tag.FG != "#ffffff" {
		t.Errorf("UpdateSpaceTag() = %+v", tag)
	}
}

func TestTagService_UpdateSpaceTagValidation(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	_, err := s.tags.UpdateSpaceTag(ctx, UpdateSpaceTagRequest{Space: Ref{ID: "123"}, Name: "bug"})
	if !errors.Is(err, workspace.ErrValidation) {
		t.Errorf("UpdateSpaceTag(no fields) error = %v, want validation error", err)
	}

	_, err = s.tags.UpdateSpaceTag(ctx, UpdateSpaceTagRequest{Space: Ref{ID: "123"}, Name: "nope", BG: strPtr("#000")})
	if !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("UpdateSpaceTag(missing tag) error = %v, want not found", err)
	}
}

func TestTagService_TagTask(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()
	s.repo.AddTag("123", workspace.Tag{Name: "docs"})

	target, err := s.tags.AddTagToTask(ctx, TaskRef{TaskName: "Write docs"}, "DOCS")
	if err != nil {
		t.Fatalf("AddTagToTask() error = %v", err)
	}
	if target.ID != "t3" {
		t.Errorf("AddTagToTask() target = %+v", target)
	}
	task, _ := s.repo.Task("t3")
	if len(task.Tags) != 1 || task.Tags[0].Name != "docs" {
		t.Errorf("tags = %+v, want the space's spelling", task.Tags)
	}

	if _, err := s.tags.RemoveTagFromTask(ctx, TaskRef{TaskID: "t3"}, "docs"); err != nil {
		t.Fatalf("RemoveTagFromTask() error = %v", err)
	}
	task, _ = s.repo.Task("t3")
	if len(task.Tags) != 0 {
		t.Errorf("tags after remove = %+v", task.Tags)
	}

	if _, err := s.tags.AddTagToTask(ctx, TaskRef{TaskID: "t3"}, " "); !errors.Is(err, workspace.ErrValidation) {
		t.Errorf("AddTagToTask(blank) error = %v, want validation error", err)
	}
}

func TestTagService_AddTagToTaskUnknownTag(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()
	// defined in Marketing, not in the task's space
	s.repo.AddTag("124", workspace.Tag{Name: "launch"})

	for _, name := range []string{"no-such-tag", "launch"} {
		_, err := s.tags.AddTagToTask(ctx, TaskRef{TaskID: "t3"}, name)
		if !errors.Is(err, workspace.ErrNotFound) {
			t.Fatalf("AddTagToTask(%q) error = %v, want not found", name, err)
		}
		var resErr *workspace.ResolutionError
		if !errors.As(err, &resErr) || resErr.Scope != "space 123" {
			t.Errorf("AddTagToTask(%q) error = %v, want resolution error in space 123", name, err)
		}
		if !strings.Contains(err.Error(), "create_space_tag") {
			t.Errorf("error %q does not point at create_space_tag", err)
		}
	}

	task, _ := s.repo.Task("t3")
	if len(task.Tags) != 0 {
		t.Errorf("tags = %+v, want none", task.Tags)
	}
	if s.repo.Calls("AddTagToTask") != 0 {
		t.Errorf("AddTagToTask calls = %d, want 0", s.repo.Calls("AddTagToTask"))
	}
}

func TestTagService_GetAndDeleteSpaceTags(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()
	s.repo.AddTag("124", workspace.Tag{Name: "launch"})

	tags, err := s.tags.GetSpaceTags(ctx, Ref{Name: "Marketing"})
	if err != nil || len(tags) != 1 {
		t.Fatalf("GetSpaceTags() = %+v, %v", tags, err)
	}
	if err := s.tags.DeleteSpaceTag(ctx, Ref{ID: "124"}, "launch"); err != nil {
		t.Fatalf("DeleteSpaceTag() error = %v", err)
	}
	tags, _ = s.tags.GetSpaceTags(ctx, Ref{ID: "124"})
	if len(tags) != 0 {
		t.Errorf("tags after delete = %+v", tags)
	}
}
