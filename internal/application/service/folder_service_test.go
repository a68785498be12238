package service

import (
	"context"
	"testing"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

func TestFolderService_CreateFolderBySpaceName(t *testing.T) {
	s := setupTestServices(t)

	f, err := s.folders.CreateFolder(context.Background(), CreateFolderRequest{
		Space: Ref{Name: "Engineering"},
		Name:  "Sprint 3",
	})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if f.Name != "Sprint 3" {
		t.Errorf("CreateFolder().Name = %q", f.Name)
	}
	if f.Space.ID != "123" || f.Space.Name != "Engineering" {
		t.Errorf("CreateFolder().Space = %+v, want 123/Engineering", f.Space)
	}
}

func TestFolderService_CreateFolderUnknownSpace(t *testing.T) {
	s := setupTestServices(t)

	_, err := s.folders.CreateFolder(context.Background(), CreateFolderRequest{Space: Ref{Name: "Sales"}, Name: "Q3"})
	if !errors.Is(err, workspace.ErrNotFound) {
		t.Fatalf("CreateFolder() error = %v, want not found", err)
	}
	if got := s.repo.Calls("CreateFolder"); got != 0 {
		t.Errorf("CreateFolder calls = %d, want 0", got)
	}
}

func TestFolderService_UpdateFolder(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()

	if _, err := s.folders.UpdateFolder(ctx, UpdateFolderRequest{Folder: Ref{ID: "456"}}); !errors.Is(err, workspace.ErrValidation) {
		t.Errorf("UpdateFolder(no fields) error = %v, want validation error", err)
	}

	f, err := s.folders.UpdateFolder(ctx, UpdateFolderRequest{
		Folder: Ref{Name: "Sprint 1", Scope: Scope{SpaceName: "Engineering"}},
		Name:   strPtr("Sprint 1 (done)"),
	})
	if err != nil {
		t.Fatalf("UpdateFolder() error = %v", err)
	}
	if f.ID != "456" || f.Name != "Sprint 1 (done)" {
		t.Errorf("UpdateFolder() = %+v", f)
	}
}

func TestFolderService_GetAndDeleteFolder(t *testing.T) {
	s := setupTestServices(t)
	ctx := context.Background()
	ref := Ref{Name: "sprint 2", Scope: Scope{SpaceID: "123"}}

	f, err := s.folders.GetFolder(ctx, ref)
	if err != nil {
		t.Fatalf("GetFolder() error = %v", err)
	}
	if len(f.Lists) != 1 || f.Lists[0].ID != "790" {
		t.Errorf("GetFolder().Lists = %+v", f.Lists)
	}

	id, err := s.folders.DeleteFolder(ctx, ref)
	if err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	if id != "457" {
		t.Errorf("DeleteFolder() = %q, want 457", id)
	}
	if _, err := s.folders.GetFolder(ctx, Ref{ID: "457"}); !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("GetFolder() after delete error = %v, want not found", err)
	}
}
