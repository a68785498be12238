package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

// ListService provides list management operations.
type ListService struct {
	repo     workspace.Repository
	resolver *Resolver
	teamID   string
	logger   *slog.Logger
}

// NewListService creates a new list service.
func NewListService(repo workspace.Repository, resolver *Resolver, teamID string, logger *slog.Logger) *ListService {
	return &ListService{
		repo:     repo,
		resolver: resolver,
		teamID:   teamID,
		logger:   logger,
	}
}

// URL returns the web address of a list.
func (s *ListService) URL(listID string) string {
	return fmt.Sprintf("https://app.clickup.com/%s/v/l/%s", s.teamID, listID)
}

func validateCreateList(in workspace.CreateList) error {
	if strings.TrimSpace(in.Name) == "" {
		return workspace.NewValidationError("name", "name is required")
	}
	if in.Priority != nil && (*in.Priority < 1 || *in.Priority > 4) {
		return workspace.NewValidationError("priority", "priority must be between 1 (urgent) and 4 (low)")
	}
	return nil
}

// CreateList creates a list directly in a space.
func (s *ListService) CreateList(ctx context.Context, space Ref, in workspace.CreateList) (*workspace.List, error) {
	if err := validateCreateList(in); err != nil {
		return nil, err
	}

	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, space)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.CreateList(ctx, spaceID, in)
	if err != nil {
		s.logger.Error("failed to create list", "space_id", spaceID, "name", in.Name, "error", err)
		return nil, errors.Wrap(err, "create list")
	}

	s.logger.Info("list created", "id", l.ID, "name", l.Name, "space_id", spaceID)
	return l, nil
}

// CreateListInFolder creates a list inside a folder.
func (s *ListService) CreateListInFolder(ctx context.Context, folder Ref, in workspace.CreateList) (*workspace.List, error) {
	if err := validateCreateList(in); err != nil {
		return nil, err
	}

	folderID, err := s.resolver.Resolve(ctx, workspace.KindFolder, folder)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.CreateListInFolder(ctx, folderID, in)
	if err != nil {
		s.logger.Error("failed to create list", "folder_id", folderID, "name", in.Name, "error", err)
		return nil, errors.Wrap(err, "create list in folder")
	}

	s.logger.Info("list created", "id", l.ID, "name", l.Name, "folder_id", folderID)
	return l, nil
}

// GetList retrieves a list by ID or name.
func (s *ListService) GetList(ctx context.Context, ref Ref) (*workspace.List, error) {
	id, err := s.resolver.Resolve(ctx, workspace.KindList, ref)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.GetList(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get list")
	}
	return l, nil
}

// UpdateListRequest contains parameters for updating a list.
type UpdateListRequest struct {
	List    Ref
	Name    *string
	Content *string
	Status  *string
}

// UpdateList changes a list's name, content or status.
func (s *ListService) UpdateList(ctx context.Context, req UpdateListRequest) (*workspace.List, error) {
	if req.Name == nil && req.Content == nil && req.Status == nil {
		return nil, workspace.NewValidationError("name", "at least one of name, content, or status must be provided")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, workspace.NewValidationError("name", "name cannot be empty")
	}

	id, err := s.resolver.Resolve(ctx, workspace.KindList, req.List)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.UpdateList(ctx, id, workspace.UpdateList{
		Name:    req.Name,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		s.logger.Error("failed to update list", "id", id, "error", err)
		return nil, errors.Wrap(err, "update list")
	}

	s.logger.Info("list updated", "id", id)
	return l, nil
}

// DeleteList deletes a list and returns the resolved ID.
func (s *ListService) DeleteList(ctx context.Context, ref Ref) (string, error) {
	id, err := s.resolver.Resolve(ctx, workspace.KindList, ref)
	if err != nil {
		return "", err
	}

	if err := s.repo.DeleteList(ctx, id); err != nil {
		s.logger.Error("failed to delete list", "id", id, "error", err)
		return "", errors.Wrap(err, "delete list")
	}

	s.logger.Info("list deleted", "id", id)
	return id, nil
}
