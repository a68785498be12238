package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

// FolderService provides folder management operations.
type FolderService struct {
	repo     workspace.Repository
	resolver *Resolver
	logger   *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(repo workspace.Repository, resolver *Resolver, logger *slog.Logger) *FolderService {
	return &FolderService{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// CreateFolderRequest contains parameters for creating a folder.
type CreateFolderRequest struct {
	Space            Ref
	Name             string
	OverrideStatuses *bool
}

// CreateFolder creates a folder in a space.
func (s *FolderService) CreateFolder(ctx context.Context, req CreateFolderRequest) (*workspace.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, workspace.NewValidationError("name", "name is required")
	}

	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, req.Space)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.CreateFolder(ctx, spaceID, workspace.CreateFolder{
		Name:             name,
		OverrideStatuses: req.OverrideStatuses,
	})
	if err != nil {
		s.logger.Error("failed to create folder", "space_id", spaceID, "name", name, "error", err)
		return nil, errors.Wrap(err, "create folder")
	}

	s.logger.Info("folder created", "id", f.ID, "name", f.Name, "space_id", spaceID)
	return f, nil
}

// GetFolder retrieves a folder by ID or by name within a space.
func (s *FolderService) GetFolder(ctx context.Context, ref Ref) (*workspace.Folder, error) {
	id, err := s.resolver.Resolve(ctx, workspace.KindFolder, ref)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get folder")
	}
	return f, nil
}

// UpdateFolderRequest contains parameters for updating a folder.
type UpdateFolderRequest struct {
	Folder           Ref
	Name             *string
	OverrideStatuses *bool
}

// UpdateFolder changes a folder's name or status override.
func (s *FolderService) UpdateFolder(ctx context.Context, req UpdateFolderRequest) (*workspace.Folder, error) {
	if req.Name == nil && req.OverrideStatuses == nil {
		return nil, workspace.NewValidationError("name", "at least one of name or override_statuses must be provided")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, workspace.NewValidationError("name", "name cannot be empty")
	}

	id, err := s.resolver.Resolve(ctx, workspace.KindFolder, req.Folder)
	if err != nil {
		return nil, err
	}

	f, err := s.repo.UpdateFolder(ctx, id, workspace.UpdateFolder{
		Name:             req.Name,
		OverrideStatuses: req.OverrideStatuses,
	})
	if err != nil {
		s.logger.Error("failed to update folder", "id", id, "error", err)
		return nil, errors.Wrap(err, "update folder")
	}

	s.logger.Info("folder updated", "id", id)
	return f, nil
}

// DeleteFolder deletes a folder and returns the resolved ID.
func (s *FolderService) DeleteFolder(ctx context.Context, ref Ref) (string, error) {
	id, err := s.resolver.Resolve(ctx, workspace.KindFolder, ref)
	if err != nil {
		return "", err
	}

	if err := s.repo.DeleteFolder(ctx, id); err != nil {
		s.logger.Error("failed to delete folder", "id", id, "error", err)
		return "", errors.Wrap(err, "delete folder")
	}

	s.logger.Info("folder deleted", "id", id)
	return id, nil
}
