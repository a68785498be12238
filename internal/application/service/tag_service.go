package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-faster/errors"

	"clickup-mcp/internal/domain/workspace"
)

// TagService manages space tags and their attachment to tasks.
type TagService struct {
	repo     workspace.Repository
	resolver *Resolver
	logger   *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(repo workspace.Repository, resolver *Resolver, logger *slog.Logger) *TagService {
	return &TagService{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

// GetSpaceTags lists the tags defined in a space.
func (s *TagService) GetSpaceTags(ctx context.Context, space Ref) ([]workspace.Tag, error) {
	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, space)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.GetSpaceTags(ctx, spaceID)
	if err != nil {
		return nil, errors.Wrap(err, "get space tags")
	}
	return tags, nil
}

// applyColorCommand overrides bg and fg when command names a color.
// An unparseable command leaves them untouched.
func (s *TagService) applyColorCommand(command string, bg, fg *string) {
	if strings.TrimSpace(command) == "" {
		return
	}
	colors, ok := ParseColorCommand(command)
	if !ok {
		s.logger.Warn("could not process color command, keeping colors", "command", command)
		return
	}
	*bg, *fg = colors.Background, colors.Foreground
	s.logger.Debug("color command processed", "command", command, "bg", colors.Background, "fg", colors.Foreground)
}

// CreateSpaceTagRequest contains parameters for creating a tag.
type CreateSpaceTagRequest struct {
	Space        Ref
	Name         string
	BG           string
	FG           string
	ColorCommand string
}

// CreateSpaceTag creates a tag in a space. Missing colors default to white
// text on black.
func (s *TagService) CreateSpaceTag(ctx context.Context, req CreateSpaceTagRequest) (*workspace.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, workspace.NewValidationError("tagName", "tagName is required")
	}

	bg, fg := req.BG, req.FG
	if bg == "" {
		bg = DefaultTagBG
	}
	if fg == "" {
		fg = DefaultTagFG
	}
	s.applyColorCommand(req.ColorCommand, &bg, &fg)

	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, req.Space)
	if err != nil {
		return nil, err
	}

	tag, err := s.repo.CreateSpaceTag(ctx, spaceID, workspace.TagInput{Name: name, BG: bg, FG: fg})
	if err != nil {
		s.logger.Error("failed to create tag", "space_id", spaceID, "tag", name, "error", err)
		return nil, errors.Wrap(err, "create space tag")
	}

	s.logger.Info("tag created", "space_id", spaceID, "tag", name)
	return tag, nil
}

// UpdateSpaceTagRequest contains parameters for updating a tag.
type UpdateSpaceTagRequest struct {
	Space        Ref
	Name         string
	NewName      *string
	BG           *string
	FG           *string
	ColorCommand string
}

// UpdateSpaceTag changes a tag's name or colors. Fields not supplied keep
// their current values.
func (s *TagService) UpdateSpaceTag(ctx context.Context, req UpdateSpaceTagRequest) (*workspace.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, workspace.NewValidationError("tagName", "tagName is required")
	}
	if req.NewName == nil && req.BG == nil && req.FG == nil && strings.TrimSpace(req.ColorCommand) == "" {
		return nil, workspace.NewValidationError("newTagName", "at least one of newTagName, tagBg, tagFg, or colorCommand must be provided")
	}

	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, req.Space)
	if err != nil {
		return nil, err
	}

	tags, err := s.repo.GetSpaceTags(ctx, spaceID)
	if err != nil {
		return nil, errors.Wrap(err, "get space tags")
	}
	var current *workspace.Tag
	for i := range tags {
		if strings.EqualFold(tags[i].Name, name) {
			current = &tags[i]
			break
		}
	}
	if current == nil {
		return nil, &workspace.ResolutionError{Kind: "tag", Name: name, Scope: "space " + spaceID, Err: workspace.ErrNotFound}
	}

	in := workspace.TagInput{Name: current.Name, BG: current.BG, FG: current.FG}
	if req.NewName != nil {
		in.Name = strings.TrimSpace(*req.NewName)
	}
	if req.BG != nil {
		in.BG = *req.BG
	}
	if req.FG != nil {
		in.FG = *req.FG
	}
	s.applyColorCommand(req.ColorCommand, &in.BG, &in.FG)

	tag, err := s.repo.UpdateSpaceTag(ctx, spaceID, current.Name, in)
	if err != nil {
		s.logger.Error("failed to update tag", "space_id", spaceID, "tag", name, "error", err)
		return nil, errors.Wrap(err, "update space tag")
	}

	s.logger.Info("tag updated", "space_id", spaceID, "tag", name, "new_name", in.Name)
	return tag, nil
}

// DeleteSpaceTag removes a tag from a space.
func (s *TagService) DeleteSpaceTag(ctx context.Context, space Ref, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return workspace.NewValidationError("tagName", "tagName is required")
	}
	spaceID, err := s.resolver.Resolve(ctx, workspace.KindSpace, space)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSpaceTag(ctx, spaceID, name); err != nil {
		s.logger.Error("failed to delete tag", "space_id", spaceID, "tag", name, "error", err)
		return errors.Wrap(err, "delete space tag")
	}
	s.logger.Info("tag deleted", "space_id", spaceID, "tag", name)
	return nil
}

// AddTagToTask attaches an existing space tag to a task.
func (s *TagService) AddTagToTask(ctx context.Context, ref TaskRef, tagName string) (workspace.TaskTarget, error) {
	return s.tagTask(ctx, ref, tagName, true)
}

// RemoveTagFromTask detaches a tag from a task. The tag stays in the space.
func (s *TagService) RemoveTagFromTask(ctx context.Context, ref TaskRef, tagName string) (workspace.TaskTarget, error) {
	return s.tagTask(ctx, ref, tagName, false)
}

func (s *TagService) tagTask(ctx context.Context, ref TaskRef, tagName string, add bool) (workspace.TaskTarget, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return workspace.TaskTarget{}, workspace.NewValidationError("tagName", "tagName is required")
	}

	target, err := s.resolver.NewLookup().ResolveTask(ctx, ref)
	if err != nil {
		return workspace.TaskTarget{}, err
	}

	if add {
		if tagName, err = s.spaceTagName(ctx, target, tagName); err != nil {
			return target, err
		}
		err = s.repo.AddTagToTask(ctx, target, tagName)
	} else {
		err = s.repo.RemoveTagFromTask(ctx, target, tagName)
	}
	if err != nil {
		s.logger.Error("failed to change task tag", "task_id", target.ID, "tag", tagName, "add", add, "error", err)
		return target, errors.Wrapf(err, "tag task %s", target.ID)
	}

	s.logger.Info("task tag changed", "task_id", target.ID, "tag", tagName, "add", add)
	return target, nil
}

// spaceTagName returns the name of the tag in the task's space matching
// tagName case-insensitively.
func (s *TagService) spaceTagName(ctx context.Context, target workspace.TaskTarget, tagName string) (string, error) {
	task, err := s.repo.GetTask(ctx, target, false)
	if err != nil {
		return "", errors.Wrapf(err, "get task %s", target.ID)
	}
	spaceID := task.Space.ID
	if spaceID == "" {
		list, err := s.repo.GetList(ctx, task.List.ID)
		if err != nil {
			return "", errors.Wrapf(err, "get list %s", task.List.ID)
		}
		spaceID = list.Space.ID
	}

	tags, err := s.repo.GetSpaceTags(ctx, spaceID)
	if err != nil {
		return "", errors.Wrap(err, "get space tags")
	}
	for _, tag := range tags {
		if strings.EqualFold(tag.Name, tagName) {
			return tag.Name, nil
		}
	}
	return "", &workspace.ResolutionError{
		Kind:  "tag",
		Name:  tagName,
		Scope: "space " + spaceID,
		Hint:  "Create it first with create_space_tag",
		Err:   workspace.ErrNotFound,
	}
}
