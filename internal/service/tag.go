package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/noteful/internal/apperror"
	"github.com/sakif/noteful/internal/model"
	"github.com/sakif/noteful/internal/repository"
)

// TagService orchestrates tag CRUD, mirroring FolderService.
type TagService struct {
	tags   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(tags repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{tags: tags, logger: logger}
}

func (s *TagService) List(ctx context.Context, userID string) ([]model.Tag, error) {
	tags, err := s.tags.FindTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Get(ctx context.Context, userID, id string) (*model.Tag, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}
	return s.tags.FindTag(ctx, id, userID)
}

func (s *TagService) Create(ctx context.Context, userID, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidInput("name", "Missing `name` in request body")
	}

	tag := &model.Tag{Name: name, UserID: userID}
	if err := s.tags.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		slog.String("id", tag.ID),
		slog.String("userID", userID),
	)

	return tag, nil
}

func (s *TagService) Update(ctx context.Context, userID, id, name string) (*model.Tag, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidInput("name", "Missing `name` in request body")
	}

	tag, err := s.tags.FindTag(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	tag.Name = name
	if err := s.tags.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", slog.String("id", id))

	return tag, nil
}

// Delete removes a tag; the repository also strips it from the owner's
// notes so no note keeps a reference to a deleted tag.
func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	if !isWellFormedID(id) {
		return apperror.InvalidInput("id", "The `id` is not valid")
	}

	if err := s.tags.DeleteTag(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}
