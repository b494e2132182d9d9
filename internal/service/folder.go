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

// FolderService orchestrates folder CRUD. Names are unique per owner; the
// repository reports a duplicate as a Conflict.
type FolderService struct {
	folders repository.FolderRepository
	logger  *slog.Logger
}

func NewFolderService(folders repository.FolderRepository, logger *slog.Logger) *FolderService {
	return &FolderService{folders: folders, logger: logger}
}

func (s *FolderService) List(ctx context.Context, userID string) ([]model.Folder, error) {
	folders, err := s.folders.FindFolders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) Get(ctx context.Context, userID, id string) (*model.Folder, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}
	return s.folders.FindFolder(ctx, id, userID)
}

func (s *FolderService) Create(ctx context.Context, userID, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidInput("name", "Missing `name` in request body")
	}

	folder := &model.Folder{Name: name, UserID: userID}
	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		slog.String("id", folder.ID),
		slog.String("userID", userID),
	)

	return folder, nil
}

func (s *FolderService) Update(ctx context.Context, userID, id, name string) (*model.Folder, error) {
	if !isWellFormedID(id) {
		return nil, apperror.InvalidInput("id", "The `id` is not valid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.InvalidInput("name", "Missing `name` in request body")
	}

	folder, err := s.folders.FindFolder(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	folder.Name = name
	if err := s.folders.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", slog.String("id", id))

	return folder, nil
}

// Delete removes a folder; the repository also unfiles the owner's notes
// that referenced it, so no dangling folderId survives.
func (s *FolderService) Delete(ctx context.Context, userID, id string) error {
	if !isWellFormedID(id) {
		return apperror.InvalidInput("id", "The `id` is not valid")
	}

	if err := s.folders.DeleteFolder(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("folder deleted", slog.String("id", id))
	return nil
}
