package services

import (
	"context"
	"strings"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/filetree"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

type WorkspaceService struct {
	repo   ports.WorkspaceFileRepository
	logger *logger.Logger
}

func NewWorkspaceService(repo ports.WorkspaceFileRepository, log *logger.Logger) ports.WorkspaceService {
	return &WorkspaceService{repo: repo, logger: log}
}

func (s *WorkspaceService) GetFileTree(ctx context.Context) ([]*domain.FileSystemNode, error) {
	files, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Errorw("workspace_tree_fetch_failed", "error", err)
		return nil, err
	}
	return filetree.FromFlat(files), nil
}

func (s *WorkspaceService) CreateFile(ctx context.Context, input ports.CreateWorkspaceFileInput) (*domain.WorkspaceFile, error) {
	if input.Path == "" {
		return nil, ErrWorkspacePathRequired
	}

	name := input.Path
	var parentPath *string
	if idx := strings.LastIndex(input.Path, "/"); idx >= 0 {
		name = input.Path[idx+1:]
		if idx > 0 {
			parent := input.Path[:idx]
			parentPath = &parent
		}
	}

	file := &domain.WorkspaceFile{
		Path:        input.Path,
		Name:        name,
		Content:     input.Content,
		IsDirectory: input.IsDirectory,
		ParentPath:  parentPath,
		SizeBytes:   int64(len(input.Content)),
	}

	if err := s.repo.Create(ctx, file); err != nil {
		s.logger.Errorw("workspace_file_create_failed", "path", input.Path, "error", err)
		return nil, err
	}

	s.logger.Infow("workspace_file_created", "path", input.Path, "is_directory", input.IsDirectory)
	return file, nil
}

func (s *WorkspaceService) GetFileContent(ctx context.Context, path string) (*domain.WorkspaceFile, error) {
	if path == "" {
		return nil, ErrWorkspacePathRequired
	}

	file, err := s.repo.GetByPath(ctx, path)
	if err != nil {
		return nil, ErrWorkspaceFileNotFound
	}
	return file, nil
}
