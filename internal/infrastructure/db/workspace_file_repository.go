package db

import (
	"context"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type workspaceFileRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkspaceFileRepository(db *gorm.DB, log *logger.Logger) ports.WorkspaceFileRepository {
	return &workspaceFileRepository{db: db, log: log}
}

func (r *workspaceFileRepository) Create(ctx context.Context, file *domain.WorkspaceFile) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		r.log.Errorw("workspace_repo_create_failed", "path", file.Path, "error", err)
		return err
	}
	r.log.Infow("workspace_repo_create_ok", "path", file.Path)
	return nil
}

func (r *workspaceFileRepository) GetAll(ctx context.Context) ([]domain.WorkspaceFile, error) {
	var files []domain.WorkspaceFile
	if err := r.db.WithContext(ctx).Order("path ASC").Find(&files).Error; err != nil {
		r.log.Errorw("workspace_repo_list_failed", "error", err)
		return nil, err
	}
	return files, nil
}

func (r *workspaceFileRepository) GetByPath(ctx context.Context, path string) (*domain.WorkspaceFile, error) {
	var file domain.WorkspaceFile
	if err := r.db.WithContext(ctx).Where("path = ?", path).First(&file).Error; err != nil {
		r.log.Errorw("workspace_repo_get_failed", "path", path, "error", err)
		return nil, err
	}
	return &file, nil
}

func (r *workspaceFileRepository) Delete(ctx context.Context, path string) error {
	if err := r.db.WithContext(ctx).Where("path = ?", path).Delete(&domain.WorkspaceFile{}).Error; err != nil {
		r.log.Errorw("workspace_repo_delete_failed", "path", path, "error", err)
		return err
	}
	r.log.Infow("workspace_repo_delete_ok", "path", path)
	return nil
}
