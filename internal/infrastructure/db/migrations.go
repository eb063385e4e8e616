package db

import (
	"github.com/fragbox/backend/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Task{},
		&domain.WorkspaceFile{},
		&domain.SystemSetting{},
	)
	if err != nil {
		return err
	}

	return createCustomIndexes(db)
}

func createCustomIndexes(db *gorm.DB) error {
	// Bulk deletes and list views filter on status + creation time
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_status_created
		ON tasks (status, created_at DESC)
	`).Error; err != nil {
		return err
	}

	// Tree rebuilds group children by parent_path
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_workspace_files_parent
		ON workspace_files (parent_path)
	`).Error; err != nil {
		return err
	}

	return nil
}
