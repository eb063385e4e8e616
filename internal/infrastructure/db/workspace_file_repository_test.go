package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

func TestWorkspaceFileRepository(t *testing.T) {
	repo := NewWorkspaceFileRepository(openTestDB(t), logger.NewNop())
	ctx := context.Background()

	parent := "/src"
	require.NoError(t, repo.Create(ctx, &domain.WorkspaceFile{Path: "/src", Name: "src", IsDirectory: true}))
	require.NoError(t, repo.Create(ctx, &domain.WorkspaceFile{Path: "/src/main.go", Name: "main.go", ParentPath: &parent, Content: "package main"}))

	// Unique path constraint
	err := repo.Create(ctx, &domain.WorkspaceFile{Path: "/src", Name: "src"})
	assert.Error(t, err)

	files, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/src", files[0].Path, "listing is ordered by path")

	file, err := repo.GetByPath(ctx, "/src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", file.Content)
	require.NotNil(t, file.ParentPath)
	assert.Equal(t, "/src", *file.ParentPath)

	_, err = repo.GetByPath(ctx, "/missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(ctx, "/src/main.go"))
	files, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSystemSettingRepository(t *testing.T) {
	repo := NewSystemSettingRepository(openTestDB(t), logger.NewNop())
	ctx := context.Background()

	// Missing key reads as nil, not an error
	setting, err := repo.Get(ctx, domain.SettingSandboxAPIKey)
	require.NoError(t, err)
	assert.Nil(t, setting)

	require.NoError(t, repo.Set(ctx, &domain.SystemSetting{
		Key:      domain.SettingSandboxAPIKey,
		Value:    "v1",
		Type:     "string",
		Category: "integration",
	}))

	// Set on an existing key updates in place
	require.NoError(t, repo.Set(ctx, &domain.SystemSetting{
		Key:   domain.SettingSandboxAPIKey,
		Value: "v2",
		Type:  "encrypted",
	}))

	setting, err = repo.Get(ctx, domain.SettingSandboxAPIKey)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, "v2", setting.Value)
	assert.Equal(t, "encrypted", setting.Type)

	require.NoError(t, repo.Delete(ctx, domain.SettingSandboxAPIKey))
	setting, err = repo.Get(ctx, domain.SettingSandboxAPIKey)
	require.NoError(t, err)
	assert.Nil(t, setting)
}
