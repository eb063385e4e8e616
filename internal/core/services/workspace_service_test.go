package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragbox/backend/internal/core/ports"
	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/infrastructure/logger"
)

type memFileRepo struct {
	files map[string]*domain.WorkspaceFile
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*domain.WorkspaceFile{}}
}

func (r *memFileRepo) Create(ctx context.Context, file *domain.WorkspaceFile) error {
	if _, exists := r.files[file.Path]; exists {
		return errors.New("duplicate path")
	}
	r.files[file.Path] = file
	return nil
}

func (r *memFileRepo) GetAll(ctx context.Context) ([]domain.WorkspaceFile, error) {
	out := make([]domain.WorkspaceFile, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, *f)
	}
	return out, nil
}

func (r *memFileRepo) GetByPath(ctx context.Context, path string) (*domain.WorkspaceFile, error) {
	f, ok := r.files[path]
	if !ok {
		return nil, errors.New("record not found")
	}
	return f, nil
}

func (r *memFileRepo) Delete(ctx context.Context, path string) error {
	delete(r.files, path)
	return nil
}

func TestWorkspaceCreateFile(t *testing.T) {
	tests := map[string]struct {
		input         ports.CreateWorkspaceFileInput
		expErr        error
		expName       string
		expParentPath *string
		expSize       int64
	}{
		"Missing path": {
			input:  ports.CreateWorkspaceFileInput{},
			expErr: ErrWorkspacePathRequired,
		},
		"Nested file derives name and parent": {
			input:         ports.CreateWorkspaceFileInput{Path: "/src/main.go", Content: "package main"},
			expName:       "main.go",
			expParentPath: strPtrWS("/src"),
			expSize:       12,
		},
		"Root level file has no parent": {
			input:   ports.CreateWorkspaceFileInput{Path: "/README.md"},
			expName: "README.md",
		},
		"Directory": {
			input:         ports.CreateWorkspaceFileInput{Path: "/src/util", IsDirectory: true},
			expName:       "util",
			expParentPath: strPtrWS("/src"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc := NewWorkspaceService(newMemFileRepo(), logger.NewNop())
			file, err := svc.CreateFile(context.Background(), test.input)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expName, file.Name)
			assert.Equal(t, test.expParentPath, file.ParentPath)
			assert.Equal(t, test.expSize, file.SizeBytes)
		})
	}
}

func TestWorkspaceGetFileTree(t *testing.T) {
	repo := newMemFileRepo()
	svc := NewWorkspaceService(repo, logger.NewNop())
	ctx := context.Background()

	_, err := svc.CreateFile(ctx, ports.CreateWorkspaceFileInput{Path: "/src", IsDirectory: true})
	require.NoError(t, err)
	_, err = svc.CreateFile(ctx, ports.CreateWorkspaceFileInput{Path: "/src/main.go", Content: "x"})
	require.NoError(t, err)

	tree, err := svc.GetFileTree(ctx)
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "src", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "main.go", tree[0].Children[0].Name)
}

func TestWorkspaceGetFileContent(t *testing.T) {
	repo := newMemFileRepo()
	svc := NewWorkspaceService(repo, logger.NewNop())
	ctx := context.Background()

	_, err := svc.CreateFile(ctx, ports.CreateWorkspaceFileInput{Path: "/notes.txt", Content: "hi"})
	require.NoError(t, err)

	file, err := svc.GetFileContent(ctx, "/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", file.Content)

	_, err = svc.GetFileContent(ctx, "/absent.txt")
	assert.ErrorIs(t, err, ErrWorkspaceFileNotFound)

	_, err = svc.GetFileContent(ctx, "")
	assert.ErrorIs(t, err, ErrWorkspacePathRequired)
}

func strPtrWS(s string) *string { return &s }
