package filetree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragbox/backend/internal/domain"
	"github.com/fragbox/backend/internal/filetree"
)

func strPtr(s string) *string { return &s }

func TestFromFlat(t *testing.T) {
	tests := map[string]struct {
		files []domain.WorkspaceFile
		check func(t *testing.T, tree []*domain.FileSystemNode)
	}{
		"Empty input yields empty tree": {
			files: nil,
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				assert.Empty(t, tree)
			},
		},

		"Children attach to their parent regardless of input order": {
			files: []domain.WorkspaceFile{
				{Path: "/src/main.go", Name: "main.go", ParentPath: strPtr("/src")},
				{Path: "/src", Name: "src", IsDirectory: true},
				{Path: "/src/util.go", Name: "util.go", ParentPath: strPtr("/src")},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				src := tree[0]
				assert.Equal(t, "src", src.Name)
				assert.True(t, src.IsDirectory)
				require.Len(t, src.Children, 2)
				assert.Equal(t, "main.go", src.Children[0].Name)
				assert.Equal(t, "util.go", src.Children[1].Name)
			},
		},

		"Orphaned parent path falls back to root": {
			files: []domain.WorkspaceFile{
				{Path: "/lost/file.txt", Name: "file.txt", ParentPath: strPtr("/missing")},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.Equal(t, "file.txt", tree[0].Name)
			},
		},

		"Nil parent path is a root": {
			files: []domain.WorkspaceFile{
				{Path: "/README.md", Name: "README.md"},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.Equal(t, "README.md", tree[0].Name)
				assert.Nil(t, tree[0].Children)
			},
		},

		"Directories always carry a non-nil children slice": {
			files: []domain.WorkspaceFile{
				{Path: "/empty", Name: "empty", IsDirectory: true},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.NotNil(t, tree[0].Children)
				assert.Empty(t, tree[0].Children)
			},
		},

		"Name derived from path when missing": {
			files: []domain.WorkspaceFile{
				{Path: "/a/b/c.txt", ParentPath: strPtr("/missing")},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.Equal(t, "c.txt", tree[0].Name)
			},
		},

		"Deep nesting resolves through intermediate directories": {
			files: []domain.WorkspaceFile{
				{Path: "/a/b/c.txt", Name: "c.txt", ParentPath: strPtr("/a/b")},
				{Path: "/a", Name: "a", IsDirectory: true},
				{Path: "/a/b", Name: "b", IsDirectory: true, ParentPath: strPtr("/a")},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				require.Len(t, tree[0].Children, 1)
				b := tree[0].Children[0]
				assert.Equal(t, "b", b.Name)
				require.Len(t, b.Children, 1)
				assert.Equal(t, "c.txt", b.Children[0].Name)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.check(t, filetree.FromFlat(test.files))
		})
	}
}

func TestFromFlatDeterministic(t *testing.T) {
	shuffled := []domain.WorkspaceFile{
		{Path: "/z.txt", Name: "z.txt"},
		{Path: "/dir", Name: "dir", IsDirectory: true},
		{Path: "/dir/a.txt", Name: "a.txt", ParentPath: strPtr("/dir")},
		{Path: "/b.txt", Name: "b.txt"},
	}
	ordered := []domain.WorkspaceFile{
		{Path: "/b.txt", Name: "b.txt"},
		{Path: "/dir/a.txt", Name: "a.txt", ParentPath: strPtr("/dir")},
		{Path: "/dir", Name: "dir", IsDirectory: true},
		{Path: "/z.txt", Name: "z.txt"},
	}

	assert.Equal(t, filetree.FromFlat(ordered), filetree.FromFlat(shuffled))
}

func TestFromSandboxListing(t *testing.T) {
	tests := map[string]struct {
		files []domain.SandboxFile
		skip  filetree.SkipFunc
		check func(t *testing.T, tree []*domain.FileSystemNode)
	}{
		"Nested listing mirrors into tree with absolute paths": {
			files: []domain.SandboxFile{
				{
					Name:  "src",
					Path:  "home/user/src",
					IsDir: true,
					Children: []domain.SandboxFile{
						{Name: "app.py", Path: "home/user/src/app.py"},
					},
				},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.Equal(t, "/home/user/src", tree[0].Path)
				require.Len(t, tree[0].Children, 1)
				assert.Equal(t, "/home/user/src/app.py", tree[0].Children[0].Path)
				assert.Nil(t, tree[0].Children[0].Children)
			},
		},

		"Skipped subtrees are pruned entirely": {
			files: []domain.SandboxFile{
				{
					Name:  "node_modules",
					Path:  "/app/node_modules",
					IsDir: true,
					Children: []domain.SandboxFile{
						{Name: "react", Path: "/app/node_modules/react", IsDir: true},
					},
				},
				{Name: "index.js", Path: "/app/index.js"},
			},
			skip: filetree.SkipNamed("node_modules"),
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.Equal(t, "index.js", tree[0].Name)
			},
		},

		"Directory without children field becomes empty directory": {
			files: []domain.SandboxFile{
				{Name: "empty", Path: "/empty", IsDir: true},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				require.Len(t, tree, 1)
				assert.NotNil(t, tree[0].Children)
				assert.Empty(t, tree[0].Children)
			},
		},

		"Nil skip keeps everything": {
			files: []domain.SandboxFile{
				{Name: "node_modules", Path: "/node_modules", IsDir: true},
			},
			check: func(t *testing.T, tree []*domain.FileSystemNode) {
				assert.Len(t, tree, 1)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.check(t, filetree.FromSandboxListing(test.files, test.skip))
		})
	}
}
