// Package filetree converts flat and provider-native directory listings into
// the canonical FileSystemNode tree. No I/O happens here.
package filetree

import (
	"sort"
	"strings"

	"github.com/fragbox/backend/internal/domain"
)

// FromFlat builds a tree from flat rows whose hierarchy is encoded in
// path/parent_path strings. Entries are sorted by path first, which guarantees
// every parent is visited before any of its children (a child's path is a
// strict superstring of its parent's path). Entries whose parent_path does not
// resolve are kept as roots instead of being dropped.
//
// The output is deterministic for a given input regardless of input order;
// sibling order follows visit order after the sort.
func FromFlat(files []domain.WorkspaceFile) []*domain.FileSystemNode {
	sorted := make([]domain.WorkspaceFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	tree := make([]*domain.FileSystemNode, 0, len(sorted))
	pathMap := make(map[string]*domain.FileSystemNode, len(sorted))

	for _, file := range sorted {
		node := &domain.FileSystemNode{
			Name:        nodeName(file),
			Path:        file.Path,
			IsDirectory: file.IsDirectory,
		}
		if file.IsDirectory {
			node.Children = []*domain.FileSystemNode{}
		}

		pathMap[file.Path] = node

		if file.ParentPath != nil && *file.ParentPath != "" {
			if parent, ok := pathMap[*file.ParentPath]; ok && parent.IsDirectory {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}

	return tree
}

func nodeName(file domain.WorkspaceFile) string {
	if file.Name != "" {
		return file.Name
	}
	if idx := strings.LastIndex(file.Path, "/"); idx >= 0 {
		return file.Path[idx+1:]
	}
	return file.Path
}

// SkipFunc filters provider listing entries. Skipped entries and their whole
// subtrees are never visited.
type SkipFunc func(domain.SandboxFile) bool

// SkipNamed skips entries whose name contains any of the given substrings.
// Used to keep dependency caches like node_modules out of snapshots.
func SkipNamed(names ...string) SkipFunc {
	return func(f domain.SandboxFile) bool {
		for _, n := range names {
			if strings.Contains(f.Name, n) {
				return true
			}
		}
		return false
	}
}

// FromSandboxListing mirrors the provider's nested listing into the canonical
// tree shape. Directories without a children field become empty directories.
// The skip filter applies to input entries before recursion, so filtered
// subtrees are not walked at all. A nil skip keeps everything.
func FromSandboxListing(files []domain.SandboxFile, skip SkipFunc) []*domain.FileSystemNode {
	tree := make([]*domain.FileSystemNode, 0, len(files))
	for _, file := range files {
		if skip != nil && skip(file) {
			continue
		}

		node := &domain.FileSystemNode{
			Name:        file.Name,
			Path:        absolutePath(file.Path),
			IsDirectory: file.IsDir,
		}
		if file.IsDir {
			node.Children = FromSandboxListing(file.Children, skip)
		}

		tree = append(tree, node)
	}
	return tree
}

func absolutePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}
