package domain

import (
	"encoding/json"
	"time"
)

// FileSystemNode is the canonical hierarchical representation of a directory
// tree used for display and snapshotting.
//
// Invariant: Children is nil iff the node is a file, and non-nil (possibly
// empty) iff the node is a directory.
type FileSystemNode struct {
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	IsDirectory bool              `json:"isDirectory"`
	Children    []*FileSystemNode `json:"children,omitempty"`
}

// MarshalJSON keeps the wire shape aligned with the invariant: directories
// always carry a children array, even an empty one; files never carry the
// field.
func (n *FileSystemNode) MarshalJSON() ([]byte, error) {
	if !n.IsDirectory {
		return json.Marshal(struct {
			Name        string `json:"name"`
			Path        string `json:"path"`
			IsDirectory bool   `json:"isDirectory"`
		}{n.Name, n.Path, n.IsDirectory})
	}

	children := n.Children
	if children == nil {
		children = []*FileSystemNode{}
	}
	return json.Marshal(struct {
		Name        string            `json:"name"`
		Path        string            `json:"path"`
		IsDirectory bool              `json:"isDirectory"`
		Children    []*FileSystemNode `json:"children"`
	}{n.Name, n.Path, n.IsDirectory, children})
}

// SandboxFile is one entry of the execution provider's nested directory
// listing, in the provider's own shape.
type SandboxFile struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	IsDir    bool          `json:"isDir"`
	Children []SandboxFile `json:"children,omitempty"`
}

// WorkspaceFile is a persisted workspace entry. The hierarchy is encoded in
// Path/ParentPath strings; the tree shape is rebuilt on read.
type WorkspaceFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Path        string  `gorm:"size:1024;uniqueIndex;not null" json:"path"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Content     string  `gorm:"type:text" json:"content,omitempty"`
	IsDirectory bool    `gorm:"default:false" json:"is_directory"`
	ParentPath  *string `gorm:"size:1024;index" json:"parent_path"`
	SizeBytes   int64   `gorm:"default:0" json:"size_bytes"`
}
