package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragbox/backend/internal/domain"
)

func TestFileSystemNodeMarshalJSON(t *testing.T) {
	tests := map[string]struct {
		node *domain.FileSystemNode
		exp  string
	}{
		"File has no children field": {
			node: &domain.FileSystemNode{Name: "main.go", Path: "/src/main.go"},
			exp:  `{"name":"main.go","path":"/src/main.go","isDirectory":false}`,
		},
		"Empty directory keeps an empty children array": {
			node: &domain.FileSystemNode{Name: "empty", Path: "/empty", IsDirectory: true, Children: []*domain.FileSystemNode{}},
			exp:  `{"name":"empty","path":"/empty","isDirectory":true,"children":[]}`,
		},
		"Directory with nil children still emits the array": {
			node: &domain.FileSystemNode{Name: "dir", Path: "/dir", IsDirectory: true},
			exp:  `{"name":"dir","path":"/dir","isDirectory":true,"children":[]}`,
		},
		"Populated directory nests its children": {
			node: &domain.FileSystemNode{
				Name: "src", Path: "/src", IsDirectory: true,
				Children: []*domain.FileSystemNode{
					{Name: "a.go", Path: "/src/a.go"},
				},
			},
			exp: `{"name":"src","path":"/src","isDirectory":true,"children":[{"name":"a.go","path":"/src/a.go","isDirectory":false}]}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(test.node)
			require.NoError(t, err)
			assert.JSONEq(t, test.exp, string(data))
		})
	}
}

func TestFileSystemNodeMarshalRoundTrip(t *testing.T) {
	tree := []*domain.FileSystemNode{
		{Name: "empty", Path: "/empty", IsDirectory: true, Children: []*domain.FileSystemNode{}},
		{Name: "notes.txt", Path: "/notes.txt"},
	}

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	_, hasChildren := decoded[0]["children"]
	assert.True(t, hasChildren, "empty directory must keep its children field on the wire")
	_, hasChildren = decoded[1]["children"]
	assert.False(t, hasChildren, "files must not carry a children field")
}
