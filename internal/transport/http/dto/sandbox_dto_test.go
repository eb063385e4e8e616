package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragbox/backend/internal/domain"
)

func TestFragmentPayloadToDomain(t *testing.T) {
	var nilPayload *FragmentPayload
	assert.Nil(t, nilPayload.ToDomain())

	payload := &FragmentPayload{
		Template: "code-interpreter-v1",
		Files: []FragmentFilePayload{
			{FilePath: "a.py", FileContent: "a"},
		},
		HasAdditionalDependencies:  true,
		InstallDependenciesCommand: "pip install pandas",
	}

	fragment := payload.ToDomain()
	require.NotNil(t, fragment)
	assert.Equal(t, "code-interpreter-v1", fragment.Template)
	require.Len(t, fragment.Files, 1)
	assert.Equal(t, "a.py", fragment.Files[0].Path)
	assert.True(t, fragment.HasAdditionalDependencies)
}

func TestExecutionResultToResponse(t *testing.T) {
	interp := &domain.ExecutionResult{
		SbxID:    "sbx-1",
		Template: "code-interpreter-v1",
		Interpreter: &domain.InterpreterResult{
			Stdout:      []string{"2"},
			Stderr:      []string{},
			CellResults: []domain.CellResult{{"text/plain": "2"}},
			Files:       []*domain.FileSystemNode{},
		},
	}
	resp := ExecutionResultToResponse(interp)
	ir, ok := resp.(RunSandboxInterpreterResponse)
	require.True(t, ok)
	assert.Equal(t, "sbx-1", ir.SbxID)
	assert.Equal(t, []string{"2"}, ir.Stdout)

	web := &domain.ExecutionResult{
		SbxID:    "sbx-2",
		Template: "nextjs-developer",
		Web: &domain.WebResult{
			URL:   "https://3000-sbx-2.e2b.dev",
			Files: []*domain.FileSystemNode{},
		},
	}
	resp = ExecutionResultToResponse(web)
	wr, ok := resp.(RunSandboxWebResponse)
	require.True(t, ok)
	assert.Equal(t, "https://3000-sbx-2.e2b.dev", wr.URL)
}
