package lint

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/scopelint/internal/engine"
	"github.com/gnolang/scopelint/internal/types"
)

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) RunFiles(ctx context.Context, files []string, onDone func(engine.Result)) ([]engine.Result, error) {
	args := m.Called(files)
	results := args.Get(0).([]engine.Result)
	if onDone != nil {
		for _, r := range results {
			onDone(r)
		}
	}
	return results, args.Error(1)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "test1.go", "test2.cpp", "notes.md", "tree.yaml")
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, ".git"), 0o755))
	createTempFiles(t, filepath.Join(tempDir, ".git"), "hidden.go")

	expected := []engine.Result{
		{Unit: paths[0], Findings: []types.Finding{{Rule: "rule1", Unit: paths[0], Line: 1, Column: 1, Message: "Test finding 1"}}},
		{Unit: paths[1], Findings: []types.Finding{{Rule: "rule2", Unit: paths[1], Line: 1, Column: 1, Message: "Test finding 2"}}},
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("RunFiles", []string{paths[0], paths[1]}).Return(expected, nil)

	var progress bytes.Buffer
	results, err := ProcessFiles(ctx, logger, mockEngine, []string{tempDir}, ProcessOptions{Progress: true, Output: &progress})

	assert.NoError(t, err)
	assert.Equal(t, expected, results)
	mockEngine.AssertExpectations(t)

	findings, failed := Summarize(results)
	assert.Len(t, findings, 2)
	assert.Zero(t, failed)
}

func TestProcessFilesExplicitFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "tree.yaml", "a.go")

	mockEngine := new(mockLintEngine)
	mockEngine.On("RunFiles", paths).Return([]engine.Result{{Unit: paths[0]}, {Unit: paths[1]}}, nil)

	_, err := ProcessFiles(context.Background(), nil, mockEngine, paths, ProcessOptions{})
	assert.NoError(t, err)
	mockEngine.AssertExpectations(t)
}

func TestProcessFilesMissingPath(t *testing.T) {
	t.Parallel()

	mockEngine := new(mockLintEngine)
	_, err := ProcessFiles(context.Background(), nil, mockEngine, []string{filepath.Join(t.TempDir(), "missing")}, ProcessOptions{})
	assert.Error(t, err)
	mockEngine.AssertNotCalled(t, "RunFiles", mock.Anything)
}

func TestHasDesiredExtension(t *testing.T) {
	t.Parallel()
	assert.True(t, hasDesiredExtension("test.go"))
	assert.True(t, hasDesiredExtension("test.gno"))
	assert.True(t, hasDesiredExtension("test.cpp"))
	assert.True(t, hasDesiredExtension("test.h"))
	assert.False(t, hasDesiredExtension("tree.yaml"))
	assert.False(t, hasDesiredExtension("test.txt"))
	assert.False(t, hasDesiredExtension("test"))
}

func createTempFiles(t *testing.T, dir string, fileNames ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(dir, fileName)
		f, err := os.Create(filePath)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		paths = append(paths, filePath)
	}
	return paths
}
