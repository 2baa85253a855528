package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocumentPath(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "contract.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("This Agreement is made."), 0o644))

	tests := []struct {
		name        string
		path        string
		errContains string
		wantErr     bool
	}{
		{
			name:    "existing document",
			path:    docPath,
			wantErr: false,
		},
		{
			name:        "missing document",
			path:        filepath.Join(dir, "absent.txt"),
			wantErr:     true,
			errContains: "does not exist",
		},
		{
			name:        "directory instead of file",
			path:        dir,
			wantErr:     true,
			errContains: "is a directory",
		},
		{
			name:        "path with directory traversal",
			path:        "../../../etc/passwd",
			wantErr:     true,
			errContains: "directory traversal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDocumentPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
				assert.True(t, filepath.IsAbs(got))
			}
		})
	}
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		errContains string
		wantErr     bool
	}{
		{
			name:    "yaml extension",
			path:    "configs/paralegal.yaml",
			wantErr: false,
		},
		{
			name:    "yml extension",
			path:    "paralegal.yml",
			wantErr: false,
		},
		{
			name:        "wrong extension",
			path:        "paralegal.json",
			wantErr:     true,
			errContains: ".yaml or .yml",
		},
		{
			name:        "traversal pattern",
			path:        "../secrets.yaml",
			wantErr:     true,
			errContains: "directory traversal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateConfigPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
				assert.True(t, filepath.IsAbs(got))
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()

	got, err := ValidateOutputPath(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	_, err = ValidateOutputPath(filepath.Join(dir, "missing", "report.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent directory does not exist")
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()

	created, err := EnsureDir(filepath.Join(dir, "state", "paralegal"))
	require.NoError(t, err)
	info, err := os.Stat(created)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on existing directories.
	again, err := EnsureDir(created)
	require.NoError(t, err)
	assert.Equal(t, created, again)

	filePath := filepath.Join(dir, "occupied")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))
	_, err = EnsureDir(filePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsWithinDirectory(t *testing.T) {
	dir := t.TempDir()

	within, err := IsWithinDirectory(filepath.Join(dir, "a", "b.txt"), dir)
	require.NoError(t, err)
	assert.True(t, within)

	within, err = IsWithinDirectory("/etc/passwd", dir)
	require.NoError(t, err)
	assert.False(t, within)

	within, err = IsWithinDirectory(dir, dir)
	require.NoError(t, err)
	assert.True(t, within)
}
