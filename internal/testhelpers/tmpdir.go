package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/vfs/local"
)

var fs = vfs.Instrumented(&local.VFS{})

// TmpDir returns an instrumented vfs.Root over a fresh temporary directory
// together with its canonical path
func TmpDir(tb testing.TB) (vfs.Root, string) {
	tb.Helper()

	var err error
	tmpDir := tb.TempDir()

	// On some systems `/tmp` can be a symlink
	tmpDir, err = filepath.EvalSymlinks(tmpDir)
	require.NoError(tb, err)

	root, err := fs.Root(context.Background(), tmpDir)
	require.NoError(tb, err)

	return root, tmpDir
}

// Tree populates dir. Keys ending in "/" create directories, keys whose value
// starts with "->" create a symlink to the rest of the value, everything else
// is a regular file with the value as content.
func Tree(tb testing.TB, dir string, tree map[string]string) {
	tb.Helper()

	for name, value := range tree {
		path := filepath.Join(dir, name)
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0755))

		switch {
		case strings.HasSuffix(name, "/"):
			require.NoError(tb, os.MkdirAll(path, 0755))
		case strings.HasPrefix(value, "->"):
			require.NoError(tb, os.Symlink(strings.TrimPrefix(value, "->"), path))
		default:
			require.NoError(tb, os.WriteFile(path, []byte(value), 0644))
		}
	}
}
