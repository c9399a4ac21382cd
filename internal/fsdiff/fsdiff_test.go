package fsdiff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureAndCompute(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("two"), 0o644))

	before, err := Capture(root)
	require.NoError(t, err)
	assert.Len(t, before.Files, 2)

	// modify a.txt, delete sub/b.txt, create c.txt
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one-changed"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(root, "sub", "b.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("three"), 0o644))

	after, err := Capture(root)
	require.NoError(t, err)

	diff := Compute(before, after)
	assert.ElementsMatch(t, []string{"c.txt"}, diff.Created)
	assert.ElementsMatch(t, []string{"a.txt"}, diff.Modified)
	assert.ElementsMatch(t, []string{filepath.Join("sub", "b.txt")}, diff.Deleted)
}

func TestCaptureRecordsSymlinkByTarget(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("data"), 0o644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(root, "link.txt")))

	snap, err := Capture(root)
	require.NoError(t, err)

	assert.Equal(t, "real.txt", snap.Symlinks["link.txt"])
	_, isFile := snap.Files["link.txt"]
	assert.False(t, isFile)
}

func TestComputeNoChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one"), 0o644))

	before, err := Capture(root)
	require.NoError(t, err)
	after, err := Capture(root)
	require.NoError(t, err)

	diff := Compute(before, after)
	assert.Empty(t, diff.Created)
	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Deleted)
}
