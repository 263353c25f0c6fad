package materialize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCodec(t *testing.T) {
	for _, name := range []string{"", "none"} {
		codec, err := LookupCodec(name)
		require.NoError(t, err)
		assert.Nil(t, codec)
	}

	codec, err := LookupCodec("xz")
	require.NoError(t, err)
	assert.Equal(t, ".xz", codec.Ext)

	_, err = LookupCodec("sevenzip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported compression codec")
}

func TestEnsureGhostSparseFile(t *testing.T) {
	payload := t.TempDir()
	m := New(payload, nil)

	entry := models.FileEntry{
		Path:  "/var/cache/foo.db",
		Mode:  0100644,
		Size:  4096,
		Mtime: 1700000000,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(payload, "var/cache"), 0755))
	require.NoError(t, m.EnsureGhost(entry))

	info, err := os.Stat(filepath.Join(payload, "var/cache/foo.db"))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
	assert.Equal(t, int64(1700000000), info.ModTime().Unix())
}

func TestEnsureGhostDirectoryAndSymlink(t *testing.T) {
	payload := t.TempDir()
	m := New(payload, nil)

	dir := models.FileEntry{Path: "/var/run/foo", Mode: 040755, Mtime: 1700000000}
	require.NoError(t, m.EnsureGhost(dir))
	info, err := os.Stat(filepath.Join(payload, "var/run/foo"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	link := models.FileEntry{Path: "/var/run/foo/link", Mode: 0120777, LinkTo: "../target", Mtime: 1700000000}
	require.NoError(t, m.EnsureGhost(link))
	target, err := os.Readlink(filepath.Join(payload, "var/run/foo/link"))
	require.NoError(t, err)
	assert.Equal(t, "../target", target)
}

func TestEnsureGhostKeepsExistingFile(t *testing.T) {
	payload := t.TempDir()
	m := New(payload, nil)

	path := filepath.Join(payload, "real")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	entry := models.FileEntry{Path: "/real", Mode: 0100644, Size: 4096, Mtime: 1700000000}
	require.NoError(t, m.EnsureGhost(entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestQueueModuleAndCompressQueued(t *testing.T) {
	payload := t.TempDir()
	codec, err := LookupCodec("gzip")
	require.NoError(t, err)
	m := New(payload, codec)

	modPath := filepath.Join(payload, "lib/modules/6.4/extra/foo.ko")
	require.NoError(t, os.MkdirAll(filepath.Dir(modPath), 0755))
	require.NoError(t, os.WriteFile(modPath, []byte("module payload"), 0600))

	entry := models.FileEntry{
		Path:  "/lib/modules/6.4/extra/foo.ko",
		Mode:  0100644,
		Mtime: 1700000000,
	}
	ext, err := m.QueueModule(entry)
	require.NoError(t, err)
	assert.Equal(t, ".gz", ext)

	// The fixed permissions land before compression.
	info, err := os.Stat(modPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	require.NoError(t, m.CompressQueued(context.Background()))

	_, err = os.Stat(modPath + ".gz")
	assert.NoError(t, err)
	_, err = os.Stat(modPath)
	assert.True(t, os.IsNotExist(err))

	// The transient path list is consumed.
	_, err = os.Stat(filepath.Join(payload, pathListName))
	assert.True(t, os.IsNotExist(err))
}

func TestCompressInProcess(t *testing.T) {
	for _, name := range []string{"gzip", "xz", "zstd"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "mod.ko")
			require.NoError(t, os.WriteFile(path, []byte("payload bytes"), 0644))

			codec, err := LookupCodec(name)
			require.NoError(t, err)
			require.NoError(t, codec.compressInProcess(path))

			_, err = os.Stat(path + codec.Ext)
			assert.NoError(t, err)
			_, err = os.Stat(path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}
