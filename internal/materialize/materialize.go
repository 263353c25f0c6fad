// Package materialize performs the on-disk side effects of the file
// manifest: ghost placeholders, timestamp and permission fixes not preserved
// by archive extraction, and batched kernel module compression.
package materialize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// compressWorkers bounds the parallel external compressor invocations.
const compressWorkers = 4

// pathListName is the transient file the queued module paths are handed to
// the compression step through.
const pathListName = ".kmp-compress-list"

const (
	modeTypeMask = 0170000
	modeDir      = 0040000
	modeSymlink  = 0120000
)

// Materializer applies per-file side effects under the payload directory.
type Materializer struct {
	PayloadDir string
	Codec      *Codec

	queued int
}

// New creates a Materializer rooted at the payload directory. A nil codec
// disables kernel module compression.
func New(payloadDir string, codec *Codec) *Materializer {
	return &Materializer{PayloadDir: payloadDir, Codec: codec}
}

// OnDisk maps a manifest path onto the payload directory.
func (m *Materializer) OnDisk(path string) string {
	return filepath.Join(m.PayloadDir, path)
}

func (m *Materializer) pathList() string {
	return filepath.Join(m.PayloadDir, pathListName)
}

// EnsureGhost creates the placeholder for a ghost entry that has no real
// file on disk: a sparse regular file of the declared size, an empty
// directory, or a symlink to the declared target.
func (m *Materializer) EnsureGhost(entry models.FileEntry) error {
	path := m.OnDisk(entry.Path)
	if _, err := os.Lstat(path); err == nil {
		return nil
	}
	logrus.Debugf("Creating ghost placeholder %s", path)

	perm := os.FileMode(entry.Mode & 07777)
	switch entry.Mode & modeTypeMask {
	case modeDir:
		if err := os.MkdirAll(path, perm); err != nil {
			return models.Errorf(models.ErrFileOp, "", "create ghost directory: %v", err)
		}
	case modeSymlink:
		if err := os.Symlink(entry.LinkTo, path); err != nil {
			return models.Errorf(models.ErrFileOp, "", "create ghost symlink: %v", err)
		}
		return m.FixSymlinkMtime(entry)
	default:
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err != nil {
			return models.Errorf(models.ErrFileOp, "", "create ghost file: %v", err)
		}
		if err := f.Truncate(entry.Size); err != nil {
			f.Close()
			return models.Errorf(models.ErrFileOp, "", "size ghost file: %v", err)
		}
		if err := f.Close(); err != nil {
			return models.Errorf(models.ErrFileOp, "", "close ghost file: %v", err)
		}
	}
	return m.restoreMtime(path, entry.Mtime)
}

// FixDirMtime restores a directory's recorded mtime; archive extraction does
// not preserve directory timestamps.
func (m *Materializer) FixDirMtime(entry models.FileEntry) error {
	return m.restoreMtime(m.OnDisk(entry.Path), entry.Mtime)
}

func (m *Materializer) restoreMtime(path string, mtime int64) error {
	t := time.Unix(mtime, 0)
	if err := os.Chtimes(path, t, t); err != nil {
		return models.Errorf(models.ErrFileOp, "", "restore mtime: %v", err)
	}
	return nil
}

// FixSymlinkMtime restores a symlink's recorded mtime through an external
// touch invocation; symlink timestamps cannot be set with the primitive used
// for regular files.
func (m *Materializer) FixSymlinkMtime(entry models.FileEntry) error {
	stamp := fmt.Sprintf("@%d", entry.Mtime)
	out, err := exec.Command("touch", "-h", "-d", stamp, m.OnDisk(entry.Path)).CombinedOutput()
	if err != nil {
		return models.Errorf(models.ErrFileOp, "",
			"restore symlink mtime of %s: %v: %s", entry.Path, err, out)
	}
	return nil
}

// QueueModule fixes a kernel module's permissions and mtime, queues its
// on-disk path for batch compression and returns the extension the manifest
// must reference it by.
func (m *Materializer) QueueModule(entry models.FileEntry) (string, error) {
	path := m.OnDisk(entry.Path)
	if err := os.Chmod(path, os.FileMode(entry.Mode&07777)); err != nil {
		return "", models.Errorf(models.ErrFileOp, "", "fix module permissions: %v", err)
	}
	if err := m.restoreMtime(path, entry.Mtime); err != nil {
		return "", err
	}

	f, err := os.OpenFile(m.pathList(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return "", models.Errorf(models.ErrFileOp, "", "open compression path list: %v", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, path); err != nil {
		return "", models.Errorf(models.ErrFileOp, "", "append compression path list: %v", err)
	}
	m.queued++
	return m.Codec.Ext, nil
}

// HasSig reports whether a detached signature sibling exists on disk for a
// manifest path.
func (m *Materializer) HasSig(path string) bool {
	_, err := os.Lstat(m.OnDisk(path) + ".sig")
	return err == nil
}

// CompressQueued compresses every queued kernel module with a bounded number
// of parallel compressor invocations, consuming and deleting the transient
// path list. Per-file compression failures are reported but do not abort the
// run.
func (m *Materializer) CompressQueued(ctx context.Context) error {
	if m.Codec == nil || m.queued == 0 {
		return nil
	}
	data, err := os.ReadFile(m.pathList())
	if err != nil {
		return models.Errorf(models.ErrFileOp, "", "read compression path list: %v", err)
	}
	paths := strings.Split(strings.TrimSpace(string(data)), "\n")
	logrus.Infof("Compressing %d kernel modules with %s", len(paths), m.Codec.Name)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(compressWorkers)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := m.Codec.Compress(ctx, path); err != nil {
				logrus.Warnf("Compression failed: %v", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := os.Remove(m.pathList()); err != nil {
		return models.Errorf(models.ErrFileOp, "", "remove compression path list: %v", err)
	}
	m.queued = 0
	return nil
}
