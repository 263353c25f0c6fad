package materialize

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// Codec describes one supported kernel module compression encoding: the
// external compressor command with its flag set, and the extension the
// compressed module is referenced by in the file manifest.
type Codec struct {
	Name    string
	Command string
	Args    []string
	Ext     string
}

var codecs = map[string]*Codec{
	"gzip": {Name: "gzip", Command: "gzip", Args: []string{"-n", "-9", "-f"}, Ext: ".gz"},
	"xz":   {Name: "xz", Command: "xz", Args: []string{"--check=crc32", "--lzma2=dict=1MiB", "-f"}, Ext: ".xz"},
	"zstd": {Name: "zstd", Command: "zstd", Args: []string{"-q", "-19", "--rm", "-f"}, Ext: ".zst"},
}

// LookupCodec resolves a compression codec selector; "none" and the empty
// selector disable module compression.
func LookupCodec(name string) (*Codec, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	codec, ok := codecs[name]
	if !ok {
		return nil, models.Errorf(models.ErrUnknownValue, "", "unsupported compression codec %q", name)
	}
	return codec, nil
}

// Compress compresses one file in place, replacing it with the encoded
// sibling. The external compressor is preferred; when it is not installed
// the encoding runs in process.
func (c *Codec) Compress(ctx context.Context, path string) error {
	if _, err := exec.LookPath(c.Command); err == nil {
		args := append(append([]string{}, c.Args...), path)
		out, err := exec.CommandContext(ctx, c.Command, args...).CombinedOutput()
		if err != nil {
			return models.Errorf(models.ErrFileOp, "", "%s %s: %v: %s", c.Command, path, err, out)
		}
		return nil
	}

	logrus.Debugf("%s not installed, compressing %s in process", c.Command, path)
	return c.compressInProcess(path)
}

func (c *Codec) compressInProcess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return models.Errorf(models.ErrFileOp, "", "stat %s: %v", path, err)
	}
	in, err := os.Open(path)
	if err != nil {
		return models.Errorf(models.ErrFileOp, "", "open %s: %v", path, err)
	}
	defer in.Close()

	out, err := os.OpenFile(path+c.Ext, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return models.Errorf(models.ErrFileOp, "", "create %s%s: %v", path, c.Ext, err)
	}

	var enc io.WriteCloser
	switch c.Name {
	case "gzip":
		enc, err = gzip.NewWriterLevel(out, gzip.BestCompression)
	case "xz":
		enc, err = xz.NewWriter(out)
	case "zstd":
		enc, err = zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	if err == nil {
		_, err = io.Copy(enc, in)
	}
	if err == nil {
		err = enc.Close()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path + c.Ext)
		return models.Errorf(models.ErrFileOp, "", "compress %s: %v", path, err)
	}

	if err := os.Chtimes(path+c.Ext, info.ModTime(), info.ModTime()); err != nil {
		return models.Errorf(models.ErrFileOp, "", "restore mtime of %s%s: %v", path, c.Ext, err)
	}
	if err := os.Remove(path); err != nil {
		return models.Errorf(models.ErrFileOp, "", "remove %s: %v", path, err)
	}
	return nil
}
