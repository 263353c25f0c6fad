// Package specfile renders the structured package model back into specfile
// syntax.
package specfile

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/utils"
	"github.com/sirupsen/logrus"
)

// Writer accumulates the generated specfile and owns the directory the
// scriptlet side-files are written into. Stream errors are sticky: emission
// continues as no-ops and the first error is reported by Err.
type Writer struct {
	out io.Writer
	dir string
	err error
}

// NewWriter creates a Writer emitting to out, placing side-files under dir.
func NewWriter(out io.Writer, dir string) *Writer {
	return &Writer{out: out, dir: dir}
}

// Printf emits one formatted directive to the spec stream.
func (w *Writer) Printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.out, format, args...); err != nil {
		w.err = models.Errorf(models.ErrFileOp, "", "write spec: %v", err)
	}
}

// Line emits one line to the spec stream.
func (w *Writer) Line(s string) {
	w.Printf("%s\n", s)
}

// SideFile writes a scriptlet body under the side-file directory and returns
// the name the spec references it by.
func (w *Writer) SideFile(name, body string) (string, error) {
	path := filepath.Join(w.dir, name)
	logrus.Debugf("Writing side file %s", path)
	if err := utils.WriteFile(path, []byte(body), 0644); err != nil {
		return "", models.Errorf(models.ErrFileOp, "", "write side file: %v", err)
	}
	return name, nil
}

// Err reports the first stream error.
func (w *Writer) Err() error {
	return w.err
}

var (
	percentEscaper  = strings.NewReplacer("%", "%%")
	filenameEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "%", "%%")
)

// Escape doubles every percent sign so free text survives macro expansion.
func Escape(s string) string {
	return percentEscaper.Replace(s)
}

// EscapeFilename quotes a manifest filename, escaping backslashes and quotes
// in addition to percent signs.
func EscapeFilename(path string) string {
	return `"` + filenameEscaper.Replace(path) + `"`
}
