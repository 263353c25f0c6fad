package specfile

import (
	"fmt"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/loader"
	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/rpmflag"
)

const (
	modeTypeMask = 0170000
	modeDir      = 0040000
	modeSymlink  = 0120000
)

// renderFiles emits the %files manifest of one package, one line per entry
// in original order, driving the materializer side effects along the way.
func (s *Serializer) renderFiles(pkg *models.Package, isMain bool) error {
	if isMain {
		s.Writer.Line("%files")
	} else {
		s.Writer.Printf("%%files -n %s\n", Escape(pkg.Name))
	}
	for _, entry := range pkg.Files {
		if err := s.renderFile(entry); err != nil {
			return err
		}
	}
	s.Writer.Line("")
	return nil
}

func (s *Serializer) renderFile(entry models.FileEntry) error {
	mat := s.Materializer
	isDir := entry.Mode&modeTypeMask == modeDir
	isLink := entry.Mode&modeTypeMask == modeSymlink
	ghost := entry.Flags&rpmflag.FileGhost != 0

	// Placeholders must exist before any timestamp fixing below.
	if ghost {
		if err := mat.EnsureGhost(entry); err != nil {
			return err
		}
	}

	var parts []string
	if isDir {
		parts = append(parts, "%dir")
		if err := mat.FixDirMtime(entry); err != nil {
			return err
		}
	}
	if entry.Flags&rpmflag.FileConfig != 0 {
		var quals []string
		if entry.Flags&rpmflag.FileMissingOK != 0 {
			quals = append(quals, "missingok")
		}
		if entry.Flags&rpmflag.FileNoReplace != 0 {
			quals = append(quals, "noreplace")
		}
		if len(quals) > 0 {
			parts = append(parts, fmt.Sprintf("%%config(%s)", strings.Join(quals, ",")))
		} else {
			parts = append(parts, "%config")
		}
	}
	for _, marker := range []struct {
		flag uint32
		name string
	}{
		{rpmflag.FileDoc, "%doc"},
		{rpmflag.FileLicense, "%license"},
		{rpmflag.FileReadme, "%readme"},
		{rpmflag.FilePubkey, "%pubkey"},
		{rpmflag.FileArtifact, "%artifact"},
	} {
		if entry.Flags&marker.flag != 0 {
			parts = append(parts, marker.name)
		}
	}
	if ghost {
		parts = append(parts, "%ghost")
	}

	if isLink {
		if err := mat.FixSymlinkMtime(entry); err != nil {
			return err
		}
	} else {
		parts = append(parts, fmt.Sprintf("%%attr(%04o,%s,%s)",
			entry.Mode&07777, entry.Owner, entry.FileGroup))
	}

	if excluded := rpmflag.VerifyExclusions(entry.VerifyFlags); len(excluded) > 0 {
		parts = append(parts, fmt.Sprintf("%%verify(not %s)", strings.Join(excluded, " ")))
	}
	if entry.Lang != "" {
		parts = append(parts, fmt.Sprintf("%%lang(%s)", entry.Lang))
	}
	if entry.Caps != "" {
		parts = append(parts, fmt.Sprintf("%%caps(%s)", entry.Caps))
	}

	name := entry.Path
	if mat.Codec != nil && loader.IsKernelModule(entry.Path, entry.Mode) {
		ext, err := mat.QueueModule(entry)
		if err != nil {
			return err
		}
		name += ext
	}

	s.Writer.Line(strings.Join(append(parts, EscapeFilename(name)), " "))
	if mat.HasSig(entry.Path) {
		s.Writer.Line(strings.Join(append(parts, EscapeFilename(entry.Path+".sig")), " "))
	}
	return nil
}
