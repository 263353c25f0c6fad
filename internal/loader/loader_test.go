package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner serves canned query results keyed by tag (scalars and
// multi-line) or by the joined tag list (rows).
type fakeRunner struct {
	scalars   map[string]string
	rows      map[string][][]string
	multiline map[string][]string
	changelog string
}

func (f *fakeRunner) Scalar(_ context.Context, _, tag string) (string, error) {
	return f.scalars[tag], nil
}

func (f *fakeRunner) Rows(_ context.Context, _ string, tags []string) ([][]string, error) {
	return f.rows[strings.Join(tags, ",")], nil
}

func (f *fakeRunner) Multiline(_ context.Context, _, tag string) ([]string, error) {
	return f.multiline[tag], nil
}

func (f *fakeRunner) Changelog(_ context.Context, _ string) (string, error) {
	return f.changelog, nil
}

const fileTags = "FILENAMES,FILEFLAGS,FILEMODES,FILEUSERNAME,FILEGROUPNAME," +
	"FILESIZES,FILEMTIMES,FILELINKTOS,FILEVERIFYFLAGS,FILELANGS,FILECAPS"

func baseRunner() *fakeRunner {
	return &fakeRunner{
		scalars: map[string]string{
			"NAME":      "foo",
			"ARCH":      "x86_64",
			"SOURCERPM": "foo-1.0-1.src.rpm",
			"VERSION":   "1.0",
			"RELEASE":   "1",
			"SUMMARY":   "A package",
		},
		rows:      map[string][][]string{},
		multiline: map[string][]string{"DESCRIPTION": {"Long text."}},
	}
}

func TestLoadSimpleTags(t *testing.T) {
	l := New(baseRunner())
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	assert.Equal(t, "foo", pkg.Name)
	assert.Equal(t, "x86_64", pkg.Architecture)
	assert.Equal(t, "foo-1.0-1.src.rpm", pkg.SourceRPM)
	assert.Equal(t, "1.0", pkg.Version)
	assert.Equal(t, "1", pkg.Release)
	assert.Equal(t, "Long text.", pkg.Description)
	assert.False(t, pkg.IsKMP)
	assert.Empty(t, pkg.Files)
}

func TestLoadFilesAndKMPDetection(t *testing.T) {
	r := baseRunner()
	r.rows[fileTags] = [][]string{
		{"/usr/bin/tool", "0", "33261", "root", "root", "100", "1700000000", "", "4294967295", "", ""},
		{"/lib/modules/6.4/extra/foo.ko", "0", "33188", "root", "root", "4096", "1700000001", "", "4294967295", "", ""},
		// A directory named like a module must not flag the package.
		{"/lib/modules/6.4/dir.ko", "0", "16877", "root", "root", "0", "1700000002", "", "4294967295", "", ""},
	}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	require.Len(t, pkg.Files, 3)
	assert.True(t, pkg.IsKMP)
	assert.Equal(t, uint32(0100755), pkg.Files[0].Mode)
	assert.Equal(t, int64(4096), pkg.Files[1].Size)
	assert.Equal(t, "root", pkg.Files[2].Owner)
}

func TestLoadDependenciesDropsEmptyNames(t *testing.T) {
	r := baseRunner()
	r.rows["REQUIRENAME,REQUIREFLAGS,REQUIREVERSION"] = [][]string{
		{"bash", "0", ""},
		{"", "0", ""}, // sentinel row
		{"libc.so.6", "8", "2.38"},
	}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	deps := pkg.Dependencies["Requires"]
	require.Len(t, deps, 2)
	assert.Equal(t, "bash", deps[0].Name)
	assert.Equal(t, "libc.so.6", deps[1].Name)
	assert.Equal(t, uint32(8), deps[1].Flags)
}

func TestLoadScriptsProbesInterpreter(t *testing.T) {
	r := baseRunner()
	r.scalars["POSTINPROG"] = "/bin/sh"
	r.multiline["POSTIN"] = []string{"ldconfig"}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	require.Contains(t, pkg.Scripts, "post")
	assert.Equal(t, "/bin/sh", pkg.Scripts["post"].Interpreter)
	assert.Equal(t, "ldconfig", pkg.Scripts["post"].Body)

	// No interpreter means no scriptlet, even if a body tag existed.
	assert.NotContains(t, pkg.Scripts, "pre")
}

func TestLoadTriggers(t *testing.T) {
	r := baseRunner()
	r.rows["TRIGGERTYPE,TRIGGERSCRIPTPROG,TRIGGERCONDS"] = [][]string{
		{"in", "/bin/sh", "bash > 1.0"},
		{"postun", "/bin/sh", "zsh"},
	}
	r.multiline["TRIGGERSCRIPTS"] = []string{"echo in", "echo postun"}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	require.Len(t, pkg.Triggers, 2)
	assert.Equal(t, "in", pkg.Triggers[0].Type)
	assert.Equal(t, "bash > 1.0", pkg.Triggers[0].Condition)
	assert.Equal(t, "echo postun", pkg.Triggers[1].Body)
}

func TestLoadTriggersCountMismatchIsFatal(t *testing.T) {
	r := baseRunner()
	r.rows["TRIGGERTYPE,TRIGGERSCRIPTPROG,TRIGGERCONDS"] = [][]string{
		{"in", "/bin/sh", "bash"},
		{"un", "/bin/sh", "zsh"},
	}
	r.multiline["TRIGGERSCRIPTS"] = []string{"echo in"}
	l := New(r)
	_, err := l.Load(context.Background(), "foo.rpm")
	require.Error(t, err)

	var genErr *models.GenError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, models.ErrInput, genErr.Type)
	assert.Contains(t, err.Error(), "2 rows")
	assert.Contains(t, err.Error(), "1 script bodies")
}

func TestFileTriggerGroupingIsStable(t *testing.T) {
	r := baseRunner()
	r.rows["FILETRIGGERSCRIPTPROG,FILETRIGGERSCRIPTFLAGS,FILETRIGGERPRIORITIES"] = [][]string{
		{"/bin/sh", "0", "1000000"},
		{"/bin/sh", "0", "1000000"},
	}
	r.multiline["FILETRIGGERSCRIPTS"] = []string{"echo zero", "echo one"}
	r.rows["FILETRIGGERNAME,FILETRIGGERVERSION,FILETRIGGERFLAGS,FILETRIGGERINDEX"] = [][]string{
		{"/usr/lib/A", "", "65536", "1"},
		{"/usr/lib/B", "", "65536", "0"},
		{"/usr/lib/C", "", "65536", "1"},
	}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	require.Len(t, pkg.FileTriggers, 2)
	require.Len(t, pkg.FileTriggers[0].Members, 1)
	assert.Equal(t, "/usr/lib/B", pkg.FileTriggers[0].Members[0].Name)

	require.Len(t, pkg.FileTriggers[1].Members, 2)
	assert.Equal(t, "/usr/lib/A", pkg.FileTriggers[1].Members[0].Name)
	assert.Equal(t, "/usr/lib/C", pkg.FileTriggers[1].Members[1].Name)
}

func TestFileTriggerGroupWithoutConditions(t *testing.T) {
	r := baseRunner()
	r.rows["TRANSFILETRIGGERSCRIPTPROG,TRANSFILETRIGGERSCRIPTFLAGS,TRANSFILETRIGGERPRIORITIES"] = [][]string{
		{"/bin/sh", "0", ""},
	}
	r.multiline["TRANSFILETRIGGERSCRIPTS"] = []string{"echo orphan"}
	l := New(r)
	pkg, err := l.Load(context.Background(), "foo.rpm")
	require.NoError(t, err)

	require.Len(t, pkg.TransFileTriggers, 1)
	assert.Empty(t, pkg.TransFileTriggers[0].Members)
	assert.Equal(t, "echo orphan", pkg.TransFileTriggers[0].Body)
}

func TestFileTriggerCountMismatchIsFatal(t *testing.T) {
	r := baseRunner()
	r.rows["FILETRIGGERSCRIPTPROG,FILETRIGGERSCRIPTFLAGS,FILETRIGGERPRIORITIES"] = [][]string{
		{"/bin/sh", "0", ""},
	}
	r.multiline["FILETRIGGERSCRIPTS"] = nil
	l := New(r)
	_, err := l.Load(context.Background(), "foo.rpm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 rows")
}

func TestIsKernelModule(t *testing.T) {
	assert.True(t, IsKernelModule("/lib/modules/6.4/extra/a.ko", 0100644))
	assert.False(t, IsKernelModule("/lib/modules/6.4/extra/a.ko", 0040755))
	assert.False(t, IsKernelModule("/usr/bin/tool", 0100755))
	assert.False(t, IsKernelModule("/lib/modules/a.ko.xz", 0100644))
}
