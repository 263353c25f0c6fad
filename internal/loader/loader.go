// Package loader builds the structured package model from metadata tag
// queries, one package at a time.
package loader

import (
	"context"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/query"
	"github.com/sirupsen/logrus"
)

// KernelModuleSuffix marks the files whose presence flags a package as a
// kernel module package.
const KernelModuleSuffix = ".ko"

const modeTypeMask = 0170000
const modeRegular = 0100000

// DependencyKinds maps each specfile dependency directive to its metadata
// tag prefix. The serializer iterates the directives in lexicographic order.
var DependencyKinds = map[string]string{
	"Conflicts":         "CONFLICT",
	"Enhances":          "ENHANCE",
	"Obsoletes":         "OBSOLETE",
	"OrderWithRequires": "ORDER",
	"Provides":          "PROVIDE",
	"Recommends":        "RECOMMEND",
	"Requires":          "REQUIRE",
	"Suggests":          "SUGGEST",
	"Supplements":       "SUPPLEMENT",
}

// ScriptletKinds maps each scriptlet kind to its body and interpreter tags.
var ScriptletKinds = map[string][2]string{
	"post":         {"POSTIN", "POSTINPROG"},
	"posttrans":    {"POSTTRANS", "POSTTRANSPROG"},
	"postun":       {"POSTUN", "POSTUNPROG"},
	"pre":          {"PREIN", "PREINPROG"},
	"pretrans":     {"PRETRANS", "PRETRANSPROG"},
	"preun":        {"PREUN", "PREUNPROG"},
	"verifyscript": {"VERIFYSCRIPT", "VERIFYSCRIPTPROG"},
}

var simpleTags = []struct {
	tag string
	set func(*models.Package, string)
}{
	{"EPOCH", func(p *models.Package, v string) { p.Epoch = v }},
	{"VERSION", func(p *models.Package, v string) { p.Version = v }},
	{"RELEASE", func(p *models.Package, v string) { p.Release = v }},
	{"LICENSE", func(p *models.Package, v string) { p.License = v }},
	{"GROUP", func(p *models.Package, v string) { p.Group = v }},
	{"SUMMARY", func(p *models.Package, v string) { p.Summary = v }},
	{"PACKAGER", func(p *models.Package, v string) { p.Packager = v }},
	{"VENDOR", func(p *models.Package, v string) { p.Vendor = v }},
	{"URL", func(p *models.Package, v string) { p.URL = v }},
	{"VCS", func(p *models.Package, v string) { p.VCS = v }},
	{"DISTRIBUTION", func(p *models.Package, v string) { p.Distribution = v }},
	{"PAYLOADCOMPRESSOR", func(p *models.Package, v string) { p.PayloadCompressor = v }},
	{"PAYLOADFLAGS", func(p *models.Package, v string) { p.PayloadFlags = v }},
}

// Loader builds Package models through a query Runner.
type Loader struct {
	runner query.Runner
}

// New creates a Loader on top of the given metadata provider.
func New(runner query.Runner) *Loader {
	return &Loader{runner: runner}
}

// Load populates one Package from the metadata of the package reference.
func (l *Loader) Load(ctx context.Context, ref string) (*models.Package, error) {
	pkg := &models.Package{
		Dependencies: make(map[string][]models.Dependency),
		Scripts:      make(map[string]models.Script),
	}

	var err error
	if pkg.Name, err = l.runner.Scalar(ctx, ref, "NAME"); err != nil {
		return nil, err
	}
	logrus.Debugf("Loading metadata for %s from %s", pkg.Name, ref)

	if pkg.Architecture, err = l.runner.Scalar(ctx, ref, "ARCH"); err != nil {
		return nil, err
	}
	if pkg.SourceRPM, err = l.runner.Scalar(ctx, ref, "SOURCERPM"); err != nil {
		return nil, err
	}
	for _, st := range simpleTags {
		v, err := l.runner.Scalar(ctx, ref, st.tag)
		if err != nil {
			return nil, err
		}
		st.set(pkg, v)
	}

	if pkg.Description, err = l.multilineScalar(ctx, ref, "DESCRIPTION"); err != nil {
		return nil, err
	}
	if pkg.Changelog, err = l.runner.Changelog(ctx, ref); err != nil {
		return nil, err
	}

	if err := l.loadFiles(ctx, ref, pkg); err != nil {
		return nil, err
	}
	if err := l.loadDependencies(ctx, ref, pkg); err != nil {
		return nil, err
	}
	if err := l.loadScripts(ctx, ref, pkg); err != nil {
		return nil, err
	}
	if err := l.loadTriggers(ctx, ref, pkg); err != nil {
		return nil, err
	}
	if pkg.FileTriggers, err = l.loadFileTriggers(ctx, ref, pkg.Name, "FILETRIGGER"); err != nil {
		return nil, err
	}
	if pkg.TransFileTriggers, err = l.loadFileTriggers(ctx, ref, pkg.Name, "TRANSFILETRIGGER"); err != nil {
		return nil, err
	}
	return pkg, nil
}

// multilineScalar fetches a possibly multi-line scalar tag, which the
// provider frames as a stream with at most one element.
func (l *Loader) multilineScalar(ctx context.Context, ref, tag string) (string, error) {
	elems, err := l.runner.Multiline(ctx, ref, tag)
	if err != nil {
		return "", err
	}
	if len(elems) == 0 {
		return "", nil
	}
	return elems[0], nil
}

func (l *Loader) loadFiles(ctx context.Context, ref string, pkg *models.Package) error {
	rows, err := l.runner.Rows(ctx, ref, []string{
		"FILENAMES", "FILEFLAGS", "FILEMODES", "FILEUSERNAME", "FILEGROUPNAME",
		"FILESIZES", "FILEMTIMES", "FILELINKTOS", "FILEVERIFYFLAGS",
		"FILELANGS", "FILECAPS",
	})
	if err != nil {
		return err
	}
	for _, row := range rows {
		t := newRow(pkg.Name, "file list", row)
		entry := models.FileEntry{
			Path:        t.str(0),
			Flags:       t.uint32(1),
			Mode:        t.mode(2),
			Owner:       t.str(3),
			FileGroup:   t.str(4),
			Size:        t.int64(5),
			Mtime:       t.int64(6),
			LinkTo:      t.str(7),
			VerifyFlags: t.uint32(8),
			Lang:        t.str(9),
			Caps:        t.str(10),
		}
		if err := t.err(); err != nil {
			return err
		}
		if IsKernelModule(entry.Path, entry.Mode) {
			pkg.IsKMP = true
		}
		pkg.Files = append(pkg.Files, entry)
	}
	return nil
}

// IsKernelModule reports whether a file entry is a kernel module: the name
// carries the module suffix and the mode denotes a regular file.
func IsKernelModule(path string, mode uint32) bool {
	return strings.HasSuffix(path, KernelModuleSuffix) && mode&modeTypeMask == modeRegular
}

func (l *Loader) loadDependencies(ctx context.Context, ref string, pkg *models.Package) error {
	for kind, prefix := range DependencyKinds {
		rows, err := l.runner.Rows(ctx, ref, []string{
			prefix + "NAME", prefix + "FLAGS", prefix + "VERSION",
		})
		if err != nil {
			return err
		}
		var deps []models.Dependency
		for _, row := range rows {
			t := newRow(pkg.Name, kind+" dependencies", row)
			dep := models.Dependency{
				Name:    t.str(0),
				Flags:   t.uint32(1),
				Version: t.str(2),
			}
			if err := t.err(); err != nil {
				return err
			}
			// The no-dependency sentinel row carries no name.
			if dep.Name == "" {
				continue
			}
			deps = append(deps, dep)
		}
		if len(deps) > 0 {
			pkg.Dependencies[kind] = deps
		}
	}
	return nil
}

func (l *Loader) loadScripts(ctx context.Context, ref string, pkg *models.Package) error {
	for kind, tags := range ScriptletKinds {
		interp, err := l.runner.Scalar(ctx, ref, tags[1])
		if err != nil {
			return err
		}
		if interp == "" {
			// No scriptlet of this kind.
			continue
		}
		body, err := l.multilineScalar(ctx, ref, tags[0])
		if err != nil {
			return err
		}
		pkg.Scripts[kind] = models.Script{Interpreter: interp, Body: body}
	}
	return nil
}

func (l *Loader) loadTriggers(ctx context.Context, ref string, pkg *models.Package) error {
	rows, err := l.runner.Rows(ctx, ref, []string{
		"TRIGGERTYPE", "TRIGGERSCRIPTPROG", "TRIGGERCONDS",
	})
	if err != nil {
		return err
	}
	bodies, err := l.runner.Multiline(ctx, ref, "TRIGGERSCRIPTS")
	if err != nil {
		return err
	}
	if err := correlated(pkg.Name, "trigger scripts", len(rows), len(bodies)); err != nil {
		return err
	}
	for i, row := range rows {
		t := newRow(pkg.Name, "triggers", row)
		trig := models.Trigger{
			Type:        t.str(0),
			Interpreter: t.str(1),
			Condition:   t.str(2),
			Body:        bodies[i],
		}
		if err := t.err(); err != nil {
			return err
		}
		pkg.Triggers = append(pkg.Triggers, trig)
	}
	return nil
}

// loadFileTriggers builds the file trigger (or transaction file trigger)
// script groups of a package. Grouping runs in two phases: condition rows are
// first bucketed by their index value in first-seen order, then each script
// row i takes the bucket for index i as its ordered member list.
func (l *Loader) loadFileTriggers(ctx context.Context, ref, name, prefix string) ([]models.FileTriggerGroup, error) {
	scripts, err := l.runner.Rows(ctx, ref, []string{
		prefix + "SCRIPTPROG", prefix + "SCRIPTFLAGS", prefix + "PRIORITIES",
	})
	if err != nil {
		return nil, err
	}
	bodies, err := l.runner.Multiline(ctx, ref, prefix+"SCRIPTS")
	if err != nil {
		return nil, err
	}
	if err := correlated(name, strings.ToLower(prefix)+" scripts", len(scripts), len(bodies)); err != nil {
		return nil, err
	}

	conds, err := l.runner.Rows(ctx, ref, []string{
		prefix + "NAME", prefix + "VERSION", prefix + "FLAGS", prefix + "INDEX",
	})
	if err != nil {
		return nil, err
	}
	buckets := make(map[int][]models.FileTriggerMember)
	for _, row := range conds {
		t := newRow(name, strings.ToLower(prefix)+" conditions", row)
		member := models.FileTriggerMember{
			Name:    t.str(0),
			Version: t.str(1),
			Sense:   t.uint32(2),
		}
		idx := t.int(3)
		if err := t.err(); err != nil {
			return nil, err
		}
		buckets[idx] = append(buckets[idx], member)
	}

	var groups []models.FileTriggerGroup
	for i, row := range scripts {
		t := newRow(name, strings.ToLower(prefix)+" scripts", row)
		group := models.FileTriggerGroup{
			Interpreter: t.str(0),
			ScriptFlags: t.str(1),
			Priority:    t.str(2),
			Body:        bodies[i],
			Members:     buckets[i],
		}
		if err := t.err(); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}
