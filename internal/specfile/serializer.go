package specfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/materialize"
	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/pkgset"
	"github.com/Spencerx/pesign-obs-integration/internal/rpmflag"
	"github.com/sirupsen/logrus"
)

// payloadCodecs maps the recorded payload compressor onto the rpm payload
// codec suffix of the %_binary_payload macro.
var payloadCodecs = map[string]string{
	"":      "gzdio",
	"gzip":  "gzdio",
	"bzip2": "bzdio",
	"lzma":  "lzdio",
	"xz":    "xzdio",
	"zstd":  "zstdio",
}

// Serializer renders a package set as a specfile through a Writer, invoking
// the materializer for the per-file side effects of the manifest.
type Serializer struct {
	Writer       *Writer
	Set          *models.PackageSet
	Materializer *materialize.Materializer

	// BuildRoot is the payload directory the rebuilt packages are packed
	// from.
	BuildRoot string

	// CertSubpackage enables the certificate subpackage requirement on
	// kernel module packages.
	CertSubpackage bool

	// CertBody is the rendered certificate subpackage block, emitted after
	// the package sections and before the changelog.
	CertBody string
}

// triggerTypes are the trigger type values the metadata reports; the
// specfile directive is "trigger" plus the type.
var triggerTypes = map[string]bool{
	"prein":  true,
	"in":     true,
	"un":     true,
	"postun": true,
}

// Render emits the whole specfile: the main package first, the remaining
// packages in name order, and the changelog last.
func (s *Serializer) Render() error {
	main := s.Set.Main()
	if err := s.renderPackage(main, true); err != nil {
		return err
	}
	for _, name := range pkgset.SortedNames(s.Set) {
		if name == s.Set.MainName {
			continue
		}
		if err := s.renderPackage(s.Set.Packages[name], false); err != nil {
			return err
		}
	}

	if s.CertBody != "" {
		s.Writer.Printf("%s", s.CertBody)
	}
	if main.Changelog != "" {
		s.Writer.Line("%changelog")
		s.Writer.Line(Escape(strings.TrimRight(main.Changelog, "\n")))
	}
	return s.Writer.Err()
}

func (s *Serializer) renderPackage(pkg *models.Package, isMain bool) error {
	logrus.Debugf("Rendering package %s", pkg.Name)

	if err := s.renderPayloadDirective(pkg); err != nil {
		return err
	}
	if isMain {
		s.Writer.Printf("Name: %s\n", Escape(pkg.Name))
		s.Writer.Printf("BuildRoot: %s\n", s.BuildRoot)
		if pkg.NoSource {
			// A dummy zero-sized source keeps rpmbuild producing the same
			// nosrc.rpm source reference in the rebuilt packages.
			s.Writer.Line("Source0: repackage.spec")
			s.Writer.Line("NoSource: 0")
		}
	} else {
		s.Writer.Printf("%%package -n %s\n", Escape(pkg.Name))
	}

	s.renderSimpleTags(pkg)
	if pkg.Architecture == "noarch" {
		s.Writer.Line("BuildArch: noarch")
	}
	s.renderDependencies(pkg)
	if s.CertSubpackage && pkg.IsKMP {
		s.Writer.Printf("Requires: %s-kmp-ueficert\n", Escape(s.Set.KMPBasename))
	}

	if isMain {
		s.Writer.Line("%description")
	} else {
		s.Writer.Printf("%%description -n %s\n", Escape(pkg.Name))
	}
	s.Writer.Line(Escape(pkg.Description))
	s.Writer.Line("")

	if err := s.renderScripts(pkg, isMain); err != nil {
		return err
	}
	if err := s.renderTriggers(pkg, isMain); err != nil {
		return err
	}
	if err := s.renderFileTriggers(pkg, isMain, pkg.FileTriggers, "filetrigger"); err != nil {
		return err
	}
	if err := s.renderFileTriggers(pkg, isMain, pkg.TransFileTriggers, "transfiletrigger"); err != nil {
		return err
	}
	return s.renderFiles(pkg, isMain)
}

func (s *Serializer) renderPayloadDirective(pkg *models.Package) error {
	dio, ok := payloadCodecs[pkg.PayloadCompressor]
	if !ok {
		return models.Errorf(models.ErrUnknownValue, pkg.Name,
			"unrecognized payload compressor %q", pkg.PayloadCompressor)
	}
	flags := pkg.PayloadFlags
	if flags == "" {
		flags = "9"
	}
	s.Writer.Printf("%%define _binary_payload w%s.%s\n", flags, dio)
	return nil
}

func (s *Serializer) renderSimpleTags(pkg *models.Package) {
	tags := []struct {
		name  string
		value string
	}{
		{"Epoch", pkg.Epoch},
		{"Version", pkg.Version},
		{"Release", pkg.Release},
		{"Summary", pkg.Summary},
		{"License", pkg.License},
		{"Group", pkg.Group},
		{"Url", pkg.URL},
		{"Vendor", pkg.Vendor},
		{"Packager", pkg.Packager},
		{"Distribution", pkg.Distribution},
		{"Vcs", pkg.VCS},
	}
	for _, tag := range tags {
		if tag.value == "" {
			continue
		}
		s.Writer.Printf("%s: %s\n", tag.name, Escape(tag.value))
	}
}

// renderDependencies emits the dependency lines, kinds in lexicographic
// order. Dependencies carrying internal rpm bits are never emitted; the
// scriptlet-association bits become parenthesized qualifiers.
func (s *Serializer) renderDependencies(pkg *models.Package) {
	kinds := make([]string, 0, len(pkg.Dependencies))
	for kind := range pkg.Dependencies {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		for _, dep := range pkg.Dependencies[kind] {
			if rpmflag.IsInternalDep(dep.Flags) {
				continue
			}
			directive := kind
			if quals := rpmflag.ScriptletQualifiers(dep.Flags); len(quals) > 0 {
				directive = fmt.Sprintf("%s(%s)", kind, strings.Join(quals, ","))
			}
			line := fmt.Sprintf("%s: %s", directive, Escape(dep.Name))
			if op := rpmflag.CompareOperator(dep.Flags); op != "" && dep.Version != "" {
				line += fmt.Sprintf(" %s %s", op, Escape(dep.Version))
			}
			s.Writer.Line(line)
		}
	}
}

// renderScripts emits the scriptlet blocks in lexicographic kind order. Each
// body goes to a side-file; scriptlets without a body are skipped entirely.
func (s *Serializer) renderScripts(pkg *models.Package, isMain bool) error {
	kinds := make([]string, 0, len(pkg.Scripts))
	for kind := range pkg.Scripts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		script := pkg.Scripts[kind]
		if script.Body == "" {
			continue
		}
		name, err := s.Writer.SideFile(fmt.Sprintf("%s.%s", pkg.Name, kind), script.Body)
		if err != nil {
			return err
		}
		s.Writer.Printf("%%%s%s -p %s\n", kind, nameOption(pkg, isMain), script.Interpreter)
		s.Writer.Printf("%%include %%{_sourcedir}/%s\n", name)
		s.Writer.Line("")
	}
	return nil
}

// renderTriggers emits the classic trigger blocks in original order.
func (s *Serializer) renderTriggers(pkg *models.Package, isMain bool) error {
	for i, trig := range pkg.Triggers {
		if !triggerTypes[trig.Type] {
			return models.Errorf(models.ErrUnknownValue, pkg.Name,
				"trigger %d: unknown trigger type %q", i, trig.Type)
		}
		name, err := s.Writer.SideFile(fmt.Sprintf("%s.trigger%d", pkg.Name, i), trig.Body)
		if err != nil {
			return err
		}
		s.Writer.Printf("%%trigger%s%s -p %s -- %s\n",
			trig.Type, nameOption(pkg, isMain), trig.Interpreter, Escape(trig.Condition))
		s.Writer.Printf("%%include %%{_sourcedir}/%s\n", name)
		s.Writer.Line("")
	}
	return nil
}

// renderFileTriggers emits the file trigger (or transaction file trigger)
// blocks in original order. The trigger keyword comes from the sense code of
// the group members; a group without condition rows has nothing to fire on
// and is not emitted.
func (s *Serializer) renderFileTriggers(pkg *models.Package, isMain bool, groups []models.FileTriggerGroup, prefix string) error {
	for i, group := range groups {
		if len(group.Members) == 0 {
			logrus.Debugf("Skipping %s %d of %s: no condition rows", prefix, i, pkg.Name)
			continue
		}
		keyword := ""
		for _, m := range group.Members {
			kw, err := rpmflag.TriggerKeyword(m.Sense)
			if err != nil {
				return models.Errorf(models.ErrUnknownValue, pkg.Name, "%s %d: %v", prefix, i, err)
			}
			if keyword == "" {
				keyword = kw
			} else if kw != keyword {
				return models.Errorf(models.ErrUnknownValue, pkg.Name,
					"%s %d: condition senses disagree (%s vs %s)", prefix, i, keyword, kw)
			}
		}
		name, err := s.Writer.SideFile(fmt.Sprintf("%s.%s%d", pkg.Name, prefix, i), group.Body)
		if err != nil {
			return err
		}

		opts := nameOption(pkg, isMain) + " -p " + group.Interpreter
		if group.Priority != "" {
			opts += " -P " + group.Priority
		}
		patterns := make([]string, len(group.Members))
		for j, m := range group.Members {
			patterns[j] = Escape(m.Name)
		}
		directive := strings.Replace(prefix, "trigger", keyword, 1)
		s.Writer.Printf("%%%s%s -- %s\n", directive, opts, strings.Join(patterns, " "))
		s.Writer.Printf("%%include %%{_sourcedir}/%s\n", name)
		s.Writer.Line("")
	}
	return nil
}

// nameOption renders the -n option selecting the subpackage a block belongs
// to; the main package needs none.
func nameOption(pkg *models.Package, isMain bool) string {
	if isMain {
		return ""
	}
	return " -n " + pkg.Name
}
