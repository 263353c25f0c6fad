// Package pkgset combines loaded packages into one package set, deriving the
// main package identity from the shared source rpm reference.
package pkgset

import (
	"regexp"
	"sort"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/sirupsen/logrus"
)

// sourceRPMPattern matches <name>-<version>-<release>.src.rpm, with the
// nosrc variant marking no-source packages.
var sourceRPMPattern = regexp.MustCompile(`^(.*)-([^-]+)-([^-]+)\.(no)?src\.rpm$`)

// kmpSuffixPattern strips the kernel module package flavor suffix. Flavors
// may themselves contain hyphens (preempt-rt, 64kb), so everything after
// -kmp- goes.
var kmpSuffixPattern = regexp.MustCompile(`-kmp-.*$`)

// SourceRef is the parsed source rpm reference shared by a package set.
type SourceRef struct {
	Name     string
	Version  string
	Release  string
	NoSource bool
}

// ParseSourceRef parses a source rpm reference; a non-matching reference is
// malformed metadata.
func ParseSourceRef(ref string) (SourceRef, error) {
	m := sourceRPMPattern.FindStringSubmatch(ref)
	if m == nil {
		return SourceRef{}, models.Errorf(models.ErrInput, "",
			"malformed source rpm reference %q", ref)
	}
	return SourceRef{Name: m[1], Version: m[2], Release: m[3], NoSource: m[4] == "no"}, nil
}

// Assemble combines the loaded packages into a PackageSet. All packages must
// share one source rpm reference; the main package is synthesized when none
// of the loaded packages carries the derived main name.
func Assemble(pkgs []*models.Package) (*models.PackageSet, error) {
	if len(pkgs) == 0 {
		return nil, models.Errorf(models.ErrInput, "", "no packages given")
	}

	set := &models.PackageSet{Packages: make(map[string]*models.Package)}
	srcRPM := pkgs[0].SourceRPM
	for _, pkg := range pkgs {
		if pkg.SourceRPM != srcRPM {
			return nil, models.Errorf(models.ErrInput, pkg.Name,
				"source rpm %q does not match %q", pkg.SourceRPM, srcRPM)
		}
		if _, dup := set.Packages[pkg.Name]; dup {
			return nil, models.Errorf(models.ErrInput, pkg.Name, "duplicate package name")
		}
		set.Packages[pkg.Name] = pkg
	}

	src, err := ParseSourceRef(srcRPM)
	if err != nil {
		return nil, err
	}
	set.MainName = src.Name

	main, ok := set.Packages[set.MainName]
	if !ok {
		main = synthesizeMain(set, src)
		set.Packages[set.MainName] = main
		logrus.Infof("Synthesized main package %s-%s-%s", main.Name, main.Version, main.Release)
	}
	main.NoSource = src.NoSource

	set.KMPBasename = kmpBasename(set)
	return set, nil
}

// synthesizeMain creates the main package when none of the loaded packages
// matches the derived main name. Descriptive tags are inherited from the
// first existing package by name order; the architecture is the first
// non-noarch architecture seen across the set.
func synthesizeMain(set *models.PackageSet, src SourceRef) *models.Package {
	main := &models.Package{
		Name:         src.Name,
		Version:      src.Version,
		Release:      src.Release,
		Architecture: "noarch",
		Dependencies: make(map[string][]models.Dependency),
		Scripts:      make(map[string]models.Script),
	}

	names := SortedNames(set)
	donor := set.Packages[names[0]]
	main.Epoch = donor.Epoch
	main.License = donor.License
	main.Group = donor.Group
	main.Summary = donor.Summary
	main.Packager = donor.Packager
	main.Vendor = donor.Vendor
	main.URL = donor.URL
	main.VCS = donor.VCS
	main.Distribution = donor.Distribution
	main.Description = donor.Description
	main.Changelog = donor.Changelog
	main.PayloadCompressor = donor.PayloadCompressor
	main.PayloadFlags = donor.PayloadFlags

	for _, name := range names {
		if arch := set.Packages[name].Architecture; arch != "noarch" {
			main.Architecture = arch
			break
		}
	}
	return main
}

// kmpBasename derives the shared basename of the kernel module packages,
// i.e. their names with the -kmp-<flavor> suffix stripped. Disagreement, or
// a set without kernel module packages, falls back to the main name.
func kmpBasename(set *models.PackageSet) string {
	base := ""
	for _, name := range SortedNames(set) {
		if !set.Packages[name].IsKMP {
			continue
		}
		stripped := kmpSuffixPattern.ReplaceAllString(name, "")
		if base == "" {
			base = stripped
		} else if base != stripped {
			logrus.Debugf("Kernel module packages disagree on basename (%s vs %s)", base, stripped)
			return set.MainName
		}
	}
	if base == "" {
		return set.MainName
	}
	return base
}

// SortedNames returns the package names of a set in lexicographic order.
func SortedNames(set *models.PackageSet) []string {
	names := make([]string, 0, len(set.Packages))
	for name := range set.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
