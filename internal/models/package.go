package models

// Package represents one binary RPM package whose metadata is mirrored into
// the regenerated specfile.
type Package struct {
	// Core metadata
	Name         string
	Architecture string
	SourceRPM    string

	// Simple tags, each may be empty
	Epoch        string
	Version      string
	Release      string
	License      string
	Group        string
	Summary      string
	Packager     string
	Vendor       string
	URL          string
	VCS          string
	Distribution string

	Description string
	Changelog   string

	// Payload compression recorded at build time
	PayloadCompressor string
	PayloadFlags      string

	// IsKMP is true iff the package ships at least one regular file whose
	// name carries the kernel module suffix.
	IsKMP bool

	// NoSource marks a package built from a .nosrc.rpm; set on the main
	// package once the set is assembled.
	NoSource bool

	Files             []FileEntry
	Dependencies      map[string][]Dependency
	Scripts           map[string]Script
	Triggers          []Trigger
	FileTriggers      []FileTriggerGroup
	TransFileTriggers []FileTriggerGroup
}

// FileEntry describes one file shipped by a package.
type FileEntry struct {
	Path        string
	Flags       uint32
	Mode        uint32
	Owner       string
	FileGroup   string
	Size        int64
	Mtime       int64
	LinkTo      string
	VerifyFlags uint32
	Lang        string
	Caps        string
}

// Dependency is one entry of a dependency kind (Requires, Provides, ...).
type Dependency struct {
	Name    string
	Flags   uint32
	Version string
}

// Script is a scriptlet body with its interpreter. A package carries at most
// one script per scriptlet kind, and only when the interpreter tag is set.
type Script struct {
	Interpreter string
	Body        string
}

// Trigger is a classic package trigger: the triggered scriptlet type, its
// interpreter, the trigger condition expression and the script body.
type Trigger struct {
	Type        string
	Interpreter string
	Condition   string
	Body        string
}

// FileTriggerMember is one (name, version, sense) condition row of a file
// trigger script group.
type FileTriggerMember struct {
	Name    string
	Version string
	Sense   uint32
}

// FileTriggerGroup is one file trigger script together with the ordered
// condition rows correlated to it by the trigger index.
type FileTriggerGroup struct {
	Interpreter string
	ScriptFlags string
	Priority    string
	Body        string
	Members     []FileTriggerMember
}

// PackageSet is the assembled collection of packages sharing one source rpm.
type PackageSet struct {
	Packages map[string]*Package

	// MainName is derived from the shared source rpm reference.
	MainName string
	// KMPBasename is the shared name prefix of the kernel module packages,
	// falling back to MainName.
	KMPBasename string
}

// Main returns the main package of the set.
func (s *PackageSet) Main() *Package {
	return s.Packages[s.MainName]
}
