package models

// Config contains the generation run configuration
type Config struct {
	// PayloadDir is the directory holding the unpacked, resigned package
	// trees; must be absolute and must exist.
	PayloadDir string
	// OutputDir receives repackage.spec and the scriptlet side-files.
	OutputDir string

	// CertTemplate is an optional certificate subpackage template file.
	CertTemplate string

	// Compression selects the kernel module compression codec
	// (none, gzip, xz or zstd).
	Compression string

	// MacroFile is an optional macro file preloaded into metadata queries.
	MacroFile string

	// FromHeaders reads package headers directly instead of querying the
	// rpm binary.
	FromHeaders bool

	// Packages are the package references to regenerate the specfile from.
	Packages []string
}
