// Package rpmflag maps the bit-flag spaces found in RPM metadata to the
// symbolic names that appear in a specfile. Four independent taxonomies are
// covered: dependency qualifier bits, file attribute bits, verify-exclusion
// bits and trigger sense codes.
package rpmflag

import "fmt"

// Dependency qualifier bits (RPMSENSE_*).
const (
	DepLess    uint32 = 1 << 1
	DepGreater uint32 = 1 << 2
	DepEqual   uint32 = 1 << 3

	DepPosttrans    uint32 = 1 << 5
	DepPretrans     uint32 = 1 << 7
	DepInterp       uint32 = 1 << 8
	DepScriptPre    uint32 = 1 << 9
	DepScriptPost   uint32 = 1 << 10
	DepScriptPreun  uint32 = 1 << 11
	DepScriptPostun uint32 = 1 << 12
	DepScriptVerify uint32 = 1 << 13

	DepFindRequires uint32 = 1 << 14
	DepFindProvides uint32 = 1 << 15
	DepRpmlib       uint32 = 1 << 24
	DepConfig       uint32 = 1 << 28
)

// scriptletBits associates each scriptlet qualifier bit with the keyword
// rendered inside Requires(...) clauses, in ascending bit order.
var scriptletBits = []struct {
	bit  uint32
	name string
}{
	{DepPosttrans, "posttrans"},
	{DepPretrans, "pretrans"},
	{DepInterp, "interp"},
	{DepScriptPre, "pre"},
	{DepScriptPost, "post"},
	{DepScriptPreun, "preun"},
	{DepScriptPostun, "postun"},
	{DepScriptVerify, "verify"},
}

// ScriptletQualifiers decodes the scriptlet-association bits of a dependency
// flag mask into an ordered list of qualifier keywords.
func ScriptletQualifiers(flags uint32) []string {
	var names []string
	for _, b := range scriptletBits {
		if flags&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	return names
}

// IsInternalDep reports whether the dependency is internal to rpm and must
// not be emitted: rpmlib() dependencies, config() auto-dependencies and the
// find-requires/find-provides markers.
func IsInternalDep(flags uint32) bool {
	return flags&(DepRpmlib|DepConfig|DepFindRequires|DepFindProvides) != 0
}

// CompareOperator renders the relational operator encoded in a dependency
// flag mask; empty when the dependency is unversioned.
func CompareOperator(flags uint32) string {
	var op string
	if flags&DepLess != 0 {
		op += "<"
	}
	if flags&DepGreater != 0 {
		op += ">"
	}
	if flags&DepEqual != 0 {
		op += "="
	}
	return op
}

// File attribute bits (RPMFILE_*).
const (
	FileConfig    uint32 = 1 << 0
	FileDoc       uint32 = 1 << 1
	FileMissingOK uint32 = 1 << 3
	FileNoReplace uint32 = 1 << 4
	FileGhost     uint32 = 1 << 6
	FileLicense   uint32 = 1 << 7
	FileReadme    uint32 = 1 << 8
	FilePubkey    uint32 = 1 << 11
	FileArtifact  uint32 = 1 << 12
)

// Verify-exclusion bits (RPMVERIFY_*). The emission semantics are inverted:
// a bit absent from a file's verify mask means the check is skipped and must
// be listed in the %verify(not ...) clause.
const (
	VerifyFileDigest uint32 = 1 << 0
	VerifySize       uint32 = 1 << 1
	VerifyLink       uint32 = 1 << 2
	VerifyUser       uint32 = 1 << 3
	VerifyGroup      uint32 = 1 << 4
	VerifyMtime      uint32 = 1 << 5
	VerifyMode       uint32 = 1 << 6
	VerifyRdev       uint32 = 1 << 7
	VerifyCaps       uint32 = 1 << 8
)

var verifyBits = []struct {
	bit  uint32
	name string
}{
	{VerifyFileDigest, "filedigest"},
	{VerifySize, "size"},
	{VerifyLink, "link"},
	{VerifyUser, "user"},
	{VerifyGroup, "group"},
	{VerifyMtime, "mtime"},
	{VerifyMode, "mode"},
	{VerifyRdev, "rdev"},
	{VerifyCaps, "caps"},
}

// VerifyExclusions decodes a per-file verify mask into the ordered names of
// the checks excluded from verification, i.e. the bits absent from the mask.
// The result is empty iff every known check bit is present.
func VerifyExclusions(mask uint32) []string {
	var names []string
	for _, b := range verifyBits {
		if mask&b.bit == 0 {
			names = append(names, b.name)
		}
	}
	return names
}

// Trigger sense codes (RPMSENSE_TRIGGER*).
const (
	SenseTriggerIn     uint32 = 1 << 16
	SenseTriggerUn     uint32 = 1 << 17
	SenseTriggerPostun uint32 = 1 << 18

	senseMask = SenseTriggerIn | SenseTriggerUn | SenseTriggerPostun
)

// TriggerKeyword maps a trigger sense code to the specfile trigger keyword.
// Codes outside the three supported senses are an error.
func TriggerKeyword(sense uint32) (string, error) {
	switch sense & senseMask {
	case SenseTriggerIn:
		return "triggerin", nil
	case SenseTriggerUn:
		return "triggerun", nil
	case SenseTriggerPostun:
		return "triggerpostun", nil
	}
	return "", fmt.Errorf("unsupported trigger sense 0x%x", sense)
}
