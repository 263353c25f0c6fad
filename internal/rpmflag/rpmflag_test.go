package rpmflag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptletQualifiers(t *testing.T) {
	assert.Empty(t, ScriptletQualifiers(0))
	assert.Equal(t, []string{"pre"}, ScriptletQualifiers(DepScriptPre))
	assert.Equal(t, []string{"pre", "postun"}, ScriptletQualifiers(DepScriptPre|DepScriptPostun))

	// Ordering is by bit value, not by argument order.
	assert.Equal(t,
		[]string{"posttrans", "pretrans", "interp", "pre", "post", "preun", "postun", "verify"},
		ScriptletQualifiers(DepPosttrans|DepPretrans|DepInterp|DepScriptPre|DepScriptPost|
			DepScriptPreun|DepScriptPostun|DepScriptVerify))

	// Relational bits do not leak into qualifiers.
	assert.Empty(t, ScriptletQualifiers(DepLess|DepGreater|DepEqual))
}

func TestIsInternalDep(t *testing.T) {
	assert.False(t, IsInternalDep(0))
	assert.False(t, IsInternalDep(DepScriptPre|DepEqual))
	assert.True(t, IsInternalDep(DepRpmlib))
	assert.True(t, IsInternalDep(DepConfig))
	assert.True(t, IsInternalDep(DepFindRequires))
	assert.True(t, IsInternalDep(DepFindProvides))
	assert.True(t, IsInternalDep(DepRpmlib|DepEqual|DepGreater))
}

func TestCompareOperator(t *testing.T) {
	assert.Equal(t, "", CompareOperator(0))
	assert.Equal(t, "<", CompareOperator(DepLess))
	assert.Equal(t, ">", CompareOperator(DepGreater))
	assert.Equal(t, "=", CompareOperator(DepEqual))
	assert.Equal(t, "<=", CompareOperator(DepLess|DepEqual))
	assert.Equal(t, ">=", CompareOperator(DepGreater|DepEqual))
}

func TestVerifyExclusions(t *testing.T) {
	all := VerifyFileDigest | VerifySize | VerifyLink | VerifyUser | VerifyGroup |
		VerifyMtime | VerifyMode | VerifyRdev | VerifyCaps

	// All checks enabled: nothing is excluded.
	assert.Empty(t, VerifyExclusions(all))

	// The semantics are inverted: absent bits are the excluded checks.
	assert.Equal(t, []string{"size", "mtime"}, VerifyExclusions(all&^(VerifySize|VerifyMtime)))

	assert.Equal(t,
		[]string{"filedigest", "size", "link", "user", "group", "mtime", "mode", "rdev", "caps"},
		VerifyExclusions(0))

	// Unknown high bits make no difference.
	assert.Empty(t, VerifyExclusions(all|1<<20))
}

func TestTriggerKeyword(t *testing.T) {
	for sense, want := range map[uint32]string{
		SenseTriggerIn:     "triggerin",
		SenseTriggerUn:     "triggerun",
		SenseTriggerPostun: "triggerpostun",
	} {
		got, err := TriggerKeyword(sense)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := TriggerKeyword(0)
	assert.Error(t, err)
	_, err = TriggerKeyword(1 << 25)
	assert.Error(t, err)
}
