package query

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/Spencerx/pesign-obs-integration/internal/rpmflag"
	"github.com/sassoftware/go-rpmutils"
)

// HeaderRunner answers tag queries by reading the RPM header directly, so a
// run does not spawn one rpm process per query. Computed query-format tags
// (TRIGGERTYPE, TRIGGERCONDS) are reconstructed from the stored trigger
// arrays.
type HeaderRunner struct {
	headers map[string]*rpmutils.RpmHeader
}

// NewHeaderRunner creates a Runner backed by go-rpmutils.
func NewHeaderRunner() *HeaderRunner {
	return &HeaderRunner{headers: make(map[string]*rpmutils.RpmHeader)}
}

func (r *HeaderRunner) header(pkg string) (*rpmutils.RpmHeader, error) {
	if hdr, ok := r.headers[pkg]; ok {
		return hdr, nil
	}
	f, err := os.Open(pkg)
	if err != nil {
		return nil, models.Errorf(models.ErrQuery, pkg, "open package: %w", err)
	}
	defer f.Close()
	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, models.Errorf(models.ErrQuery, pkg, "read rpm header: %w", err)
	}
	r.headers[pkg] = rpm.Header
	return rpm.Header, nil
}

// values fetches a tag as a string slice, converting numeric arrays. A
// missing tag is an empty slice.
func (r *HeaderRunner) values(pkg, tag string) ([]string, error) {
	switch tag {
	case "TRIGGERTYPE", "TRIGGERCONDS":
		return r.triggerExtension(pkg, tag)
	}
	num, ok := tagNumbers[tag]
	if !ok {
		return nil, models.Errorf(models.ErrQuery, pkg, "unknown query tag %s", tag)
	}
	hdr, err := r.header(pkg)
	if err != nil {
		return nil, err
	}
	val, err := hdr.Get(num)
	if err != nil {
		return nil, nil
	}
	return stringify(val), nil
}

// stringify flattens the dynamic value types returned by rpmutils headers.
func stringify(val interface{}) []string {
	switch v := val.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []byte:
		return []string{string(v)}
	case int:
		return []string{fmt.Sprintf("%d", v)}
	case int32:
		return []string{fmt.Sprintf("%d", v)}
	case int64:
		return []string{fmt.Sprintf("%d", v)}
	case uint64:
		return []string{fmt.Sprintf("%d", v)}
	case []int:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out
	case []int32:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out
	case []int64:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out
	case []uint32:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out
	case []uint64:
		out := make([]string, len(v))
		for i, n := range v {
			out[i] = fmt.Sprintf("%d", n)
		}
		return out
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

// triggerExtension reconstructs the per-script TRIGGERTYPE and TRIGGERCONDS
// extension tags, which exist only in the rpm query formatter, from the
// stored per-condition trigger arrays.
func (r *HeaderRunner) triggerExtension(pkg, tag string) ([]string, error) {
	scripts, err := r.values(pkg, "TRIGGERSCRIPTS")
	if err != nil {
		return nil, err
	}
	names, err := r.values(pkg, "TRIGGERNAME")
	if err != nil {
		return nil, err
	}
	versions, err := r.values(pkg, "TRIGGERVERSION")
	if err != nil {
		return nil, err
	}
	flags, err := r.values(pkg, "TRIGGERFLAGS")
	if err != nil {
		return nil, err
	}
	indexes, err := r.values(pkg, "TRIGGERINDEX")
	if err != nil {
		return nil, err
	}
	if len(names) != len(versions) || len(names) != len(flags) || len(names) != len(indexes) {
		return nil, models.Errorf(models.ErrQuery, pkg, "trigger condition arrays disagree in length")
	}

	// The short type values rpm's query formatter reports, most specific
	// sense first.
	senseNames := []struct {
		bit  uint32
		name string
	}{
		{1 << 25, "prein"},
		{1 << 16, "in"},
		{1 << 17, "un"},
		{1 << 18, "postun"},
	}

	out := make([]string, len(scripts))
	for i := range names {
		idx, err := strconv.Atoi(indexes[i])
		if err != nil || idx < 0 || idx >= len(scripts) {
			continue
		}
		f, _ := strconv.ParseUint(flags[i], 10, 32)
		switch tag {
		case "TRIGGERTYPE":
			for _, s := range senseNames {
				if uint32(f)&s.bit != 0 {
					out[idx] = s.name
					break
				}
			}
		case "TRIGGERCONDS":
			cond := names[i]
			if op := rpmflag.CompareOperator(uint32(f)); op != "" && versions[i] != "" {
				cond += " " + op + " " + versions[i]
			}
			if out[idx] != "" {
				out[idx] += ", "
			}
			out[idx] += cond
		}
	}
	return out, nil
}

// Scalar implements Runner.
func (r *HeaderRunner) Scalar(_ context.Context, pkg, tag string) (string, error) {
	vals, err := r.values(pkg, tag)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 || vals[0] == noneSentinel {
		return "", nil
	}
	return vals[0], nil
}

// Rows implements Runner. Columns shorter than the longest requested array
// (rpm omits FILECAPS and trigger priorities on older packages) are padded
// with empty values.
func (r *HeaderRunner) Rows(_ context.Context, pkg string, tags []string) ([][]string, error) {
	cols := make([][]string, len(tags))
	n := 0
	for i, tag := range tags {
		vals, err := r.values(pkg, tag)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
		if len(vals) > n {
			n = len(vals)
		}
	}
	rows := make([][]string, 0, n)
	for j := 0; j < n; j++ {
		row := make([]string, len(tags))
		for i := range tags {
			if j < len(cols[i]) {
				row[i] = cols[i][j]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Multiline implements Runner.
func (r *HeaderRunner) Multiline(_ context.Context, pkg, tag string) ([]string, error) {
	vals, err := r.values(pkg, tag)
	if err != nil {
		return nil, err
	}
	if len(vals) == 1 && (vals[0] == "" || vals[0] == noneSentinel) {
		return nil, nil
	}
	return vals, nil
}

// Changelog implements Runner, reassembling the rpm --changelog layout from
// the stored changelog arrays.
func (r *HeaderRunner) Changelog(ctx context.Context, pkg string) (string, error) {
	names, err := r.values(pkg, "CHANGELOGNAME")
	if err != nil {
		return "", err
	}
	texts, err := r.values(pkg, "CHANGELOGTEXT")
	if err != nil {
		return "", err
	}
	times, err := r.values(pkg, "CHANGELOGTIME")
	if err != nil {
		return "", err
	}
	if len(names) != len(texts) {
		return "", models.Errorf(models.ErrQuery, pkg,
			"changelog has %d names but %d texts", len(names), len(texts))
	}
	var b strings.Builder
	for i := range names {
		b.WriteString("* ")
		if i < len(times) {
			if secs, err := strconv.ParseInt(times[i], 10, 64); err == nil {
				b.WriteString(time.Unix(secs, 0).UTC().Format("Mon Jan 02 2006"))
				b.WriteString(" ")
			}
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", names[i], texts[i])
	}
	return b.String(), nil
}
