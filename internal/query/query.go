// Package query answers RPM metadata tag queries for the loader. The default
// implementation shells out to rpm(8); an alternative reads the package
// headers directly via go-rpmutils.
package query

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/sirupsen/logrus"
)

// noneSentinel is what rpm prints for an absent scalar tag.
const noneSentinel = "(none)"

// Runner is the metadata provider contract. A scalar tag yields one value;
// a multi-valued tag set yields one row per repetition with columns in
// request order; a multi-line tag yields delimiter-framed elements.
type Runner interface {
	// Scalar fetches one simple tag, normalizing the absent-value sentinel
	// to the empty string.
	Scalar(ctx context.Context, pkg, tag string) (string, error)

	// Rows fetches a set of parallel array tags zipped by position.
	Rows(ctx context.Context, pkg string, tags []string) ([][]string, error)

	// Multiline fetches a tag whose values may span lines, one element per
	// repetition.
	Multiline(ctx context.Context, pkg, tag string) ([]string, error)

	// Changelog fetches the formatted package changelog.
	Changelog(ctx context.Context, pkg string) (string, error)
}

// RPMRunner queries metadata by invoking the rpm binary per tag set.
type RPMRunner struct {
	// MacroFile is an optional macro file preloaded into every invocation.
	MacroFile string
}

// NewRPMRunner creates a Runner backed by the rpm binary.
func NewRPMRunner(macroFile string) *RPMRunner {
	return &RPMRunner{MacroFile: macroFile}
}

// args assembles one rpm invocation, forwarding the macro file when set.
func (r *RPMRunner) args(query []string, pkg string) []string {
	args := append([]string{"-qp"}, query...)
	if r.MacroFile != "" {
		args = append(args, "--load="+r.MacroFile)
	}
	return append(args, pkg)
}

func (r *RPMRunner) query(ctx context.Context, pkg, format string) (string, error) {
	logrus.Debugf("Querying %s with format %q", pkg, format)

	cmd := exec.CommandContext(ctx, "rpm", r.args([]string{"--qf", format}, pkg)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", models.Errorf(models.ErrQuery, pkg,
			"rpm query failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// Scalar implements Runner.
func (r *RPMRunner) Scalar(ctx context.Context, pkg, tag string) (string, error) {
	out, err := r.query(ctx, pkg, fmt.Sprintf("%%{%s}", tag))
	if err != nil {
		return "", err
	}
	out = strings.TrimSuffix(out, "\n")
	if out == noneSentinel {
		return "", nil
	}
	return out, nil
}

// Rows implements Runner.
func (r *RPMRunner) Rows(ctx context.Context, pkg string, tags []string) ([][]string, error) {
	cols := make([]string, len(tags))
	for i, tag := range tags {
		cols[i] = fmt.Sprintf("%%{%s}", tag)
	}
	out, err := r.query(ctx, pkg, "["+strings.Join(cols, "|")+"\n]")
	if err != nil {
		return nil, err
	}
	if out == "" || out == noneSentinel {
		return nil, nil
	}

	var rows [][]string
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		row := strings.Split(line, "|")
		if len(row) != len(tags) {
			return nil, models.Errorf(models.ErrQuery, pkg,
				"query for %s returned %d columns, want %d", strings.Join(tags, ","), len(row), len(tags))
		}
		for i, col := range row {
			if col == noneSentinel {
				row[i] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Multiline implements Runner.
func (r *RPMRunner) Multiline(ctx context.Context, pkg, tag string) ([]string, error) {
	out, err := r.query(ctx, pkg, fmt.Sprintf("[%s\n%%{%s}\n]", Delimiter, tag))
	if err != nil {
		return nil, err
	}
	return ParseDelimited(out), nil
}

// Changelog implements Runner.
func (r *RPMRunner) Changelog(ctx context.Context, pkg string) (string, error) {
	cmd := exec.CommandContext(ctx, "rpm", r.args([]string{"--changelog"}, pkg)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", models.Errorf(models.ErrQuery, pkg,
			"rpm changelog query failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	text := string(out)
	if strings.TrimSpace(text) == noneSentinel {
		return "", nil
	}
	return text, nil
}
