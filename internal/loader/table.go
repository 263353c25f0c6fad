package loader

import (
	"strconv"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
)

// correlated enforces the row-count invariant between parallel query
// results, reporting both counts on mismatch.
func correlated(pkg, what string, rows, bodies int) error {
	if rows != bodies {
		return models.Errorf(models.ErrInput, pkg,
			"%s are inconsistent: %d rows but %d script bodies", what, rows, bodies)
	}
	return nil
}

// row is a typed view over one correlated query row. Parse failures are
// collected and surfaced once through err, so callers can destructure a row
// without checking every column.
type row struct {
	pkg, what string
	cols      []string
	firstErr  error
}

func newRow(pkg, what string, cols []string) *row {
	return &row{pkg: pkg, what: what, cols: cols}
}

func (r *row) fail(i int, err error) {
	if r.firstErr == nil {
		r.firstErr = models.Errorf(models.ErrInput, r.pkg,
			"%s: bad value %q in column %d: %v", r.what, r.cols[i], i, err)
	}
}

func (r *row) str(i int) string {
	return r.cols[i]
}

func (r *row) uint32(i int) uint32 {
	if r.cols[i] == "" {
		return 0
	}
	v, err := strconv.ParseUint(r.cols[i], 10, 32)
	if err != nil {
		r.fail(i, err)
		return 0
	}
	return uint32(v)
}

func (r *row) int64(i int) int64 {
	if r.cols[i] == "" {
		return 0
	}
	v, err := strconv.ParseInt(r.cols[i], 10, 64)
	if err != nil {
		r.fail(i, err)
		return 0
	}
	return v
}

func (r *row) int(i int) int {
	return int(r.int64(i))
}

// mode parses a file mode column. Modes are stored as 16-bit values and some
// providers print them signed, so negative values wrap through uint16.
func (r *row) mode(i int) uint32 {
	if r.cols[i] == "" {
		return 0
	}
	v, err := strconv.ParseInt(r.cols[i], 10, 64)
	if err != nil {
		r.fail(i, err)
		return 0
	}
	return uint32(uint16(v))
}

func (r *row) err() error {
	return r.firstErr
}
