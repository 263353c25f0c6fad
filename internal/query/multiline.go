package query

import "strings"

// Delimiter is the line framing every element of a multi-line query stream.
const Delimiter = "---"

// ParseDelimited splits a multi-line query stream into its elements. Every
// element is preceded by a delimiter line; a stream that does not start with
// the delimiter, and the absent-value sentinel, both decode to no elements.
// An element consisting of exactly one blank line decodes to the empty
// string.
func ParseDelimited(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" || out == noneSentinel {
		return nil
	}
	lines := strings.Split(out, "\n")
	if lines[0] != Delimiter {
		return nil
	}

	var elems []string
	var cur []string
	flush := func() {
		body := strings.Join(cur, "\n")
		elems = append(elems, body)
		cur = cur[:0]
	}
	started := false
	for _, line := range lines {
		if line == Delimiter {
			if started {
				flush()
			}
			started = true
			continue
		}
		cur = append(cur, line)
	}
	if started {
		flush()
	}
	return elems
}
