// Package gitdiff computes per-file changed line spans between two
// states of a source tree: two revisions of a git repository, or two
// plain directory trees. Only the new side of the change is reported,
// together with the new-side file content, so callers can locate the
// declarations the change touches.
package gitdiff

import (
	"github.com/covscope/covscope/pkg/diffscope"
)

// FileChange holds the new-side changed lines of a single file.
type FileChange struct {
	// Path is the new-side path relative to the repository or
	// directory root, in slash form.
	Path string

	// Content is the new-side file content.
	Content []byte

	// Spans are the changed line spans on the new side, 1-based
	// inclusive, ascending and non-overlapping.
	Spans []diffscope.LineSpan

	// Added reports that the file does not exist on the old side.
	Added bool
}

// Options bound the comparison.
type Options struct {
	// MaxFileSize skips files whose new side is larger than this many
	// bytes. Zero means no limit.
	MaxFileSize int64
}

// spansFromLines coalesces ascending 1-based line numbers into
// inclusive spans.
func spansFromLines(lines []int) []diffscope.LineSpan {
	if len(lines) == 0 {
		return nil
	}

	spans := []diffscope.LineSpan{{Start: lines[0], End: lines[0]}}

	for _, nr := range lines[1:] {
		if nr == spans[len(spans)-1].End+1 {
			spans[len(spans)-1].End = nr

			continue
		}

		spans = append(spans, diffscope.LineSpan{Start: nr, End: nr})
	}

	return spans
}
