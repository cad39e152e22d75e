// Package payloadgen produces diff payloads from source changes. It
// combines the per-file changed line spans computed by gitdiff with the
// method spans extracted by methodspan, reporting which declared
// methods a change touches. The resulting payload is what scopes
// incremental coverage measurement to changed code.
package payloadgen

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/covscope/covscope/internal/gitdiff"
	"github.com/covscope/covscope/internal/methodspan"
	"github.com/covscope/covscope/pkg/diffscope"
)

// allLanguages disables the language filter and lets every supported
// language through.
const allLanguages = "all"

const (
	kindAdded    = "added"
	kindModified = "modified"
)

// Options control which changed files contribute to the payload.
type Options struct {
	// Languages restricts the payload to files of the named languages
	// (linguist names, case-insensitive). Empty, or containing "all",
	// admits every language methodspan supports.
	Languages []string

	// MaxFileSize skips files whose new side is larger than this many
	// bytes. Zero means no limit.
	MaxFileSize int64
}

// FromRepository builds a payload from the changes between two
// revisions of a git repository.
func FromRepository(ctx context.Context, repoPath, oldRev, newRev string, opts Options) (diffscope.Payload, error) {
	changes, err := gitdiff.ChangedFiles(ctx, repoPath, oldRev, newRev, gitdiff.Options{
		MaxFileSize: opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	return build(ctx, changes, opts)
}

// FromDirs builds a payload from the differences between two directory
// trees.
func FromDirs(ctx context.Context, beforeDir, afterDir string, opts Options) (diffscope.Payload, error) {
	changes, err := gitdiff.CompareDirs(ctx, beforeDir, afterDir, gitdiff.Options{
		MaxFileSize: opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	return build(ctx, changes, opts)
}

func build(ctx context.Context, changes []gitdiff.FileChange, opts Options) (diffscope.Payload, error) {
	filter := languageFilter(opts.Languages)
	payload := make(diffscope.Payload, 0, len(changes))

	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if enry.IsVendor(change.Path) {
			continue
		}

		lang := detectLanguage(change.Path, change.Content)
		if !allowed(filter, lang) || !methodspan.Supported(lang) {
			continue
		}

		methods, err := methodspan.Extract(ctx, lang, change.Content)
		if err != nil {
			if errors.Is(err, methodspan.ErrGrammarNotAvailable) {
				continue
			}

			return nil, fmt.Errorf("extract methods from %s: %w", change.Path, err)
		}

		payload = append(payload, unitChange(change, methods))
	}

	return payload, nil
}

// unitChange intersects the file's changed spans with its method spans.
// Methods the change never touches are omitted; a file whose changes
// fall outside every method yields an entry with no method changes.
func unitChange(change gitdiff.FileChange, methods []methodspan.Method) diffscope.UnitChange {
	entry := diffscope.UnitChange{UnitPath: unitPath(change.Path)}

	for _, method := range methods {
		lines := overlap(change.Spans, method)
		if len(lines) == 0 {
			continue
		}

		entry.MethodChanges = append(entry.MethodChanges, diffscope.Descriptor{
			MethodName: method.Name,
			Kind:       changeKind(change, method),
			Lines:      lines,
		})
	}

	return entry
}

// changeKind classifies a touched method. Every method of an added file
// is new; in a modified file a method is new only when the change spans
// cover its whole declaration.
func changeKind(change gitdiff.FileChange, method methodspan.Method) string {
	if change.Added || spansCover(change.Spans, method.StartLine, method.EndLine) {
		return kindAdded
	}

	return kindModified
}

// overlap clips the changed spans to the method's declaration lines.
func overlap(spans []diffscope.LineSpan, method methodspan.Method) []diffscope.LineSpan {
	var lines []diffscope.LineSpan

	for _, span := range spans {
		start := max(span.Start, method.StartLine)
		end := min(span.End, method.EndLine)

		if start <= end {
			lines = append(lines, diffscope.LineSpan{Start: start, End: end})
		}
	}

	return lines
}

// spansCover reports whether the ascending, non-overlapping spans cover
// every line in [start, end].
func spansCover(spans []diffscope.LineSpan, start, end int) bool {
	line := start

	for _, span := range spans {
		if span.End < line {
			continue
		}

		if span.Start > line {
			return false
		}

		line = span.End + 1
		if line > end {
			return true
		}
	}

	return line > end
}

// unitPath strips the file extension, matching the unit naming of
// coverage records.
func unitPath(filePath string) string {
	trimmed := strings.TrimSuffix(filePath, path.Ext(filePath))
	if trimmed == "" {
		return filePath
	}

	return trimmed
}

func detectLanguage(filePath string, content []byte) string {
	lang := enry.GetLanguage(path.Base(filePath), nil)
	if lang == "" {
		lang = enry.GetLanguage(path.Base(filePath), content)
	}

	return lang
}

func languageFilter(languages []string) map[string]bool {
	filter := map[string]bool{}
	for _, lang := range languages {
		filter[strings.ToLower(strings.TrimSpace(lang))] = true
	}

	if len(filter) == 0 {
		filter[allLanguages] = true
	}

	return filter
}

func allowed(filter map[string]bool, lang string) bool {
	if lang == "" {
		return false
	}

	if filter[allLanguages] {
		return true
	}

	return filter[strings.ToLower(lang)]
}
