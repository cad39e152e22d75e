package gitdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/src-d/enry/v2"

	"github.com/covscope/covscope/pkg/diffscope"
)

const gitDirName = ".git"

// CompareDirs diffs two directory trees by relative path and returns
// the per-file new-side changed line spans. Files present only under
// beforeDir are dropped, as are unchanged and binary files. Paths are
// relative to afterDir, in slash form.
func CompareDirs(ctx context.Context, beforeDir, afterDir string, opts Options) ([]FileChange, error) {
	var changes []FileChange

	walkErr := filepath.WalkDir(afterDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if entry.IsDir() {
			if entry.Name() == gitDirName && path != afterDir {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(afterDir, path)
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}

		change, include, cmpErr := compareFile(beforeDir, path, filepath.ToSlash(rel), opts)
		if cmpErr != nil {
			return cmpErr
		}

		if include {
			changes = append(changes, change)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("compare directories: %w", walkErr)
	}

	return changes, nil
}

func compareFile(beforeDir, afterPath, rel string, opts Options) (FileChange, bool, error) {
	if opts.MaxFileSize > 0 {
		info, statErr := os.Stat(afterPath)
		if statErr != nil {
			return FileChange{}, false, fmt.Errorf("stat %s: %w", afterPath, statErr)
		}

		if info.Size() > opts.MaxFileSize {
			return FileChange{}, false, nil
		}
	}

	after, err := os.ReadFile(afterPath)
	if err != nil {
		return FileChange{}, false, fmt.Errorf("read %s: %w", afterPath, err)
	}

	if enry.IsBinary(after) {
		return FileChange{}, false, nil
	}

	before, err := os.ReadFile(filepath.Join(beforeDir, filepath.FromSlash(rel)))

	added := false

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		added = true
		before = nil
	default:
		return FileChange{}, false, fmt.Errorf("read %s: %w", rel, err)
	}

	if !added && bytes.Equal(before, after) {
		return FileChange{}, false, nil
	}

	return FileChange{
		Path:    rel,
		Content: after,
		Spans:   changedSpans(string(before), string(after)),
		Added:   added,
	}, true, nil
}

// changedSpans computes the new-side changed line spans between two
// file contents with a line-mode diff.
func changedSpans(before, after string) []diffscope.LineSpan {
	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCleanupMerge(dmp.DiffCleanupSemanticLossless(diffs))

	var spans []diffscope.LineSpan

	consumed := 0 // new-side lines consumed so far

	for _, edit := range diffs {
		lineCount := utf8.RuneCountInString(edit.Text)

		switch edit.Type {
		case diffmatchpatch.DiffEqual:
			consumed += lineCount
		case diffmatchpatch.DiffInsert:
			spans = append(spans, diffscope.LineSpan{Start: consumed + 1, End: consumed + lineCount})
			consumed += lineCount
		case diffmatchpatch.DiffDelete:
			// Old side only.
		}
	}

	return spans
}
