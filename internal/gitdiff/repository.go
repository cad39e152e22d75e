package gitdiff

import (
	"bytes"
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ChangedFiles diffs two revisions of the git repository at repoPath
// and returns the per-file new-side changed line spans. Deleted files
// are dropped. Renames are detected and follow the new path.
func ChangedFiles(ctx context.Context, repoPath, oldRev, newRev string, opts Options) ([]FileChange, error) {
	repo, err := git2go.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	defer repo.Free()

	oldTree, err := revisionTree(repo, oldRev)
	if err != nil {
		return nil, err
	}
	defer oldTree.Free()

	newTree, err := revisionTree(repo, newRev)
	if err != nil {
		return nil, err
	}
	defer newTree.Free()

	diffOpts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree, &diffOpts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	defer func() {
		_ = diff.Free()
	}()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff find options: %w", err)
	}

	findOpts.Flags = git2go.DiffFindRenames

	err = diff.FindSimilar(&findOpts)
	if err != nil {
		return nil, fmt.Errorf("detect renames: %w", err)
	}

	return collectChanges(ctx, repo, diff, opts)
}

// revisionTree resolves a revision spec (hash, branch, tag, HEAD~n) to
// the tree of the commit it names.
func revisionTree(repo *git2go.Repository, rev string) (*git2go.Tree, error) {
	obj, err := repo.RevparseSingle(rev)
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return nil, fmt.Errorf("peel revision %q: %w", rev, err)
	}
	defer peeled.Free()

	commit, err := repo.LookupCommit(peeled.Id())
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", peeled.Id(), err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return tree, nil
}

// collectChanges walks the diff and materializes one FileChange per
// content-bearing delta. New-side blob contents are copied out so the
// results outlive the repository handle.
func collectChanges(ctx context.Context, repo *git2go.Repository, diff *git2go.Diff, opts Options) ([]FileChange, error) {
	var (
		changes []FileChange
		pending *FileChange
		lines   []int
	)

	flush := func() {
		if pending != nil {
			pending.Spans = spansFromLines(lines)
			changes = append(changes, *pending)
			pending = nil
		}

		lines = lines[:0]
	}

	fileCb := func(delta git2go.DiffDelta, _ float64) (git2go.DiffForEachHunkCallback, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		flush()

		if !deltaHasNewSide(delta.Status) {
			return nil, nil
		}

		if delta.Flags&git2go.DiffFlagBinary != 0 {
			return nil, nil
		}

		if opts.MaxFileSize > 0 && int64(delta.NewFile.Size) > opts.MaxFileSize {
			return nil, nil
		}

		content, blobErr := blobContent(repo, delta.NewFile.Oid, delta.NewFile.Path)
		if blobErr != nil {
			return nil, blobErr
		}

		pending = &FileChange{
			Path:    delta.NewFile.Path,
			Content: content,
			Added:   delta.Status == git2go.DeltaAdded || delta.Status == git2go.DeltaCopied,
		}

		return func(_ git2go.DiffHunk) (git2go.DiffForEachLineCallback, error) {
			return func(line git2go.DiffLine) error {
				if line.Origin == git2go.DiffLineAddition {
					lines = append(lines, line.NewLineno)
				}

				return nil
			}, nil
		}, nil
	}

	err := diff.ForEach(fileCb, git2go.DiffDetailLines)
	if err != nil {
		return nil, fmt.Errorf("walk diff: %w", err)
	}

	flush()

	return changes, nil
}

func blobContent(repo *git2go.Repository, oid *git2go.Oid, path string) ([]byte, error) {
	blob, err := repo.LookupBlob(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup blob for %s: %w", path, err)
	}

	content := bytes.Clone(blob.Contents())
	blob.Free()

	return content, nil
}

// deltaHasNewSide reports whether the delta carries content on the new
// side of the diff.
func deltaHasNewSide(status git2go.Delta) bool {
	switch status {
	case git2go.DeltaAdded,
		git2go.DeltaModified,
		git2go.DeltaRenamed,
		git2go.DeltaCopied,
		git2go.DeltaTypeChange:
		return true
	case git2go.DeltaUnmodified,
		git2go.DeltaDeleted,
		git2go.DeltaIgnored,
		git2go.DeltaUntracked,
		git2go.DeltaUnreadable,
		git2go.DeltaConflicted:
		return false
	default:
		return false
	}
}
