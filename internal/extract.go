package internal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ExtractChangesOperation moves the selected changes of a commit into a new
// commit of their own, placed right after it. Commits holds the target
// followed by its descendants, oldest first, up to the branch head.
type ExtractChangesOperation struct {
	Repo    ObjectRepository
	Commits []Oid
	Changes []Change
	Message string
	Logger  *logrus.Logger
}

// EditCommits rewrites the target as two commits: the first keeps the
// target's message without the selected changes, the second adds them back
// under Message. Descendants are replayed on top of the second commit.
// Nothing outside the object store is touched.
func (op *ExtractChangesOperation) EditCommits(ctx context.Context) (CommitEditingResult, error) {
	if err := ctx.Err(); err != nil {
		return CommitEditingResult{}, err
	}
	if len(op.Commits) == 0 {
		return CommitEditingResult{}, fmt.Errorf("no target commit")
	}

	log := op.Logger
	if log == nil {
		log = logrus.New()
	}

	target, err := op.Repo.FindCommit(ctx, op.Commits[0])
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("find target: %w", err)
	}
	if len(target.ParentOids) > 1 {
		return CommitEditingResult{}, fmt.Errorf("split %s: %w", target.Oid, ErrMergeCommit)
	}

	paths, err := SelectedPaths(op.Changes)
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("select paths: %w", err)
	}

	log.WithFields(logrus.Fields{
		"target":      target.Oid.String(),
		"paths":       len(paths),
		"descendants": len(op.Commits) - 1,
	}).Debug("extracting changes")

	originalTree, err := op.Repo.FindTree(ctx, target.TreeOid)
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("find tree: %w", err)
	}

	parentTreeOid := EmptyTreeOid
	if len(target.ParentOids) == 1 {
		parent, err := op.Repo.FindCommit(ctx, target.ParentOids[0])
		if err != nil {
			return CommitEditingResult{}, fmt.Errorf("find parent: %w", err)
		}
		parentTreeOid = parent.TreeOid
	}
	parentTree, err := op.Repo.FindTree(ctx, parentTreeOid)
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("find parent tree: %w", err)
	}

	remainingTree, err := SplitTreeByPaths(ctx, op.Repo, parentTree, originalTree, paths)
	if err != nil {
		return CommitEditingResult{}, err
	}
	if err := op.Repo.PersistObject(ctx, remainingTree); err != nil {
		return CommitEditingResult{}, fmt.Errorf("persist tree: %w", err)
	}

	firstCommit, err := op.Repo.CommitWithOverrides(ctx, target, CommitOverrides{
		TreeOid: &remainingTree.Oid,
	})
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("create first commit: %w", err)
	}

	message := op.Message
	secondCommit, err := op.Repo.CommitWithOverrides(ctx, target, CommitOverrides{
		ParentOids: []Oid{firstCommit},
		Message:    &message,
	})
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("create second commit: %w", err)
	}

	newHead, err := op.Repo.ChainCommits(ctx, secondCommit, op.Commits[1:])
	if err != nil {
		return CommitEditingResult{}, fmt.Errorf("relink descendants: %w", err)
	}

	log.WithFields(logrus.Fields{
		"first":  firstCommit.String(),
		"second": secondCommit.String(),
		"head":   newHead.String(),
	}).Info("extracted changes")

	return CommitEditingResult{NewHead: newHead, CommitToFocus: secondCommit}, nil
}
