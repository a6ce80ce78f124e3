package internal

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
)

// CommitOverrides lists the fields CommitWithOverrides replaces. Nil fields
// keep the base commit's value.
type CommitOverrides struct {
	TreeOid    *Oid
	ParentOids []Oid
	Message    *string
}

// ObjectRepository is the content-addressed store the splitter works against.
type ObjectRepository interface {
	FindTree(ctx context.Context, oid Oid) (*Tree, error)
	FindCommit(ctx context.Context, oid Oid) (*Commit, error)
	// CreateTree computes the tree and its oid. The tree is not stored until
	// PersistObject is called on it or on a tree that references it.
	CreateTree(ctx context.Context, entries map[string]Entry) (*Tree, error)
	PersistObject(ctx context.Context, tree *Tree) error
	CommitWithOverrides(ctx context.Context, base *Commit, overrides CommitOverrides) (Oid, error)
	// ChainCommits replays descendants, oldest first, on top of newBase and
	// returns the last rewritten commit.
	ChainCommits(ctx context.Context, newBase Oid, descendants []Oid) (Oid, error)
}

// HistoryRepository is what callers need around a rewrite: revision lookup,
// change listing and moving the branch.
type HistoryRepository interface {
	Resolve(ctx context.Context, rev string) (Oid, error)
	Head(ctx context.Context) (*Ref, error)
	UpdateRef(ctx context.Context, name string, old, new Oid) error
	Log(ctx context.Context, from Oid, limit int) ([]*Commit, error)
	ChangesOf(ctx context.Context, commit *Commit) ([]Change, error)
	FileContents(ctx context.Context, treeOid Oid, path FilePath) (string, bool, error)
}

// Ref is a named pointer to a commit. Name is the full reference name, or
// HEAD when detached.
type Ref struct {
	Name string
	Oid  Oid
}

func (r *Ref) Short() string {
	return plumbing.ReferenceName(r.Name).Short()
}

func (r *Ref) Detached() bool {
	return r.Name == plumbing.HEAD.String()
}
