package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
)

// EmptyTreeOid is the well-known hash of a tree with no entries.
var EmptyTreeOid = plumbing.NewHash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")

type pendingTree struct {
	obj     *plumbing.MemoryObject
	entries map[string]Entry
}

// GitRepository implements ObjectRepository and HistoryRepository on top of
// a go-git object store.
type GitRepository struct {
	repo *git.Repository

	mu      sync.Mutex
	pending map[Oid]*pendingTree
}

func NewGitRepository(scope Scope) (*GitRepository, error) {
	if _, err := os.Stat(scope.GitDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("repository not found: %s", scope.GitDir)
	}

	fs := osfs.New(scope.GitDir)
	st := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())

	// No worktree: nothing here reads or writes checked out files.
	repo, err := git.Open(st, nil)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return newGitRepository(repo), nil
}

// NewMemoryRepository returns an empty repository held entirely in memory.
func NewMemoryRepository() (*GitRepository, error) {
	repo, err := git.Init(memory.NewStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	return newGitRepository(repo), nil
}

func newGitRepository(repo *git.Repository) *GitRepository {
	return &GitRepository{
		repo:    repo,
		pending: make(map[Oid]*pendingTree),
	}
}

// ObjectRepository implementation

func (r *GitRepository) FindTree(ctx context.Context, oid Oid) (*Tree, error) {
	if oid == ZeroOid || oid == EmptyTreeOid {
		return &Tree{Oid: EmptyTreeOid, Entries: map[string]Entry{}}, nil
	}

	r.mu.Lock()
	p, ok := r.pending[oid]
	r.mu.Unlock()
	if ok {
		return &Tree{Oid: oid, Entries: copyEntries(p.entries)}, nil
	}

	t, err := object.GetTree(r.repo.Storer, oid)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("tree %s: %w", oid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tree %s: %w", oid, err)
	}

	entries := make(map[string]Entry, len(t.Entries))
	for _, e := range t.Entries {
		entries[e.Name] = NewEntry(e.Mode, e.Hash)
	}
	return &Tree{Oid: oid, Entries: entries}, nil
}

func (r *GitRepository) FindCommit(ctx context.Context, oid Oid) (*Commit, error) {
	c, err := object.GetCommit(r.repo.Storer, oid)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("commit %s: %w", oid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", oid, err)
	}
	return toCommit(c), nil
}

func (r *GitRepository) CreateTree(ctx context.Context, entries map[string]Entry) (*Tree, error) {
	t := &object.Tree{Entries: canonicalEntries(entries)}

	obj := &plumbing.MemoryObject{}
	if err := t.Encode(obj); err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	oid := obj.Hash()

	entries = copyEntries(entries)
	r.mu.Lock()
	if _, ok := r.pending[oid]; !ok && oid != EmptyTreeOid {
		r.pending[oid] = &pendingTree{obj: obj, entries: entries}
	}
	r.mu.Unlock()

	return &Tree{Oid: oid, Entries: entries}, nil
}

func (r *GitRepository) PersistObject(ctx context.Context, tree *Tree) error {
	if tree.Oid == EmptyTreeOid {
		return r.persistEmptyTree()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(tree.Oid)
}

// persistLocked writes a pending tree after every pending subtree it
// references, so the store never holds a tree with dangling children.
func (r *GitRepository) persistLocked(oid Oid) error {
	p, ok := r.pending[oid]
	if !ok {
		return nil
	}

	for _, e := range p.entries {
		if e.Mode != FileModeDir {
			continue
		}
		if err := r.persistLocked(e.Oid); err != nil {
			return err
		}
	}

	if _, err := r.repo.Storer.SetEncodedObject(p.obj); err != nil {
		return fmt.Errorf("store tree %s: %w", oid, err)
	}
	delete(r.pending, oid)
	return nil
}

func (r *GitRepository) persistEmptyTree() error {
	if r.repo.Storer.HasEncodedObject(EmptyTreeOid) == nil {
		return nil
	}

	obj := r.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if _, err := r.repo.Storer.SetEncodedObject(obj); err != nil {
		return fmt.Errorf("store empty tree: %w", err)
	}
	return nil
}

func (r *GitRepository) CommitWithOverrides(ctx context.Context, base *Commit, overrides CommitOverrides) (Oid, error) {
	c := &object.Commit{
		Author:       base.Author,
		Committer:    base.Committer,
		Message:      base.Message,
		TreeHash:     base.TreeOid,
		ParentHashes: base.ParentOids,
		Encoding:     base.Encoding,
	}
	if overrides.TreeOid != nil {
		c.TreeHash = *overrides.TreeOid
	}
	if overrides.ParentOids != nil {
		c.ParentHashes = overrides.ParentOids
	}
	if overrides.Message != nil {
		c.Message = *overrides.Message
	}

	// Signatures are not carried over: they cover the original content.
	obj := r.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return ZeroOid, fmt.Errorf("encode commit: %w", err)
	}

	oid, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return ZeroOid, fmt.Errorf("store commit: %w", err)
	}
	return oid, nil
}

func (r *GitRepository) ChainCommits(ctx context.Context, newBase Oid, descendants []Oid) (Oid, error) {
	head := newBase
	for _, oid := range descendants {
		c, err := r.FindCommit(ctx, oid)
		if err != nil {
			return ZeroOid, err
		}
		if len(c.ParentOids) > 1 {
			return ZeroOid, fmt.Errorf("rewrite %s: %w", oid, ErrMergeCommit)
		}

		head, err = r.CommitWithOverrides(ctx, c, CommitOverrides{ParentOids: []Oid{head}})
		if err != nil {
			return ZeroOid, fmt.Errorf("rewrite %s: %w", oid, err)
		}
	}
	return head, nil
}

// HistoryRepository implementation

func (r *GitRepository) Resolve(ctx context.Context, rev string) (Oid, error) {
	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return ZeroOid, fmt.Errorf("resolve %q: %w", rev, err)
	}
	return *h, nil
}

func (r *GitRepository) Head(ctx context.Context) (*Ref, error) {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}

	if head.Type() != plumbing.SymbolicReference {
		return &Ref{Name: plumbing.HEAD.String(), Oid: head.Hash()}, nil
	}

	target, err := r.repo.Storer.Reference(head.Target())
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", head.Target(), err)
	}
	return &Ref{Name: head.Target().String(), Oid: target.Hash()}, nil
}

func (r *GitRepository) UpdateRef(ctx context.Context, name string, old, new Oid) error {
	refName := plumbing.ReferenceName(name)

	// Reference also reads packed-refs; the storer's own check only sees
	// loose ref files.
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.repo.Storer.Reference(refName)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("update %s: %w", name, ErrRefMoved)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if cur.Type() != plumbing.HashReference || cur.Hash() != old {
		return fmt.Errorf("update %s: %w", name, ErrRefMoved)
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(refName, new)); err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	return nil
}

func (r *GitRepository) Log(ctx context.Context, from Oid, limit int) ([]*Commit, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

func (r *GitRepository) ChangesOf(ctx context.Context, commit *Commit) ([]Change, error) {
	c, err := object.GetCommit(r.repo.Storer, commit.Oid)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", commit.Oid, err)
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("get parent tree: %w", err)
		}
	}

	diff, err := object.DiffTreeWithOptions(ctx, parentTree, tree, nil)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	changes := make([]Change, 0, len(diff))
	for _, d := range diff {
		change, err := NewChange(d.From.Name, d.To.Name)
		if err != nil {
			return nil, fmt.Errorf("convert change: %w", err)
		}
		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].String() < changes[j].String()
	})
	return changes, nil
}

func (r *GitRepository) FileContents(ctx context.Context, treeOid Oid, path FilePath) (string, bool, error) {
	if treeOid == ZeroOid || treeOid == EmptyTreeOid {
		return "", false, nil
	}

	t, err := object.GetTree(r.repo.Storer, treeOid)
	if err != nil {
		return "", false, fmt.Errorf("get tree %s: %w", treeOid, err)
	}

	f, err := t.File(path.String())
	if errors.Is(err, object.ErrFileNotFound) ||
		errors.Is(err, object.ErrDirectoryNotFound) ||
		errors.Is(err, object.ErrEntryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get file %s: %w", path, err)
	}

	content, err := f.Contents()
	if err != nil {
		return "", false, fmt.Errorf("read file %s: %w", path, err)
	}
	return content, true, nil
}

// helpers

func toCommit(c *object.Commit) *Commit {
	return &Commit{
		Oid:        c.Hash,
		TreeOid:    c.TreeHash,
		ParentOids: append([]Oid(nil), c.ParentHashes...),
		Message:    c.Message,
		Author:     c.Author,
		Committer:  c.Committer,
		Encoding:   c.Encoding,
	}
}

// canonicalEntries orders entries the way git hashes them: by name, with
// directories compared as if their name ended in "/".
func canonicalEntries(entries map[string]Entry) []object.TreeEntry {
	out := make([]object.TreeEntry, 0, len(entries))
	for name, e := range entries {
		out = append(out, object.TreeEntry{Name: name, Mode: e.GitMode(), Hash: e.Oid})
	}

	sort.Slice(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

func sortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

func copyEntries(entries map[string]Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for name, e := range entries {
		out[name] = e
	}
	return out
}
