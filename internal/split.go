package internal

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrStructuralConflict   = errors.New("path is both a selected file and a directory with selected entries")
	ErrUnsupportedSubmodule = errors.New("selected path crosses a submodule")
)

// SplitError reports which path made a split impossible. It unwraps to
// ErrStructuralConflict or ErrUnsupportedSubmodule.
type SplitError struct {
	Kind error
	Path FilePath
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Kind)
}

func (e *SplitError) Unwrap() error {
	return e.Kind
}

// MessageKey identifies the failure for callers that localize messages.
func (e *SplitError) MessageKey() string {
	switch {
	case errors.Is(e.Kind, ErrUnsupportedSubmodule):
		return "split.error.submodule"
	default:
		return "split.error.structural.conflict"
	}
}

// SplitTreeByPaths returns tree with the content under paths reverted to
// what parentTree has there. Entries not on any of the paths are kept as
// tree has them. Only CreateTree is called on repo; nothing is persisted.
func SplitTreeByPaths(ctx context.Context, repo ObjectRepository, parentTree, tree *Tree, paths []FilePath) (*Tree, error) {
	return splitTree(ctx, repo, parentTree, tree, paths, FilePath{})
}

func splitTree(ctx context.Context, repo ObjectRepository, parentTree, tree *Tree, paths []FilePath, prefix FilePath) (*Tree, error) {
	if len(paths) == 0 {
		if tree == nil {
			return repo.CreateTree(ctx, nil)
		}
		return tree, nil
	}

	byName := make(map[string][]FilePath)
	for _, p := range paths {
		byName[p.FirstComponent()] = append(byName[p.FirstComponent()], p)
	}

	names := make(map[string]struct{})
	if parentTree != nil {
		for name := range parentTree.Entries {
			names[name] = struct{}{}
		}
	}
	if tree != nil {
		for name := range tree.Entries {
			names[name] = struct{}{}
		}
	}

	result := make(map[string]Entry, len(names))
	for name := range names {
		current, hasCurrent := tree.Entry(name)

		matching, ok := byName[name]
		if !ok {
			if hasCurrent {
				result[name] = current
			}
			continue
		}

		entry, keep, err := splitEntry(ctx, repo, name, parentTree, tree, matching, prefix.Child(name))
		if err != nil {
			return nil, err
		}
		if keep {
			result[name] = entry
		}
	}

	return repo.CreateTree(ctx, result)
}

// splitEntry reconciles one name that at least one selected path runs
// through. keep is false when the name must be absent from the result.
func splitEntry(ctx context.Context, repo ObjectRepository, name string, parentTree, tree *Tree, matching []FilePath, at FilePath) (Entry, bool, error) {
	parent, hasParent := parentTree.Entry(name)
	current, hasCurrent := tree.Entry(name)

	if (hasParent && parent.Mode == FileModeGitlink) || (hasCurrent && current.Mode == FileModeGitlink) {
		return Entry{}, false, &SplitError{Kind: ErrUnsupportedSubmodule, Path: at}
	}

	nextTree, err := subtree(ctx, repo, current, hasCurrent)
	if err != nil {
		return Entry{}, false, err
	}
	nextParentTree, err := subtree(ctx, repo, parent, hasParent)
	if err != nil {
		return Entry{}, false, err
	}

	directMatch := false
	nextPaths := make([]FilePath, 0, len(matching))
	for _, p := range matching {
		if p.ComponentCount() == 1 {
			directMatch = true
			continue
		}
		nextPaths = append(nextPaths, p.Advance())
	}

	newSubtree, err := splitTree(ctx, repo, nextParentTree, nextTree, nextPaths, at)
	if err != nil {
		return Entry{}, false, err
	}

	if directMatch {
		if hasParent && parent.Mode == FileModeFile {
			if !newSubtree.IsEmpty() {
				return Entry{}, false, &SplitError{Kind: ErrStructuralConflict, Path: at}
			}
			return parent, true, nil
		}
		if newSubtree.IsEmpty() {
			return Entry{}, false, nil
		}
		return DirEntry(newSubtree.Oid), true, nil
	}

	if hasCurrent && current.Mode == FileModeFile && !newSubtree.IsEmpty() {
		return Entry{}, false, &SplitError{Kind: ErrStructuralConflict, Path: at}
	}
	if newSubtree.IsEmpty() {
		return Entry{}, false, nil
	}
	return DirEntry(newSubtree.Oid), true, nil
}

// subtree loads the tree behind a DIR entry. Anything else reads as empty.
func subtree(ctx context.Context, repo ObjectRepository, e Entry, ok bool) (*Tree, error) {
	if !ok || e.Mode != FileModeDir {
		return &Tree{Oid: EmptyTreeOid, Entries: map[string]Entry{}}, nil
	}
	t, err := repo.FindTree(ctx, e.Oid)
	if err != nil {
		return nil, fmt.Errorf("load subtree %s: %w", e.Oid, err)
	}
	return t, nil
}
