package internal

import (
	"fmt"
	"io"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "A"
	StatusDeleted  ChangeStatus = "D"
	StatusModified ChangeStatus = "M"
	StatusRenamed  ChangeStatus = "R"
)

// Change is one file-level difference between a commit and its parent.
type Change struct {
	Before *FilePath
	After  *FilePath
}

func NewChange(before, after string) (Change, error) {
	var c Change
	if before != "" {
		p, err := NewFilePath(before)
		if err != nil {
			return Change{}, err
		}
		c.Before = &p
	}
	if after != "" {
		p, err := NewFilePath(after)
		if err != nil {
			return Change{}, err
		}
		c.After = &p
	}
	if c.Before == nil && c.After == nil {
		return Change{}, ErrInvalidChange
	}
	return c, nil
}

// Path is the path the change is selected by: the after revision, or the
// before revision for deletions.
func (c Change) Path() (FilePath, error) {
	switch {
	case c.After != nil:
		return *c.After, nil
	case c.Before != nil:
		return *c.Before, nil
	default:
		return FilePath{}, ErrInvalidChange
	}
}

func (c Change) Status() ChangeStatus {
	switch {
	case c.Before == nil:
		return StatusAdded
	case c.After == nil:
		return StatusDeleted
	case c.Before.String() != c.After.String():
		return StatusRenamed
	default:
		return StatusModified
	}
}

func (c Change) String() string {
	p, err := c.Path()
	if err != nil {
		return "?"
	}
	if c.Status() == StatusRenamed {
		return fmt.Sprintf("%s %s -> %s", c.Status(), c.Before, p)
	}
	return fmt.Sprintf("%s %s", c.Status(), p)
}

// SelectedPaths maps changes to the set of paths the splitter reverts.
func SelectedPaths(changes []Change) ([]FilePath, error) {
	seen := make(map[string]bool, len(changes))
	paths := make([]FilePath, 0, len(changes))
	for _, c := range changes {
		p, err := c.Path()
		if err != nil {
			return nil, err
		}
		if seen[p.String()] {
			continue
		}
		seen[p.String()] = true
		paths = append(paths, p)
	}
	return paths, nil
}

// ChangesFromPatch reads the file headers of a unified diff, as produced by
// git diff or git format-patch, and turns each file into a Change. A rename
// becomes a deletion plus an addition so that both sides get selected; a
// copy is an addition.
func ChangesFromPatch(r io.Reader) ([]Change, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	changes := make([]Change, 0, len(files))
	for _, f := range files {
		var pairs [][2]string
		switch {
		case f.IsNew, f.IsCopy:
			pairs = [][2]string{{"", f.NewName}}
		case f.IsDelete:
			pairs = [][2]string{{f.OldName, ""}}
		case f.IsRename:
			pairs = [][2]string{{f.OldName, ""}, {"", f.NewName}}
		default:
			pairs = [][2]string{{f.OldName, f.NewName}}
		}

		for _, pair := range pairs {
			c, err := NewChange(pair[0], pair[1])
			if err != nil {
				return nil, fmt.Errorf("patch entry %q: %w", patchName(f), err)
			}
			changes = append(changes, c)
		}
	}
	return changes, nil
}

func patchName(f *gitdiff.File) string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}
