package internal

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrInvalidChange    = errors.New("change has neither a before nor an after path")
	ErrInvalidPath      = errors.New("invalid path")
	ErrMergeCommit      = errors.New("merge commits are not supported")
	ErrNotAncestor      = errors.New("commit is not an ancestor of the branch head")
	ErrEmptySelection   = errors.New("no changes selected")
	ErrNoChangesMatched = errors.New("path is not changed by the commit")
	ErrRefMoved         = errors.New("reference moved while rewriting history")
)

// Oid identifies an immutable object by its content hash.
type Oid = plumbing.Hash

var ZeroOid = plumbing.ZeroHash

// FileMode is the kind of object a tree entry points at.
type FileMode int

const (
	FileModeFile FileMode = iota
	FileModeDir
	FileModeGitlink
)

func (m FileMode) String() string {
	switch m {
	case FileModeDir:
		return "dir"
	case FileModeGitlink:
		return "gitlink"
	default:
		return "file"
	}
}

// fileModeOf folds the git mode bits into the three kinds the splitter cares
// about. Regular, executable, symlink and deprecated modes are all FILE.
func fileModeOf(bits filemode.FileMode) FileMode {
	switch bits {
	case filemode.Dir:
		return FileModeDir
	case filemode.Submodule:
		return FileModeGitlink
	default:
		return FileModeFile
	}
}

// Entry is a tree's reference to a child object.
type Entry struct {
	Mode FileMode
	Oid  Oid
	// Bits is the exact git mode. Zero means the canonical bits for Mode.
	Bits filemode.FileMode
}

func NewEntry(bits filemode.FileMode, oid Oid) Entry {
	return Entry{Mode: fileModeOf(bits), Oid: oid, Bits: bits}
}

func DirEntry(oid Oid) Entry {
	return Entry{Mode: FileModeDir, Oid: oid, Bits: filemode.Dir}
}

func (e Entry) GitMode() filemode.FileMode {
	if e.Bits != filemode.Empty {
		return e.Bits
	}
	switch e.Mode {
	case FileModeDir:
		return filemode.Dir
	case FileModeGitlink:
		return filemode.Submodule
	default:
		return filemode.Regular
	}
}

// Tree maps entry names to entries. Entry order carries no meaning here; the
// repository decides the canonical order when it hashes the tree.
type Tree struct {
	Oid     Oid
	Entries map[string]Entry
}

func (t *Tree) IsEmpty() bool {
	return t == nil || len(t.Entries) == 0
}

func (t *Tree) Entry(name string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.Entries[name]
	return e, ok
}

type Commit struct {
	Oid        Oid
	TreeOid    Oid
	ParentOids []Oid
	Message    string
	Author     object.Signature
	Committer  object.Signature
	// Encoding is the message encoding header. Empty means UTF-8.
	Encoding object.MessageEncoding
}

// CommitEditingResult is what a history rewrite hands back to its caller.
type CommitEditingResult struct {
	NewHead       Oid
	CommitToFocus Oid
}
