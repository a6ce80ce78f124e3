package v1

import (
	"io"
	"time"

	"github.com/4thel00z/carve/internal"
)

// Errors callers can match with errors.Is.
var (
	ErrMergeCommit          = internal.ErrMergeCommit
	ErrNotAncestor          = internal.ErrNotAncestor
	ErrEmptySelection       = internal.ErrEmptySelection
	ErrNoChangesMatched     = internal.ErrNoChangesMatched
	ErrRefMoved             = internal.ErrRefMoved
	ErrStructuralConflict   = internal.ErrStructuralConflict
	ErrUnsupportedSubmodule = internal.ErrUnsupportedSubmodule
)

// ExtractRequest selects the changes to move out of a commit. When Patch is
// set, the files it touches are the selection and Paths and Patterns are
// ignored.
type ExtractRequest struct {
	Revision string
	Paths    []string
	Patterns []string
	Patch    io.Reader
	Message  string
	// DryRun writes the new objects and fills Result.Preview without
	// moving the branch.
	DryRun   bool
	NoUpdate bool
}

// Result describes the rewritten history.
type Result struct {
	Remaining string   `json:"remaining"`
	Extracted string   `json:"extracted"`
	NewHead   string   `json:"new_head"`
	Ref       string   `json:"ref"`
	Updated   bool     `json:"updated"`
	Changes   []Change `json:"changes"`
	Preview   []Diff   `json:"preview,omitempty"`
}

// Diff is the content one selected file gains in the extracted commit.
type Diff struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Binary bool   `json:"binary,omitempty"`
	Diff   string `json:"diff,omitempty"`
}

// Change is one file changed by a commit.
type Change struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	From   string `json:"from,omitempty"`
}

// Commit represents a commit on the current branch.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}
