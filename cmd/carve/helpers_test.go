package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/4thel00z/carve/internal"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type fileChange struct {
	path    string
	content string // empty deletes the file
}

// setupRepo creates a worktree repository with one commit per step on
// branch master and returns its root.
func setupRepo(t *testing.T, steps ...[]fileChange) (string, []plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var hashes []plumbing.Hash
	for i, step := range steps {
		for _, fc := range step {
			full := filepath.Join(dir, fc.path)
			if fc.content == "" {
				if _, err := wt.Remove(fc.path); err != nil {
					t.Fatalf("remove %s: %v", fc.path, err)
				}
				continue
			}
			if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if err := os.WriteFile(full, []byte(fc.content), 0644); err != nil {
				t.Fatalf("write %s: %v", fc.path, err)
			}
			if _, err := wt.Add(fc.path); err != nil {
				t.Fatalf("add %s: %v", fc.path, err)
			}
		}

		sig := &object.Signature{Name: "Ada", Email: "ada@example.com", When: when.Add(time.Duration(i) * time.Minute)}
		h, err := wt.Commit("commit "+string(rune('A'+i)), &git.CommitOptions{Author: sig, Committer: sig})
		if err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
		hashes = append(hashes, h)
	}

	return dir, hashes
}

func newTestApp(t *testing.T, dir string) *app {
	t.Helper()
	return &app{
		useCases: internal.NewUseCases(internal.NewScopeResolverAt(dir), internal.OpenRepository, nil),
	}
}

func runCmd(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test", a)
	root.SetArgs(args)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.Execute()
	return out.String(), err
}

func headOf(t *testing.T, dir string) plumbing.Hash {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ref, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	return ref.Hash()
}
