package internal

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var testSignature = object.Signature{
	Name:  "Ada",
	Email: "ada@example.com",
	When:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
}

func mustFilePath(s string) FilePath {
	p, err := NewFilePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func writeBlob(repo *GitRepository, content []byte) (Oid, error) {
	obj := repo.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)

	w, err := obj.Writer()
	if err != nil {
		return ZeroOid, err
	}
	if _, err := w.Write(content); err != nil {
		return ZeroOid, err
	}
	if err := w.Close(); err != nil {
		return ZeroOid, err
	}
	return repo.repo.Storer.SetEncodedObject(obj)
}

// setHead points HEAD at branch, creating the branch at oid.
func setHead(repo *GitRepository, branch string, oid Oid) error {
	refName := plumbing.NewBranchReferenceName(branch)
	if err := repo.repo.Storer.SetReference(plumbing.NewHashReference(refName, oid)); err != nil {
		return err
	}
	return repo.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, refName))
}

func newTestRepo(t *testing.T) *GitRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	return repo
}

// setupDiskRepo initializes a non-bare repository in a temp dir.
func setupDiskRepo(t *testing.T) (*GitRepository, Scope) {
	t.Helper()
	dir := t.TempDir()

	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}

	scope := Scope{Path: dir, GitDir: filepath.Join(dir, ".git")}
	repo, err := NewGitRepository(scope)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	return repo, scope
}

// buildTree writes files given as path → content and returns the root tree.
// Content prefixed with "exec:" is stored as an executable file.
func buildTree(t *testing.T, repo *GitRepository, files map[string]string) *Tree {
	t.Helper()
	ctx := context.Background()

	entries := make(map[string]Entry)
	nested := make(map[string]map[string]string)
	for path, content := range files {
		name, rest, isDir := strings.Cut(path, "/")
		if isDir {
			if nested[name] == nil {
				nested[name] = make(map[string]string)
			}
			nested[name][rest] = content
			continue
		}

		bits := filemode.Regular
		if strings.HasPrefix(content, "exec:") {
			bits = filemode.Executable
			content = strings.TrimPrefix(content, "exec:")
		}
		oid, err := writeBlob(repo, []byte(content))
		require.NoError(t, err)
		entries[name] = NewEntry(bits, oid)
	}

	for name, sub := range nested {
		entries[name] = DirEntry(buildTree(t, repo, sub).Oid)
	}

	tree, err := repo.CreateTree(ctx, entries)
	require.NoError(t, err)
	require.NoError(t, repo.PersistObject(ctx, tree))
	return tree
}

// flattenTree reads a tree back as path → content.
func flattenTree(t *testing.T, repo *GitRepository, oid Oid) map[string]string {
	t.Helper()
	out := make(map[string]string)
	flattenInto(t, repo, oid, FilePath{}, out)
	return out
}

func flattenInto(t *testing.T, repo *GitRepository, oid Oid, prefix FilePath, out map[string]string) {
	ctx := context.Background()
	tree, err := repo.FindTree(ctx, oid)
	require.NoError(t, err)

	for name, e := range tree.Entries {
		p := prefix.Child(name)
		switch e.Mode {
		case FileModeDir:
			flattenInto(t, repo, e.Oid, p, out)
		case FileModeGitlink:
			out[p.String()] = "gitlink:" + e.Oid.String()
		default:
			blob, err := object.GetBlob(repo.repo.Storer, e.Oid)
			require.NoError(t, err)
			r, err := blob.Reader()
			require.NoError(t, err)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			r.Close()
			out[p.String()] = string(data)
		}
	}
}

func makeCommit(t *testing.T, repo *GitRepository, tree Oid, message string, parents ...Oid) Oid {
	t.Helper()
	base := &Commit{
		TreeOid:    tree,
		ParentOids: parents,
		Message:    message,
		Author:     testSignature,
		Committer:  testSignature,
	}
	oid, err := repo.CommitWithOverrides(context.Background(), base, CommitOverrides{})
	require.NoError(t, err)
	return oid
}

func paths(ps ...string) []FilePath {
	out := make([]FilePath, 0, len(ps))
	for _, p := range ps {
		out = append(out, mustFilePath(p))
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
