package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFilename = "carve.yaml"

// Scope locates the repository a command works on.
type Scope struct {
	Path   string // worktree root, empty for bare repositories
	GitDir string
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.GitDir, ConfigFilename)
}

type ScopeResolver struct {
	workDir string
}

func NewScopeResolver() *ScopeResolver {
	wd, _ := os.Getwd()
	return &ScopeResolver{workDir: wd}
}

// NewScopeResolverAt resolves relative to dir instead of the process
// working directory.
func NewScopeResolverAt(dir string) *ScopeResolver {
	return &ScopeResolver{workDir: dir}
}

// Resolve finds the repository containing explicit, or the working
// directory when explicit is empty.
func (r *ScopeResolver) Resolve(explicit string) (Scope, error) {
	dir := explicit
	if dir == "" {
		dir = r.workDir
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Scope{}, fmt.Errorf("resolve path: %w", err)
	}

	if isBareRepository(abs) {
		return Scope{GitDir: abs}, nil
	}

	gitDir, err := FindGitDir(abs)
	if err != nil {
		return Scope{}, err
	}
	return Scope{Path: filepath.Dir(gitDir), GitDir: gitDir}, nil
}

// FindGitDir walks up from dir looking for a .git directory.
func FindGitDir(dir string) (string, error) {
	for {
		gitDir := filepath.Join(dir, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (no .git found)")
		}
		dir = parent
	}
}

func isBareRepository(dir string) bool {
	for _, name := range []string{"HEAD", "objects", "refs"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}
