package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// PathMatcher selects paths with gitignore-style patterns. Later patterns
// win and "!" negates, as in a .gitignore file.
type PathMatcher struct {
	matcher gitignore.Matcher
	empty   bool
}

func NewPathMatcher(patterns []string) *PathMatcher {
	var parsed []gitignore.Pattern
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(line, nil))
	}

	return &PathMatcher{
		matcher: gitignore.NewMatcher(parsed),
		empty:   len(parsed) == 0,
	}
}

// ReadPatterns returns the lines of a pattern file, one pattern per line.
// Blank lines and comments are kept; NewPathMatcher skips them.
func ReadPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pattern file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	return lines, nil
}

func (m *PathMatcher) IsEmpty() bool {
	return m == nil || m.empty
}

func (m *PathMatcher) Match(p FilePath) bool {
	if m.IsEmpty() || p.IsEmpty() {
		return false
	}
	return m.matcher.Match(p.Segments(), false)
}

// MatchChange matches a change by either of its sides.
func (m *PathMatcher) MatchChange(c Change) bool {
	if c.After != nil && m.Match(*c.After) {
		return true
	}
	return c.Before != nil && m.Match(*c.Before)
}

// SelectChanges picks the changes named by paths or matched by m. A path
// selects the change at that path, or every change below it when it names a
// directory. A path that selects nothing is an error.
func SelectChanges(all []Change, paths []string, m *PathMatcher) ([]Change, error) {
	selected := make([]bool, len(all))

	for _, raw := range paths {
		p, err := NewFilePath(raw)
		if err != nil {
			return nil, err
		}

		found := false
		for i, c := range all {
			if changeUnder(c, p) {
				selected[i] = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", p, ErrNoChangesMatched)
		}
	}

	if !m.IsEmpty() {
		for i, c := range all {
			if m.MatchChange(c) {
				selected[i] = true
			}
		}
	}

	var out []Change
	for i, c := range all {
		if selected[i] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptySelection
	}
	return out, nil
}

func changeUnder(c Change, dir FilePath) bool {
	return (c.After != nil && isUnder(*c.After, dir)) || (c.Before != nil && isUnder(*c.Before, dir))
}

func isUnder(p, dir FilePath) bool {
	if p.ComponentCount() < dir.ComponentCount() {
		return false
	}
	ps, ds := p.Segments(), dir.Segments()
	for i := range ds {
		if ps[i] != ds[i] {
			return false
		}
	}
	return true
}
