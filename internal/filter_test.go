package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChanges(t *testing.T) []Change {
	t.Helper()
	var out []Change
	for _, pair := range [][2]string{
		{"README.md", "README.md"},
		{"", "docs/guide.md"},
		{"docs/old.md", ""},
		{"src/main.go", "src/main.go"},
		{"src/util.go", "lib/util.go"},
		{"", "src/gen/types_gen.go"},
	} {
		c, err := NewChange(pair[0], pair[1])
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func selectedStrings(changes []Change) []string {
	var out []string
	for _, c := range changes {
		out = append(out, c.String())
	}
	return out
}

func TestPathMatcher(t *testing.T) {
	m := NewPathMatcher([]string{"# generated", "*_gen.go", "", "docs/", "!docs/guide.md"})
	assert.False(t, m.IsEmpty())

	tests := []struct {
		path string
		want bool
	}{
		{"src/gen/types_gen.go", true},
		{"src/main.go", false},
		{"docs/old.md", true},
		{"docs/guide.md", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(mustFilePath(tt.path)), tt.path)
	}
}

func TestPathMatcherEmpty(t *testing.T) {
	assert.True(t, NewPathMatcher(nil).IsEmpty())
	assert.True(t, NewPathMatcher([]string{"", "  ", "# only a comment"}).IsEmpty())

	var m *PathMatcher
	assert.True(t, m.IsEmpty())
	assert.False(t, m.Match(mustFilePath("a")))
}

func TestReadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns")
	writeFile(t, path, "# docs only\n*.md\n!README.md\n")

	lines, err := ReadPatterns(path)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	m := NewPathMatcher(lines)
	assert.True(t, m.Match(mustFilePath("docs/guide.md")))
	assert.False(t, m.Match(mustFilePath("README.md")))

	_, err = ReadPatterns(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestSelectChanges(t *testing.T) {
	all := sampleChanges(t)

	tests := []struct {
		name     string
		paths    []string
		patterns []string
		want     []string
	}{
		{
			name:  "exact path",
			paths: []string{"src/main.go"},
			want:  []string{"M src/main.go"},
		},
		{
			name:  "directory",
			paths: []string{"docs"},
			want:  []string{"A docs/guide.md", "D docs/old.md"},
		},
		{
			name:  "rename by old side",
			paths: []string{"src/util.go"},
			want:  []string{"R src/util.go -> lib/util.go"},
		},
		{
			name:     "pattern",
			patterns: []string{"*.md", "!docs/old.md"},
			want:     []string{"M README.md", "A docs/guide.md"},
		},
		{
			name:     "paths and patterns keep history order",
			paths:    []string{"src/gen"},
			patterns: []string{"README.md"},
			want:     []string{"M README.md", "A src/gen/types_gen.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectChanges(all, tt.paths, NewPathMatcher(tt.patterns))
			require.NoError(t, err)
			assert.Equal(t, tt.want, selectedStrings(got))
		})
	}
}

func TestSelectChangesErrors(t *testing.T) {
	all := sampleChanges(t)

	_, err := SelectChanges(all, []string{"nope.txt"}, nil)
	assert.ErrorIs(t, err, ErrNoChangesMatched)

	_, err = SelectChanges(all, []string{"src/main"}, nil)
	assert.ErrorIs(t, err, ErrNoChangesMatched)

	_, err = SelectChanges(all, nil, NewPathMatcher([]string{"*.rs"}))
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = SelectChanges(all, nil, nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = SelectChanges(all, []string{"/abs"}, nil)
	assert.ErrorIs(t, err, ErrInvalidPath)
}
