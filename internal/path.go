package internal

import (
	"fmt"
	"strings"
)

// FilePath is a repository-relative path kept as its segments, so stripping
// the leading directory never has to deal with separators.
type FilePath struct {
	segments []string
}

func NewFilePath(s string) (FilePath, error) {
	s = strings.TrimSuffix(s, "/")
	if s == "" || strings.HasPrefix(s, "/") {
		return FilePath{}, fmt.Errorf("%w: %q", ErrInvalidPath, s)
	}

	parts := strings.Split(s, "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return FilePath{}, fmt.Errorf("%w: %q", ErrInvalidPath, s)
		}
	}
	return FilePath{segments: parts}, nil
}

func (p FilePath) FirstComponent() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[0]
}

func (p FilePath) ComponentCount() int {
	return len(p.segments)
}

// Advance drops the first component.
func (p FilePath) Advance() FilePath {
	if len(p.segments) <= 1 {
		return FilePath{}
	}
	return FilePath{segments: p.segments[1:]}
}

// Child appends one component.
func (p FilePath) Child(name string) FilePath {
	segs := make([]string, 0, len(p.segments)+1)
	segs = append(segs, p.segments...)
	return FilePath{segments: append(segs, name)}
}

func (p FilePath) IsEmpty() bool {
	return len(p.segments) == 0
}

func (p FilePath) Segments() []string {
	return append([]string(nil), p.segments...)
}

func (p FilePath) String() string {
	return strings.Join(p.segments, "/")
}
