package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// FilePreview shows how one selected file changes in the extracted commit.
type FilePreview struct {
	Path   string
	Status ChangeStatus
	Binary bool
	Diff   string
}

// BuildPreview renders the difference between the remaining tree and the
// original tree for every selected change, i.e. the content the extracted
// commit reintroduces.
func BuildPreview(ctx context.Context, repo HistoryRepository, remainingTree, originalTree Oid, changes []Change, contextLines int) ([]FilePreview, error) {
	previews := make([]FilePreview, 0, len(changes))
	for _, c := range changes {
		p, err := c.Path()
		if err != nil {
			return nil, err
		}

		oldPath := p
		if c.Before != nil {
			oldPath = *c.Before
		}

		before, _, err := repo.FileContents(ctx, remainingTree, oldPath)
		if err != nil {
			return nil, err
		}
		after, _, err := repo.FileContents(ctx, originalTree, p)
		if err != nil {
			return nil, err
		}

		fp := FilePreview{Path: p.String(), Status: c.Status()}
		if isBinaryContent(before) || isBinaryContent(after) {
			fp.Binary = true
		} else {
			fp.Diff = RenderLineDiff(before, after, contextLines)
		}
		previews = append(previews, fp)
	}
	return previews, nil
}

// RenderLineDiff prints a line diff with "+", "-" and " " prefixes. Runs of
// unchanged lines are cut down to contextLines lines around each change.
func RenderLineDiff(before, after string, contextLines int) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var buf strings.Builder
	for i, d := range diffs {
		body := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writePrefixed(&buf, "+", body)
		case diffmatchpatch.DiffDelete:
			writePrefixed(&buf, "-", body)
		default:
			head, skipped, tail := trimContext(body, contextLines, i == 0, i == len(diffs)-1)
			writePrefixed(&buf, " ", head)
			if skipped > 0 {
				fmt.Fprintf(&buf, "@@ %d unchanged lines @@\n", skipped)
			}
			writePrefixed(&buf, " ", tail)
		}
	}
	return buf.String()
}

// trimContext keeps contextLines lines on each side of an unchanged run that
// borders a change. The first run has no change before it, the last none
// after it.
func trimContext(lines []string, contextLines int, first, last bool) (head []string, skipped int, tail []string) {
	keepHead, keepTail := contextLines, contextLines
	if first {
		keepHead = 0
	}
	if last {
		keepTail = 0
	}
	if len(lines) <= keepHead+keepTail {
		return lines, 0, nil
	}
	return lines[:keepHead], len(lines) - keepHead - keepTail, lines[len(lines)-keepTail:]
}

func writePrefixed(buf *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		buf.WriteString(prefix)
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func isBinaryContent(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}
