package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/4thel00z/carve/internal"
	"github.com/spf13/cobra"
)

func NewExtractCmd(extractUC *internal.ExtractUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <commit> [paths...]",
		Short: "Move changes out of a commit into a new commit",
		Long: `Split <commit> in two. The first commit keeps the original message without
the selected changes; the second adds them back under a new message.
Descendants up to the current branch head are replayed on top.

Changes are selected by path (a directory selects everything below it),
by gitignore-style --match patterns, or by the files of a --patch.
Opens $EDITOR if no message is provided.`,
		Args: cobra.MinimumNArgs(1),
		RunE: makeExtractRunner(extractUC),
	}

	cmd.Flags().StringP("message", "m", "", "Message for the extracted commit")
	cmd.Flags().StringArray("match", nil, "Select changes matching a gitignore-style pattern (repeatable)")
	cmd.Flags().String("match-file", "", "Read --match patterns from a file")
	cmd.Flags().String("patch", "", "Select the files touched by a unified diff (- for stdin)")
	cmd.Flags().Bool("dry-run", false, "Show what would move without updating the branch")
	cmd.Flags().Bool("no-update", false, "Write the new commits but leave the branch where it is")
	return cmd
}

func makeExtractRunner(extractUC *internal.ExtractUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		patterns, _ := cmd.Flags().GetStringArray("match")
		matchFile, _ := cmd.Flags().GetString("match-file")
		patchPath, _ := cmd.Flags().GetString("patch")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noUpdate, _ := cmd.Flags().GetBool("no-update")
		repoHint, _ := cmd.Flags().GetString("repo")
		asJSON, _ := cmd.Flags().GetBool("json")

		if matchFile != "" {
			lines, err := internal.ReadPatterns(matchFile)
			if err != nil {
				return err
			}
			patterns = append(patterns, lines...)
		}

		var patch io.Reader
		if patchPath != "" {
			r, closeFn, err := openPatch(cmd, patchPath)
			if err != nil {
				return err
			}
			defer closeFn()
			patch = r
		}

		if message == "" && dryRun {
			message = "dry run"
		}
		if message == "" {
			var err error
			message, err = getMessageFromEditor()
			if err != nil {
				return fmt.Errorf("get message: %w", err)
			}
		}

		if message == "" {
			return fmt.Errorf("commit message required")
		}

		out, err := extractUC.Execute(cmd.Context(), internal.ExtractInput{
			Revision: args[0],
			Paths:    args[1:],
			Patterns: patterns,
			Patch:    patch,
			Message:  message,
			DryRun:   dryRun,
			NoUpdate: noUpdate,
			Scope:    repoHint,
		})
		if err != nil {
			return fmt.Errorf("extract: %w", describeSplitError(err))
		}

		if asJSON {
			return writeJSON(cmd, extractJSON(out))
		}

		w := cmd.OutOrStdout()
		if dryRun {
			for _, p := range out.Preview {
				fmt.Fprintf(w, "%s %s\n", p.Status, p.Path)
				if p.Binary {
					fmt.Fprintln(w, "Binary file differs")
					continue
				}
				fmt.Fprint(w, p.Diff)
			}
			return nil
		}

		fmt.Fprintf(w, "[%s %s] %s\n", out.Ref, out.Extracted[:7], firstLine(message))
		for _, c := range out.Changes {
			if c.From != "" {
				fmt.Fprintf(w, " %s %s -> %s\n", c.Status, c.From, c.Path)
				continue
			}
			fmt.Fprintf(w, " %s %s\n", c.Status, c.Path)
		}
		if !out.Updated {
			fmt.Fprintf(w, "%s not updated, new head is %s\n", out.Ref, out.NewHead)
		}
		return nil
	}
}

func openPatch(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open patch: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// describeSplitError adds the message key of a split failure so scripts can
// match on it.
func describeSplitError(err error) error {
	var splitErr *internal.SplitError
	if errors.As(err, &splitErr) {
		return fmt.Errorf("%w [%s]", err, splitErr.MessageKey())
	}
	return err
}

func extractJSON(out *internal.ExtractOutput) map[string]any {
	changes := make([]map[string]any, 0, len(out.Changes))
	for _, c := range out.Changes {
		changes = append(changes, changeJSON(c))
	}

	data := map[string]any{
		"target":    out.Target,
		"remaining": out.Remaining,
		"extracted": out.Extracted,
		"new_head":  out.NewHead,
		"ref":       out.Ref,
		"updated":   out.Updated,
		"changes":   changes,
	}
	if out.Preview != nil {
		preview := make([]map[string]any, 0, len(out.Preview))
		for _, p := range out.Preview {
			preview = append(preview, map[string]any{
				"path":   p.Path,
				"status": string(p.Status),
				"binary": p.Binary,
				"diff":   p.Diff,
			})
		}
		data["preview"] = preview
	}
	return data
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func getMessageFromEditor() (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	tmpFile, err := os.CreateTemp("", "carve-extract-*.txt")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("\n# Enter the message for the extracted commit. Lines starting with # are ignored.\n"); err != nil {
		return "", err
	}
	tmpFile.Close()

	c := exec.Command(editor, tmpFile.Name())
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		return "", err
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines = append(lines, line)
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
