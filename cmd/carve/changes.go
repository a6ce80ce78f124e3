package main

import (
	"fmt"

	"github.com/4thel00z/carve/internal"
	"github.com/spf13/cobra"
)

func NewChangesCmd(changesUC *internal.ChangesUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes [commit]",
		Short: "List the file changes of a commit",
		Long:  `List what a commit changes against its first parent. These are the paths extract accepts.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeChangesRunner(changesUC),
	}

	return cmd
}

func makeChangesRunner(changesUC *internal.ChangesUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rev := ""
		if len(args) > 0 {
			rev = args[0]
		}

		repoHint, _ := cmd.Flags().GetString("repo")
		asJSON, _ := cmd.Flags().GetBool("json")

		out, err := changesUC.Execute(cmd.Context(), internal.ChangesInput{
			Revision: rev, Scope: repoHint,
		})
		if err != nil {
			return fmt.Errorf("list changes: %w", err)
		}

		if asJSON {
			changes := make([]map[string]any, 0, len(out.Changes))
			for _, c := range out.Changes {
				changes = append(changes, changeJSON(c))
			}
			return writeJSON(cmd, map[string]any{
				"commit":  out.Commit,
				"changes": changes,
			})
		}

		for _, c := range out.Changes {
			if c.From != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s -> %s\n", c.Status, c.From, c.Path)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Status, c.Path)
		}
		return nil
	}
}

func changeJSON(c internal.ChangeOutput) map[string]any {
	data := map[string]any{
		"status": c.Status,
		"path":   c.Path,
	}
	if c.From != "" {
		data["from"] = c.From
	}
	return data
}
