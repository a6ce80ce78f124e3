package main

import (
	"fmt"

	"github.com/4thel00z/carve/internal"
	"github.com/spf13/cobra"
)

func NewConfigCmd(initUC *internal.InitConfigUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage carve configuration",
	}

	cmd.AddCommand(newConfigInitCmd(initUC))
	return cmd
}

func newConfigInitCmd(initUC *internal.InitConfigUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long:  `Write carve.yaml with default settings into the repository's git directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			repoHint, _ := cmd.Flags().GetString("repo")

			out, err := initUC.Execute(cmd.Context(), internal.InitConfigInput{
				Force: force, Scope: repoHint,
			})
			if err != nil {
				return fmt.Errorf("init config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out.Path)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	return cmd
}
