package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "carve",
		Short: "Split changes out of a git commit",
		Long: `Carve moves selected file changes out of a commit into a new commit placed
right after it, and replays the rest of the branch on top. Only the object
store and the branch ref are written; the working tree is left alone.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("repo", "C", "", "Path inside the repository to work on")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewExtractCmd(a.useCases.Extract),
		NewChangesCmd(a.useCases.Changes),
		NewLogCmd(a.useCases.Log),
		NewConfigCmd(a.useCases.InitConfig),
	)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
