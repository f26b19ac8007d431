package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [ID]",
	Short: "List or show recorded judgments",
	Long: `List the most recent recorded judgments, or show one by ID.

Requires history.enabled in the configuration (JURADO_HISTORY_ENABLED=true).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of judgments to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if a.history == nil {
		return errors.New("history is disabled (set history.enabled: true)")
	}

	if len(args) == 1 {
		entry, err := a.history.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return r.Render(entry)
	}

	list, err := a.history.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return r.Render(list)
}
