package cmd

import (
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare FILE...",
	Short: "Analyze several items and synthesize a joint verdict",
	Long: `Analyze every file concurrently with the agent for its content type,
then consolidate the individual verdicts into one synthesis.

Example:
  jurado compare capa.png trailer.mp4 sinopse.txt --criteria "Coerência da campanha"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

var judgeCmd = &cobra.Command{
	Use:   "judge FILE...",
	Short: "Rank competition entries",
	Long: `Analyze every entry, synthesize the competition and rank the entries by
score. Ties keep submission order.

Example:
  jurado judge entrada1.txt entrada2.txt entrada3.txt --criteria "Melhor conto"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJudge,
}

var batchCriteria string

func init() {
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(judgeCmd)

	for _, c := range []*cobra.Command{compareCmd, judgeCmd} {
		c.Flags().StringVarP(&batchCriteria, "criteria", "c", "", "Evaluation criteria")
		c.Flags().StringVar(&savePath, "save", "", "Also write the result to this file")
		c.Flags().BoolVar(&copyOut, "copy", false, "Also copy the result to the clipboard")
	}
}

func runCompare(cmd *cobra.Command, args []string) error {
	items, err := itemsFromArgs(args)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result := a.judge.AnalyzeMultiple(cmd.Context(), items, batchCriteria)
	if err := r.Render(result); err != nil {
		return err
	}
	return saveResult(cmd, result)
}

func runJudge(cmd *cobra.Command, args []string) error {
	items, err := itemsFromArgs(args)
	if err != nil {
		return err
	}
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result := a.judge.JudgeCompetition(cmd.Context(), items, batchCriteria)
	if err := r.Render(result); err != nil {
		return err
	}
	return saveResult(cmd, result)
}
