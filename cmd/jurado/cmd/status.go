package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent and connection status",
	Long: `Show which analysis agents are registered and whether the Gemini API key
is configured. With --probe, also check that Gemini and the media tools
(ffprobe, ffmpeg, pdftotext) are reachable. With --host, report host
resource usage instead.`,
	RunE: runStatus,
}

var (
	statusProbe   bool
	statusHost    bool
	statusTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusProbe, "probe", false, "Check external collaborators")
	statusCmd.Flags().BoolVar(&statusHost, "host", false, "Report host resource usage")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Second, "Timeout per probe")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	r, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if statusHost {
		return r.Render(a.host.Collect(cmd.Context()))
	}
	if statusProbe {
		return r.Render(a.health.Probe(cmd.Context(), statusTimeout))
	}
	return r.Render(a.health.Status())
}
