package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/clip"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/fsutil"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/render"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	noColor   bool
	output    string
	savePath  string
	copyOut   bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "jurado",
	Short: "Multi-modal content judge backed by Gemini",
	Long: `jurado analyzes text, images, audio, video and PDF documents with one
specialized agent per modality, consolidates batches into a single synthesis
and ranks competition entries.

Run 'jurado serve' to expose the HTTP API, or use the analyze, compare and
judge commands directly from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./.jurado.yaml or ~/.config/jurado/.jurado.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "pretty",
		"output format (pretty, json, yaml, markdown)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// newRenderer returns the renderer selected by --output.
func newRenderer(cmd *cobra.Command) (*render.Renderer, error) {
	format, err := render.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	return render.New(cmd.OutOrStdout(), format, !noColor), nil
}

// saveResult writes v, in the selected format without color, to --save
// and to the clipboard with --copy. The saved file is replaced atomically.
func saveResult(cmd *cobra.Command, v any) error {
	if savePath == "" && !copyOut {
		return nil
	}
	format, err := render.ParseFormat(output)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.New(&buf, format, false).Render(v); err != nil {
		return err
	}

	if savePath != "" {
		if err := fsutil.WriteFile(savePath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("saving result to %s: %w", savePath, err)
		}
	}
	if copyOut {
		res, err := clip.Copy(buf.String())
		if err != nil {
			return fmt.Errorf("copying result: %w", err)
		}
		if res.Method == clip.MethodFile {
			fmt.Fprintf(cmd.ErrOrStderr(), "clipboard unavailable, result written to %s\n", res.FilePath)
		}
	}
	return nil
}
