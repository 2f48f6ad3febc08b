// Package file implements the offline file analysis subcommand.
package file

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/snore-go/internal/analysis"
	"github.com/tphakala/snore-go/internal/conf"
)

// Command creates a new file command for analyzing a single WAV recording.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.wav]",
		Short: "Analyze an audio file",
		Long:  "Analyze a WAV recording for snoring and print a per-window report with episode timings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings.Input.Path = args[0]
			return analysis.FileAnalysis(settings)
		},
	}

	return cmd
}
