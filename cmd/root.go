// Package cmd assembles the command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/snore-go/cmd/config"
	"github.com/tphakala/snore-go/cmd/devices"
	"github.com/tphakala/snore-go/cmd/file"
	"github.com/tphakala/snore-go/cmd/realtime"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/logging"
)

// RootCommand creates and returns the root command with all subcommands
// attached. Flag values land in viper first; the settings struct is
// re-unmarshaled after parsing so command line arguments take precedence
// over config file and environment.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snore-go",
		Short: "Snore-Go CLI",
		Long:  "Overnight snore detection with a vibration wake-up nudge.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		realtime.Command(settings),
		file.Command(settings),
		devices.Command(),
		config.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Re-read the merged configuration now that flags are parsed.
		if err := viper.Unmarshal(settings); err != nil {
			return err
		}
		if settings.Debug {
			logging.Init(slog.LevelDebug, &settings.Main.Log)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags shared by all analysis subcommands.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.SnoreNET.ModelPath, "model", viper.GetString("snorenet.modelpath"), "Path to the TensorFlow Lite model file")
	rootCmd.PersistentFlags().Float64VarP(&settings.SnoreNET.Threshold, "threshold", "t", viper.GetFloat64("snorenet.threshold"), "Probability threshold for a positive window, value between 0.0 and 1.0")
	rootCmd.PersistentFlags().Float64VarP(&settings.SnoreNET.Sensitivity, "sensitivity", "s", viper.GetFloat64("snorenet.sensitivity"), "Sigmoid sensitivity value between 0.0 and 1.5")
	rootCmd.PersistentFlags().Float64Var(&settings.SnoreNET.ChunkDuration, "chunk-duration", viper.GetFloat64("snorenet.chunkduration"), "Analysis window length in seconds")
	rootCmd.PersistentFlags().Float64Var(&settings.SnoreNET.Overlap, "overlap", viper.GetFloat64("snorenet.overlap"), "Fraction of a window shared with the previous one, at least 0.0 and below 1.0")
	rootCmd.PersistentFlags().IntVar(&settings.SnoreNET.MinSnoreCount, "min-snore-count", viper.GetInt("snorenet.minsnorecount"), "Consecutive positive windows required before alerting")
	rootCmd.PersistentFlags().IntVarP(&settings.SnoreNET.Threads, "threads", "j", viper.GetInt("snorenet.threads"), "Number of CPU threads for inference, 0 to use optimal count")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	// Flag names use dashes, config keys do not.
	bindings := map[string]string{
		"snorenet.chunkduration": "chunk-duration",
		"snorenet.minsnorecount": "min-snore-count",
		"snorenet.modelpath":     "model",
		"snorenet.threshold":     "threshold",
		"snorenet.sensitivity":   "sensitivity",
		"snorenet.overlap":       "overlap",
		"snorenet.threads":       "threads",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
