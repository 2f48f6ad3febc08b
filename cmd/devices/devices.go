// Package devices implements the capture device listing subcommand.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/snore-go/internal/myaudio"
)

// Command creates a new command listing available audio capture devices.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := myaudio.ListAudioSources()
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				fmt.Println("No audio capture devices found.")
				return nil
			}

			fmt.Println("Available audio capture devices:")
			for i := range devices {
				d := &devices[i]
				fmt.Printf("  %2d: %s (%s)\n", d.Index, d.Name, d.ID)
			}
			return nil
		},
	}
}
