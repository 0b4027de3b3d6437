// ABOUTME: Devices command
// ABOUTME: Lists capture and playback devices reported by the audio backend
package cmd

import (
	"fmt"

	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio devices",
	Long: `List capture and playback devices. Any part of a device name can be used
as audio.input_device or audio.output_device in the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := device.NewContext()
		if err != nil {
			return err
		}
		defer ctx.Close()

		for _, dir := range []device.Direction{device.DirCapture, device.DirPlayback} {
			devices, err := ctx.Devices(dir)
			if err != nil {
				return err
			}

			fmt.Printf("%s devices (%d):\n", dir, len(devices))
			for i, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Printf("  %s %d. %s\n", marker, i+1, d.Name)
			}
			fmt.Println()
		}

		if cfg.Audio.Backend == "oto" {
			fmt.Println("Playback uses the oto backend, output_device is ignored.")
		}
		return nil
	},
}
