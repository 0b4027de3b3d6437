// ABOUTME: Render command
// ABOUTME: Runs an audio file through the effect chain into a WAV file
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micamp/micamp-go/internal/app"
	"github.com/micamp/micamp-go/pkg/audio"
	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <input> <output.wav>",
	Short: "Process an audio file offline",
	Long: `Decode an MP3, FLAC or WAV file, run it through the effect chain of a
preset and write the result as a mono 16-bit WAV file. Nothing is played.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]

		rate, _ := cmd.Flags().GetInt("rate")
		if rate <= 0 {
			rate = audio.DefaultSampleRate
		}

		// Render never touches the live preset or the network
		settings := *cfg
		settings.Audio.SampleRate = rate
		settings.Preset.Autosave = false
		settings.Remote.Enabled = false
		if p, _ := cmd.Flags().GetString("preset"); p != "" {
			settings.Preset.Path = p
		}

		a, err := app.New(app.Config{
			Settings:  &settings,
			InputFile: in,
			Output:    device.NewWAVPlayback(out, rate),
			Debug:     verbose,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("Rendering %s with preset %s at %dHz", in, a.Store().Name(), rate)
		start := time.Now()
		if err := a.Run(ctx); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("render interrupted, %s is incomplete", out)
		}

		log.Printf("Wrote %s in %v", out, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	renderCmd.Flags().String("preset", "", "preset file (default is the configured preset)")
	renderCmd.Flags().Int("rate", 0, "output sample rate (default 48000)")
}
