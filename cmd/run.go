// ABOUTME: Run command, the live microphone → effects → speakers session
// ABOUTME: Starts the TUI by default, or streams logs with --no-tui
package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/micamp/micamp-go/internal/app"
	"github.com/micamp/micamp-go/internal/version"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live effects chain",
	Long: `Capture the microphone, process it through the effect chain of the
current preset and play it back. Recording, effect order and parameters are
controlled from the TUI or a remote monitor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		noTUI, _ := flags.GetBool("no-tui")
		record, _ := flags.GetBool("record")
		input, _ := flags.GetString("input")

		if flags.Changed("remote") {
			cfg.Remote.Enabled, _ = flags.GetBool("remote")
		}
		if flags.Changed("preset") {
			cfg.Preset.Path, _ = flags.GetString("preset")
		}

		if noTUI {
			log.Printf("Starting %s", version.String())
			log.Printf("TUI disabled, streaming logs")
		}
		debugf("Config file: %q, preset: %s, recordings: %s", cfg.File, cfg.Preset.Path, cfg.Recording.Directory)

		a, err := app.New(app.Config{
			Settings:  cfg,
			InputFile: input,
			Realtime:  true,
			Record:    record,
			UseTUI:    !noTUI,
			Debug:     verbose,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.Run(ctx); err != nil {
			return err
		}
		log.Printf("Shutdown complete")
		return nil
	},
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-tui", false, "disable the TUI and stream logs to stdout")
	cmd.Flags().Bool("record", false, "start recording immediately")
	cmd.Flags().Bool("remote", false, "enable the remote monitor (overrides config)")
	cmd.Flags().String("preset", "", "preset file (overrides config)")
	cmd.Flags().StringP("input", "i", "", "play an audio file through the chain instead of the microphone")
}
