// ABOUTME: Root command, configuration loading and log setup
// ABOUTME: Every subcommand shares the loaded config through cfg
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/micamp/micamp-go/internal/config"
	"github.com/micamp/micamp-go/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string
	logFile string
	verbose bool

	// logOut is the open log file, closed by Execute
	logOut *os.File
)

var rootCmd = &cobra.Command{
	Use:   "micamp",
	Short: "Real-time microphone effects processor and recorder",
	Long: `MicAmp captures a microphone, runs it through a reorderable chain of
thirteen effects and plays the result back with low latency.

The processed signal can be recorded to WAV, monitored remotely over
WebSocket and rendered offline from audio files.

Without a subcommand it acts as 'micamp run'.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logFile != "" {
			cfg.LogFile = logFile
		}
		return setupLogging(cfg.LogFile, logsToTerminal(cmd))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

// Execute runs the command tree
func Execute() {
	err := rootCmd.Execute()
	if logOut != nil {
		_ = logOut.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml in "+config.DefaultDir()+")")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// The bare root command runs the engine
	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(remoteCmd)
}

// logsToTerminal reports whether log output should also reach stdout.
// Only the TUI owns the terminal.
func logsToTerminal(cmd *cobra.Command) bool {
	if cmd.Name() != "run" && cmd != cmd.Root() {
		return true
	}
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	return noTUI
}

// setupLogging appends to path, mirroring to stdout when terminal is set
func setupLogging(path string, terminal bool) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	logOut = f

	if terminal {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}
	return nil
}

func debugf(format string, args ...interface{}) {
	if verbose {
		log.Printf("[DEBUG] "+format, args...)
	}
}
