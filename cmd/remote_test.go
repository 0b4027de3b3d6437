// ABOUTME: Tests for remote command flag handling
// ABOUTME: Checks control/set payloads built from command-line flags
package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func parseSetFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "set"}
	addSetFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return c
}

func TestControlFromFlags(t *testing.T) {
	c := parseSetFlags(t, "--volume", "2.5", "--effect", "delay", "--enable",
		"--param", "time=0.25", "--param", "mix=0.4", "--order", "eq,delay", "--record")

	ctl, err := controlFromFlags(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctl.Volume == nil || *ctl.Volume != 2.5 {
		t.Errorf("expected volume 2.5, got %v", ctl.Volume)
	}
	if ctl.Effect != "delay" || ctl.Enabled == nil || !*ctl.Enabled {
		t.Errorf("expected delay enabled, got %q %v", ctl.Effect, ctl.Enabled)
	}
	if len(ctl.Params) != 2 || ctl.Params["time"] != 0.25 || ctl.Params["mix"] != 0.4 {
		t.Errorf("unexpected params %v", ctl.Params)
	}
	if len(ctl.Order) != 2 || ctl.Order[1] != "delay" {
		t.Errorf("unexpected order %v", ctl.Order)
	}
	if ctl.Recording == nil || !*ctl.Recording {
		t.Error("expected recording on")
	}
}

func TestControlFromFlagsDisable(t *testing.T) {
	ctl, err := controlFromFlags(parseSetFlags(t, "--effect", "reverb", "--disable", "--stop-record"))
	if err != nil {
		t.Fatal(err)
	}
	if ctl.Enabled == nil || *ctl.Enabled {
		t.Error("expected enabled=false")
	}
	if ctl.Recording == nil || *ctl.Recording {
		t.Error("expected recording=false")
	}
	if ctl.Volume != nil {
		t.Error("volume must be omitted when not given")
	}
}

func TestControlFromFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing", nil},
		{"param without effect", []string{"--param", "mix=0.5"}},
		{"enable without effect", []string{"--enable"}},
		{"malformed param", []string{"--effect", "delay", "--param", "mix"}},
		{"non-numeric param", []string{"--effect", "delay", "--param", "mix=lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := controlFromFlags(parseSetFlags(t, tt.args...)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLogsToTerminal(t *testing.T) {
	root := &cobra.Command{Use: "micamp"}
	addRunFlags(root)
	run := &cobra.Command{Use: "run"}
	addRunFlags(run)
	other := &cobra.Command{Use: "devices"}
	root.AddCommand(run, other)

	if logsToTerminal(root) {
		t.Error("bare root runs the TUI and must log to file only")
	}
	if !logsToTerminal(other) {
		t.Error("non-interactive commands should log to the terminal")
	}

	run.ParseFlags([]string{"--no-tui"})
	if !logsToTerminal(run) {
		t.Error("--no-tui should log to the terminal")
	}
}
