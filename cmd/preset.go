// ABOUTME: Preset commands
// ABOUTME: Creates and prints YAML effect presets
package cmd

import (
	"fmt"
	"os"

	"github.com/micamp/micamp-go/internal/preset"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage effect presets",
}

var presetInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the factory preset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := presetPath(args)
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		p := preset.Default()
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			p.Name = name
		}
		if err := p.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print a preset after validation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := preset.Load(presetPath(args))
		if err != nil {
			return err
		}

		// Round trip through the snapshot so defaults are filled in
		snap, err := p.Snapshot()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(preset.FromSnapshot(p.Name, snap))
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func presetPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return cfg.Preset.Path
}

func init() {
	presetInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	presetInitCmd.Flags().String("name", "", "preset name (default \"default\")")

	presetCmd.AddCommand(presetInitCmd)
	presetCmd.AddCommand(presetShowCmd)
}
