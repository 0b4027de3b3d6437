// ABOUTME: Discover command
// ABOUTME: Browses the local network for running MicAmp monitors
package cmd

import (
	"fmt"
	"time"

	"github.com/micamp/micamp-go/internal/discovery"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find remote monitors on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		instances, err := discovery.Discover(timeout)
		if err != nil {
			return err
		}

		if len(instances) == 0 {
			fmt.Printf("No %s services found within %v\n", discovery.ServiceType, timeout)
			return nil
		}
		for _, inst := range instances {
			fmt.Printf("%s\t%s\n", inst.Name, inst.URL())
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().Duration("timeout", 3*time.Second, "how long to listen for answers")
}
