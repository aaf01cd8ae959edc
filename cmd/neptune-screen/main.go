// Neptune-screen drives the stock touchscreen of an Elegoo Neptune 4 from
// Moonraker.
//
// It talks to the TJC screen over its UART, mirrors printer status onto the
// screen fields and turns button presses into Moonraker calls.
//
// Usage:
//
//	neptune-screen run [flags]
//
// See 'neptune-screen --help' for the other commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/neptune-screen/internal/navigation"
	"github.com/muurk/neptune-screen/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, navigation.ErrTransportLost) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "neptune-screen",
	Short: "Neptune 4 touchscreen bridge for Moonraker",
	Long: `Drives the Elegoo Neptune 4 touchscreen from a Moonraker instance.

The screen is attached over a serial UART. Printer status is pushed to the
screen twice a second and screen input is routed to Moonraker through a
routing table that maps (page, input kind, action) to view operations.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configPath string

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "neptune-screen %s\n", version.Full())
	},
}
