// Command actormeshctl is a thin operator CLI talking to a running
// actormesh node's HTTP surface: send/ask/inspect from the outside. Built
// with github.com/spf13/cobra for subcommands and
// github.com/olekukonko/tablewriter for the actors/stats/dead-letter
// tables. It has no subcommand that spawns actors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var baseURL string

func main() {
	root := &cobra.Command{
		Use:   "actormeshctl",
		Short: "Operate a running actormesh node",
	}
	root.PersistentFlags().StringVar(&baseURL, "addr", "http://localhost:8080", "base URL of the actormesh node")

	root.AddCommand(
		newSendCmd(),
		newAskCmd(),
		newActorsCmd(),
		newStatsCmd(),
		newDeadLettersCmd(),
		newDashboardCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
