// Command physmonctl drives a physmon.Monitor through a scripted sequence of events and prints the
// resulting state trace, for manual exploration of the transition table without wiring a real physical
// layer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "physmonctl",
		Short: "Drive a physmon.Monitor from a scripted event sequence",
	}
	cmd.AddCommand(runCmd())
	return cmd
}
