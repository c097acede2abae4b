// Package main provides the facet CLI, a formatter and checker for
// facet's extensible data notation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess = 0
	exitUserErr = 1
)

var (
	// configFile is set by the --config flag.
	configFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserErr)
	}
}

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "facet formats and checks extensible data notation",
	Long: `Facet reads the extensible data notation used by the facet library,
re-prints it canonically, and verifies that files survive a decode/encode
round trip unchanged.`,
	// main prints the error itself; usage noise helps nobody.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: .facet.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
}
