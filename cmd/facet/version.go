// Version command for the facet CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/facet/pkg/facet"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the facet version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("facet", facet.Version)
	},
}
