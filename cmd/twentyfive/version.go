package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/twentyfive"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of twentyfive",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "twentyfive version %s\n", strings.TrimSpace(twentyfive.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
