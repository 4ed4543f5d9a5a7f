package main

import (
	"fmt"

	"github.com/Harshitk-cp/trustmind/internal/buildconfig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), buildconfig.String())
		return err
	},
}
