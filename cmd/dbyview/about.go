package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description and link",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "dbyview: browse .dby files and open them with an external viewer")
			fmt.Fprintln(out, "https://github.com/oukeidos/dbyview")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
