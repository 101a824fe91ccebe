package main

import (
	"github.com/oukeidos/dbyview/internal/window"
	"github.com/spf13/cobra"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files in the catalog directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runList(cmd *cobra.Command, opts *globalOptions) error {
	v, err := startViewer(cmd, opts, nil)
	if err != nil {
		return err
	}
	width := v.Geometry().Width
	if g, ok := screenGeometry(); ok {
		width = g.Width
	}
	printCatalog(cmd.OutOrStdout(), v.Catalog(), width)
	return v.Close(window.Geometry{})
}
