package main

import (
	"strconv"

	"github.com/oukeidos/dbyview/internal/catalog"
	"github.com/oukeidos/dbyview/internal/launch"
	"github.com/oukeidos/dbyview/internal/window"
	"github.com/spf13/cobra"
)

func newOpenCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <number|name>",
		Short: "Open one catalog file with the configured program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, opts, args[0])
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func runOpen(cmd *cobra.Command, opts *globalOptions, which string) error {
	v, err := startViewer(cmd, opts, nil)
	if err != nil {
		return err
	}
	defer v.Close(window.Geometry{})

	var (
		entry catalog.Entry
		ch    <-chan launch.Result
	)
	if n, convErr := strconv.Atoi(which); convErr == nil {
		cat := v.Catalog()
		if entry, err = cat.At(n - 1); err != nil {
			return err
		}
		if ch, err = v.Open(cat.Generation(), n-1); err != nil {
			return err
		}
	} else {
		if entry, ch, err = v.OpenByName(which); err != nil {
			return err
		}
	}
	return awaitLaunch(cmd.OutOrStdout(), entry.Name, ch)
}
