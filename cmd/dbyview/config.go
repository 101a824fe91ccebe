package main

import (
	"fmt"
	"strings"

	"github.com/oukeidos/dbyview/internal/files"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/prompt"
	"github.com/oukeidos/dbyview/internal/settings"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(configUsageTemplate)

	cmd.AddCommand(
		newConfigPathCmd(opts),
		newConfigShowCmd(opts),
		newConfigGetCmd(opts),
		newConfigSetCmd(opts),
		newConfigResetCmd(opts),
	)
	return cmd
}

func newConfigPathCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := opts.location()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc.Path())
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every section and value (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigGetCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <section> <key>",
		Short: "Print one value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			v, ok := store.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("%s.%s is not set", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigSetCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <section> <key> <value>",
		Short: "Store one value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, key := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			if section == "" || key == "" {
				return fmt.Errorf("section and key must not be empty")
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			if err := store.Set(section, key, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.%s\n", section, key)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newConfigResetCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Move the settings file aside and start from defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigReset(cmd, opts, yes)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Reset without asking")
	return cmd
}

func openStore(opts *globalOptions) (*settings.Store, error) {
	if err := setupLogging(opts); err != nil {
		return nil, err
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}
	return settings.Open(loc.Path())
}

func runConfigShow(cmd *cobra.Command, opts *globalOptions) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", store.Path())
	snapshot := store.Snapshot()
	for i, section := range store.Sections() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s]\n", section)
		values := snapshot[section]
		for _, key := range sortedKeys(values) {
			fmt.Fprintf(out, "%s = %q\n", key, values[key])
		}
	}
	return nil
}

func runConfigReset(cmd *cobra.Command, opts *globalOptions, yes bool) error {
	if err := setupLogging(opts); err != nil {
		return err
	}
	loc, err := opts.location()
	if err != nil {
		return err
	}
	path := loc.Path()

	confirmer := prompt.Confirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), IsInteractive: stdinInteractive}
	ok, err := confirmer.Confirm(fmt.Sprintf("Reset %s to defaults?", path), yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
		return nil
	}

	backup, err := files.MoveAside(path, ".bak")
	if err != nil {
		return err
	}
	store, err := settings.Open(path)
	if err != nil {
		return err
	}
	if backup != "" {
		logger.Info("Settings file moved aside", "path", path, "backup", backup)
		fmt.Fprintf(cmd.OutOrStdout(), "Previous settings saved to %s\n", backup)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Settings reset: %s\n", store.Path())
	return nil
}
