package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/catalog"
	"github.com/oukeidos/dbyview/internal/cleanup"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		if kind, ok := apperrors.KindOf(err); ok {
			logger.Debug("Command failed", "kind", kind, "error", err)
		}
	}
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// globalOptions carries the identity and location flags shared by every command.
type globalOptions struct {
	configDir string
	perUser   bool
	user      string
	extension string
	logDir    string
	noLogFile bool
	debug     bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "dbyview",
		Short: "Browse .dby files and open them with an external viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	cmd.SetGlobalNormalizationFunc(normalizeFlagName)
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "Directory holding the settings file (default ~/.dbyview)")
	flags.BoolVar(&opts.perUser, "per-user", false, "Keep a separate settings file for each OS user")
	flags.StringVar(&opts.user, "user", "", "User name for --per-user and log file names (default: current OS user)")
	flags.StringVar(&opts.extension, "ext", catalog.DefaultExtension, "File extension to list")
	flags.StringVar(&opts.logDir, "log-dir", "", "Directory for JSONL log files (default ~/.dbyview/logs)")
	flags.BoolVar(&opts.noLogFile, "no-log-file", false, "Log to the console only")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newBrowseCmd(opts),
		newListCmd(opts),
		newOpenCmd(opts),
		newConfigCmd(opts),
		newAboutCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "Generate the autocompletion script for the specified shell"
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

// normalizeFlagName accepts "--config_dir" for "--config-dir" so names can be
// copied from the settings file.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
