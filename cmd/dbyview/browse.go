package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/window"
	"github.com/spf13/cobra"
)

const browsePrompt = "Number to open, r refresh, d change folder, e change program, q quit: "

func newBrowseCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
		SilenceUsage: true,
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

// runBrowse drives one interactive session. Launch and selection errors are
// printed and the loop continues; quitting saves the terminal size.
func runBrowse(cmd *cobra.Command, opts *globalOptions) error {
	tty := newTerminal(cmd)
	v, err := startViewer(cmd, opts, tty)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	saved := v.Geometry()
	logger.Debug("Window size restored", "width", saved.Width, "height", saved.Height)
	width := saved.Width
	if g, ok := screenGeometry(); ok {
		width = g.Width
	}

	cat := v.Catalog()
	printCatalog(out, cat, width)
	for {
		line, readErr := tty.ReadLine(browsePrompt)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		choice := strings.ToLower(strings.TrimSpace(line))

		switch {
		case choice == "q" || choice == "quit":
			return closeBrowse(v.Close)
		case choice == "r" || choice == "refresh":
			if _, err := v.Refresh(); err != nil {
				fmt.Fprintf(out, "Warning: %s\n", apperrors.PublicMessage(err))
			}
			cat = v.Catalog()
			printCatalog(out, cat, width)
		case choice == "d":
			if _, err := v.ChangeFolder(); err != nil {
				fmt.Fprintf(out, "Warning: %s\n", apperrors.PublicMessage(err))
			}
			cat = v.Catalog()
			printCatalog(out, cat, width)
		case choice == "e":
			if err := v.ChangeExecutable(); err != nil {
				fmt.Fprintf(out, "Warning: %s\n", apperrors.PublicMessage(err))
			} else {
				fmt.Fprintf(out, "Files now open with %s\n", v.Executable())
			}
		case choice == "":
		default:
			n, convErr := strconv.Atoi(choice)
			if convErr != nil {
				fmt.Fprintf(out, "Unknown choice %q\n", choice)
				break
			}
			ch, err := v.Open(cat.Generation(), n-1)
			if err != nil {
				fmt.Fprintln(out, apperrors.PublicMessage(err))
				break
			}
			entry, _ := cat.At(n - 1)
			if err := awaitLaunch(out, entry.Name, ch); err != nil {
				fmt.Fprintln(out, apperrors.PublicMessage(err))
			}
		}

		if errors.Is(readErr, io.EOF) {
			return closeBrowse(v.Close)
		}
	}
}

func closeBrowse(closeFn func(window.Geometry) error) error {
	g, ok := screenGeometry()
	if !ok {
		g = window.Geometry{}
	}
	return closeFn(g)
}
