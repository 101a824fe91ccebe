package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/oukeidos/dbyview/internal/apperrors"
	"github.com/oukeidos/dbyview/internal/cleanup"
	"github.com/oukeidos/dbyview/internal/files"
	"github.com/oukeidos/dbyview/internal/launch"
	"github.com/oukeidos/dbyview/internal/logger"
	"github.com/oukeidos/dbyview/internal/prompt"
	"github.com/oukeidos/dbyview/internal/settings"
	"github.com/oukeidos/dbyview/internal/version"
	"github.com/oukeidos/dbyview/internal/viewer"
	"github.com/oukeidos/dbyview/internal/window"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const appDirName = ".dbyview"

var (
	homeDir          = os.UserHomeDir
	currentUser      = osUserName
	stdinInteractive = prompt.StdinIsInteractive
	terminalSize     = term.GetSize
	programName      = func() string { return settings.ProgramName(os.Args[0]) }
)

func osUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		if i := strings.LastIndexAny(name, `\/`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return "unknown"
}

func (o *globalOptions) userName() string {
	if u := strings.TrimSpace(o.user); u != "" {
		return u
	}
	return currentUser()
}

func (o *globalOptions) appDir() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, appDirName), nil
}

func (o *globalOptions) location() (settings.Location, error) {
	dir := o.configDir
	if dir == "" {
		var err error
		if dir, err = o.appDir(); err != nil {
			return settings.Location{}, err
		}
	}
	return settings.Location{
		Dir:     dir,
		Program: programName(),
		User:    o.userName(),
		PerUser: o.perUser,
	}, nil
}

// setupLogging installs the console logger and, unless disabled, the daily
// JSONL log file. It is called once per command run.
func setupLogging(opts *globalOptions) error {
	level := logger.LevelInfo
	if opts.debug {
		level = logger.LevelDebug
	}
	if opts.noLogFile {
		logger.Init(level, nil)
		return nil
	}

	dir := opts.logDir
	if dir == "" {
		base, err := opts.appDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(base, "logs")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	path := logger.FileName(dir, version.Version, opts.userName(), time.Now())
	if err := files.RejectSymlinkPath(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cleanup.Register("log file", f.Close)
	logger.Init(level, f)
	return nil
}

func newTerminal(cmd *cobra.Command) *prompt.Terminal {
	return &prompt.Terminal{
		In:            cmd.InOrStdin(),
		Out:           cmd.OutOrStdout(),
		IsInteractive: stdinInteractive,
		HomeDir:       homeDir,
	}
}

// startViewer runs the startup sequence. An invalid catalog root is printed
// as a warning and the viewer is still returned.
func startViewer(cmd *cobra.Command, opts *globalOptions, chooser *prompt.Terminal) (*viewer.Viewer, error) {
	if err := setupLogging(opts); err != nil {
		return nil, err
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}
	if chooser == nil {
		chooser = newTerminal(cmd)
	}
	v, err := viewer.Start(viewer.Config{
		Location:  loc,
		Extension: opts.extension,
		Fallback:  window.Default,
	}, chooser)
	if err != nil {
		if v != nil && apperrors.Is(err, apperrors.KindInvalidRoot) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", apperrors.PublicMessage(err))
			return v, nil
		}
		if apperrors.IsFatal(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Run '%s config reset' to move the broken file aside.\n", cmd.Root().Name())
		}
		return nil, err
	}
	return v, nil
}

// awaitLaunch waits for the spawn result only; the launched program keeps
// running on its own.
func awaitLaunch(w io.Writer, name string, ch <-chan launch.Result) error {
	res, ok := <-ch
	if !ok {
		return errors.New("launch finished without a result")
	}
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(w, "Opened %s (pid %d)\n", name, res.PID)
	return nil
}

// screenGeometry reports the current terminal size, if stdout is a terminal.
func screenGeometry() (window.Geometry, bool) {
	w, h, err := terminalSize(int(os.Stdout.Fd()))
	if err != nil {
		return window.Geometry{}, false
	}
	g := window.Geometry{Width: w, Height: h}
	return g, g.Valid()
}
