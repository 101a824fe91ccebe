package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindStoreCorrupt   Kind = "store_corrupt"
	KindInvalidRoot    Kind = "invalid_root"
	KindPathUnresolved Kind = "path_unresolved"
	KindLaunchSpawn    Kind = "launch_spawn"
	KindStaleSelection Kind = "stale_selection"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Path is the file or directory the failure is about, if any.
	Path string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return defaultSafeMessage(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindStoreCorrupt:
		return "Settings file is corrupt. Fix or delete it and restart."
	case KindInvalidRoot:
		return "Catalog directory does not exist or is not a directory."
	case KindPathUnresolved:
		return "A required path was not provided."
	case KindLaunchSpawn:
		return "Failed to start the external program."
	case KindStaleSelection:
		return "Selection is no longer valid. Refresh the list and try again."
	default:
		return "Operation failed."
	}
}

func New(kind Kind, safeMessage, path string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Path:        path,
		Cause:       cause,
	}
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, cause)
}

// StoreCorrupt reports a settings file that exists but cannot be parsed.
func StoreCorrupt(path string, cause error) error {
	return New(KindStoreCorrupt, withCause(fmt.Sprintf("settings file %s is corrupt (fix or delete it)", path), cause), path, cause)
}

func InvalidRoot(path string, cause error) error {
	return New(KindInvalidRoot, withCause(fmt.Sprintf("cannot scan %s", path), cause), path, cause)
}

// PathUnresolved reports that a required path (setting name) was not supplied.
func PathUnresolved(setting string, cause error) error {
	return New(KindPathUnresolved, withCause(fmt.Sprintf("%s is not set and no value was chosen", setting), cause), "", cause)
}

func LaunchSpawn(executable, target string, cause error) error {
	return New(KindLaunchSpawn, withCause(fmt.Sprintf("failed to start %s for %s", executable, target), cause), executable, cause)
}

func StaleSelection(index, size int) error {
	return New(KindStaleSelection, fmt.Sprintf("selection %d is no longer valid (catalog has %d entries); refresh and try again", index, size), "", nil)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsFatal reports whether startup must stop. Only a corrupt store qualifies.
func IsFatal(err error) bool {
	return Is(err, KindStoreCorrupt)
}
