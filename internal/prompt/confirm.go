package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:            os.Stdin,
		Out:           os.Stdout,
		IsInteractive: StdinIsInteractive,
	}
}

// StdinIsInteractive reports whether stdin is a character device.
func StdinIsInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Confirm asks a yes/no question. force answers yes without reading input.
func (c Confirmer) Confirm(question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if c.IsInteractive == nil || !c.IsInteractive() {
		return false, fmt.Errorf("non-interactive stdin: use -y to confirm")
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s (y/n): ", question)
	}
	response, err := readLine(c.In)
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// readLine reads up to and excluding the next newline one byte at a time, so
// nothing past the line is consumed from a shared reader.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			return sb.String(), err
		}
	}
}
