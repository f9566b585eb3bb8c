// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	xglog "github.com/ManuGH/deckcfg/internal/log"
	"golang.org/x/term"
)

// Terminal asks on a text stream. When the input is not an interactive
// terminal, or reading fails, the prompt's default is used.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal binds to stdin/stdout.
func NewTerminal() *Terminal {
	return NewTerminalFor(os.Stdin, os.Stdout)
}

// NewTerminalFor binds to in and out. Only a file that is a terminal counts
// as interactive.
func NewTerminalFor(in io.Reader, out io.Writer) *Terminal {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return NewTerminalIO(in, out, interactive)
}

// NewTerminalIO binds to arbitrary streams; interactive says whether in has
// a person behind it.
func NewTerminalIO(in io.Reader, out io.Writer, interactive bool) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Confirm implements Confirmer.
func (t *Terminal) Confirm(ctx context.Context, p Prompt) bool {
	logger := xglog.WithComponentFromContext(ctx, "prompt")
	if !t.interactive {
		logger.Info().Str("prompt", p.ID).Bool("answer", p.Default).Msg("non-interactive, using default answer")
		return p.Default
	}

	hint := "[y/N]"
	if p.Default {
		hint = "[Y/n]"
	}
	_, _ = fmt.Fprintf(t.out, "\n%s\n\n%s\n\n  y = %s\n  n = %s\n%s ", p.Title, p.Text, p.Accept, p.Reject, hint)

	for {
		if ctx.Err() != nil {
			return p.Default
		}
		line, err := t.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		case "":
			if err == nil {
				return p.Default
			}
		}
		if err != nil {
			logger.Warn().Err(err).Str("prompt", p.ID).Msg("prompt input closed, using default answer")
			return p.Default
		}
		_, _ = fmt.Fprintf(t.out, "Please answer y or n %s ", hint)
	}
}
