// ABOUTME: Terminal activation and teardown
// ABOUTME: Puts the terminal in raw mode for key input and restores it afterwards
package ui

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// Terminal is the interactive player display on a real terminal
type Terminal struct {
	*Screen

	in       *os.File
	out      *os.File
	oldState *term.State
}

// Activate switches in to raw mode so keys arrive unbuffered and
// unechoed, and hides the cursor on out. When in is not a terminal the
// mode is left alone.
func Activate(in, out *os.File) (*Terminal, error) {
	t := &Terminal{
		Screen: NewScreen(out),
		in:     in,
		out:    out,
	}

	if term.IsTerminal(int(in.Fd())) {
		state, err := term.MakeRaw(int(in.Fd()))
		if err != nil {
			return nil, fmt.Errorf("failed to enable raw mode: %w", err)
		}
		t.oldState = state
	}

	t.UpdateSize()
	t.Screen.out.WriteString(hideCursor)
	if err := t.Flush(); err != nil {
		if t.oldState != nil {
			term.Restore(int(in.Fd()), t.oldState)
		}
		return nil, fmt.Errorf("failed to write to terminal: %w", err)
	}
	return t, nil
}

// UpdateSize re-reads the terminal dimensions, falling back to 80x24
func (t *Terminal) UpdateSize() {
	width, height, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		log.Debugf("Terminal size unavailable, using %dx%d: %v", DefaultWidth, DefaultHeight, err)
		width, height = DefaultWidth, DefaultHeight
	}
	t.SetSize(width, height)
}

// Deactivate clears the screen, shows the cursor and restores the
// previous terminal mode
func (t *Terminal) Deactivate() error {
	t.ResetScreen()
	t.Screen.out.WriteString(showCursor)
	flushErr := t.Flush()

	if t.oldState != nil {
		if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		t.oldState = nil
	}
	return flushErr
}
