package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isTerminal(int(f.Fd()))
}

// ask prints a prompt (interactive sessions only) and reads one trimmed line.
// If EOF occurs after some input was read, the partial line is returned.
func (a *App) ask(prompt string) (string, error) {
	if a.interactive {
		if _, err := fmt.Fprint(a.out, prompt+"\n> "); err != nil {
			return "", err
		}
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askOptional returns nil for an empty answer.
func (a *App) askOptional(prompt string) (*string, error) {
	s, err := a.ask(prompt)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

// askDate accepts YYYY-MM-DD or an empty answer.
func (a *App) askDate(prompt string) (*string, error) {
	s, err := a.askOptional(prompt + " (YYYY-MM-DD, empty to skip)")
	if err != nil || s == nil {
		return nil, err
	}
	if err := validDate(*s); err != nil {
		return nil, err
	}
	return s, nil
}

// askFloat accepts a number or an empty answer.
func (a *App) askFloat(prompt string) (*float64, error) {
	s, err := a.askOptional(prompt + " (empty to skip)")
	if err != nil || s == nil {
		return nil, err
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(*s, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", *s)
	}
	return &v, nil
}

func validDate(s string) error {
	if _, err := parseDate(s); err != nil {
		return fmt.Errorf("bad date %q, want %s", s, common.DateLayout)
	}
	return nil
}
