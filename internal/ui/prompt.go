package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"h2o/internal/console"
)

// ErrCancelled is returned when the user cancels a prompt with Ctrl+C or Esc.
var ErrCancelled = errors.New("cancelled")

// ErrNoInteraction is returned when a prompt is needed but keys cannot be read.
type ErrNoInteraction struct {
	Hint string
}

func (e *ErrNoInteraction) Error() string {
	if e.Hint == "" {
		return "no interactive terminal"
	}
	return "no interactive terminal (" + e.Hint + ")"
}

// KeyReader reads one key at a time.
type KeyReader interface {
	ReadKey() (byte, error)
}

const keyEscape byte = 0x1b

// Confirm asks the user a yes/no question on stderr and returns the answer.
// bypassHint describes how to skip the prompt in non-interactive mode (e.g.
// "use --yes to skip").
func Confirm(question string, bypassHint string) (bool, error) {
	if !CanReadKeys() {
		return false, fmt.Errorf("confirmation required: %w", &ErrNoInteraction{Hint: bypassHint})
	}
	return confirm(os.Stderr, console.Stdin(), question)
}

func confirm(w io.Writer, keys KeyReader, question string) (bool, error) {
	fmt.Fprint(w, AccentStyle.Render("?")+" "+question+" "+MutedStyle.Render("[y/N]")+" ")
	key, err := keys.ReadKey()
	fmt.Fprintln(w)
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}

	switch key {
	case 'y', 'Y':
		return true, nil
	case console.KeyInterrupt, keyEscape:
		return false, ErrCancelled
	default:
		return false, nil
	}
}
