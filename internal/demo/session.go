package demo

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"h2o/internal/console"
	"h2o/internal/ui"
)

// Signal is what a checkpoint tells the step sequence to do next.
type Signal int

const (
	Continue Signal = iota
	Stop
)

func (s Signal) String() string {
	if s == Stop {
		return "stop"
	}
	return "continue"
}

// InitFunc initializes the backend a demo talks to.
type InitFunc func(ctx context.Context) error

// NopInit is the initializer used in testing mode.
func NopInit(context.Context) error { return nil }

// Step is one labeled block of demo work.
type Step func(ctx context.Context) error

// KeyReader reads one key at a time. *console.Keyboard implements it.
type KeyReader interface {
	ReadKey() (byte, error)
}

// hintEraser overwrites the "(press any key)" hint in place.
const hintEraser = "\r                     \r"

// Session is the per-run state handed to a sequence body.
type Session struct {
	w           io.Writer
	blocks      [][]Line
	echo        bool
	interactive bool
	keys        KeyReader
	init        InitFunc
	op          *operation

	next    int
	stopped bool
}

// Checkpoint marks the boundary before the next block. It echoes the block's
// display text when echo is on and waits for a key when interactive. Once it
// has returned Stop it keeps returning Stop.
func (s *Session) Checkpoint() Signal {
	if s.stopped {
		return Stop
	}
	index := s.next
	s.next++

	fmt.Fprintln(s.w)
	if s.echo && index < len(s.blocks) {
		for _, l := range s.blocks[index] {
			fmt.Fprintln(s.w, l.Render())
		}
	}

	if !s.interactive {
		return Continue
	}

	fmt.Fprint(s.w, "\n"+ui.HintStyle.Render("(press any key)"))
	key, err := s.keys.ReadKey()
	fmt.Fprint(s.w, hintEraser)
	if err != nil {
		slog.Debug("No key read at checkpoint, continuing.", "checkpoint", index, "err", err)
		return Continue
	}
	if isCancelKey(key) {
		s.stopped = true
		return Stop
	}
	return Continue
}

// Do runs steps in order with a checkpoint before each one. It returns nil
// as soon as a checkpoint says Stop, and the first step error unchanged.
func (s *Session) Do(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if s.Checkpoint() == Stop {
			return nil
		}
		if err := s.op.runStep(ctx, s.next-1, step); err != nil {
			return err
		}
	}
	return nil
}

// Init calls the run's backend initializer.
func (s *Session) Init(ctx context.Context) error {
	return s.init(ctx)
}

// Checkpoints returns how many checkpoints have run so far.
func (s *Session) Checkpoints() int {
	return s.next
}

// Stopped reports whether the user cancelled the run.
func (s *Session) Stopped() bool {
	return s.stopped
}

func isCancelKey(key byte) bool {
	return key == 'q' || key == 'Q' || key == console.KeyInterrupt
}
