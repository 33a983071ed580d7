// Package demo runs scripted, step-by-step demos on a terminal.
//
// A Sequence is a body that calls Session.Checkpoint (directly or through
// Session.Do) before each block of work. At every checkpoint the runner can
// echo the block's display text and wait for a keypress; pressing q stops the
// demo. What is echoed comes from Sequence.Blocks, an explicit table kept
// next to the code it describes.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"h2o/internal/console"
	"h2o/internal/ui"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidSequence is returned before any output when a sequence has no body.
var ErrInvalidSequence = errors.New("demo sequence has no body")

const (
	footerDone    = "---- End of Demo ----"
	footerAborted = "---- Demo aborted ----"
)

// Sequence is one demo.
type Sequence struct {
	Name string
	// Description is printed as the header.
	Description string
	// Blocks holds the display text for each checkpoint, by index.
	Blocks []string
	// Init is the real backend initializer, reachable via Session.Init.
	Init InitFunc
	Body func(ctx context.Context, s *Session) error
}

// Result is how a run ended.
type Result int

const (
	// Unfinished means the body returned an error.
	Unfinished Result = iota
	Completed
	Aborted
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return "unfinished"
	}
}

// Options control a single run.
type Options struct {
	// Interactive pauses for a keypress at every checkpoint.
	Interactive bool
	// Echo prints each block's display text before it runs.
	Echo bool
	// Testing replaces the initializer with NopInit for this run.
	Testing bool
	// Init overrides Sequence.Init.
	Init InitFunc
	// Keys defaults to the console on stdin.
	Keys KeyReader
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// Run prints the header, runs the body and prints the footer to w.
// Errors returned by the body are returned unchanged and no footer is
// printed. A user cancellation is not an error: it yields Aborted.
func Run(ctx context.Context, w io.Writer, seq Sequence, opts Options) (Result, error) {
	if seq.Body == nil {
		return Unfinished, ErrInvalidSequence
	}
	if w == nil {
		w = os.Stdout
	}

	s := newSession(w, seq, opts)

	if header := FormatHeader(seq.Description); len(header) > 0 {
		fmt.Fprintln(w)
		for _, line := range header {
			fmt.Fprintln(w, ui.HeaderStyle.Render(line))
		}
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	op := startOperation(ctx, tracer, seq)
	s.op = op

	if err := seq.Body(op.Context(), s); err != nil {
		op.end(Unfinished, err)
		return Unfinished, err
	}

	result := Completed
	if s.stopped {
		result = Aborted
		fmt.Fprintln(w, "\n"+ui.AbortStyle.Render(footerAborted))
	} else {
		fmt.Fprintln(w, "\n"+ui.HeaderStyle.Render(footerDone))
	}
	fmt.Fprintln(w)

	op.end(result, nil)
	return result, nil
}

func newSession(w io.Writer, seq Sequence, opts Options) *Session {
	initFn := seq.Init
	if opts.Init != nil {
		initFn = opts.Init
	}
	if opts.Testing || initFn == nil {
		initFn = NopInit
	}

	s := &Session{
		w:           w,
		echo:        opts.Echo,
		interactive: opts.Interactive,
		keys:        opts.Keys,
		init:        initFn,
	}
	if s.interactive && s.keys == nil {
		s.keys = console.Stdin()
	}
	if s.echo {
		s.blocks = make([][]Line, len(seq.Blocks))
		for i, b := range seq.Blocks {
			s.blocks[i] = formatBlock(b)
		}
	}
	return s
}
