// Package console reads single keypresses from a terminal.
//
// The terminal is switched into a non-canonical, non-echoing mode for the
// duration of exactly one read and restored before ReadKey returns, on every
// exit path.
package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrUnsupported is returned by the mode switch on platforms without a
// terminal implementation. ReadKey still reads, in whatever mode the
// terminal is already in.
var ErrUnsupported = errors.New("single-key terminal mode not supported on this platform")

// KeyInterrupt is the byte produced by Ctrl+C while signal generation is
// disabled for the read.
const KeyInterrupt byte = 0x03

// modeFunc switches the terminal into single-key mode and returns a function
// that restores the previous mode.
type modeFunc func() (restore func() error, err error)

// Keyboard reads one key at a time from a terminal input.
type Keyboard struct {
	in   io.Reader
	mode modeFunc
}

// NewKeyboard returns a Keyboard reading from f. When f is a terminal the
// platform console API is used to disable line buffering and echo.
func NewKeyboard(f *os.File) *Keyboard {
	return &Keyboard{
		in: f,
		mode: func() (func() error, error) {
			return enterKeyMode(f.Fd())
		},
	}
}

// Stdin returns a Keyboard reading from standard input.
func Stdin() *Keyboard {
	return NewKeyboard(os.Stdin)
}

// ReadKey blocks until one byte of input arrives and returns it. There is no
// timeout. The previous terminal mode is restored even when the read fails.
func (k *Keyboard) ReadKey() (byte, error) {
	restore, err := k.mode()
	if err != nil {
		slog.Debug("Reading key without changing terminal mode.", "err", err)
	} else {
		defer func() {
			if err := restore(); err != nil {
				slog.Debug("Restore terminal mode failed.", "err", err)
			}
		}()
	}

	var buf [1]byte
	n, err := k.in.Read(buf[:])
	if n == 1 {
		return buf[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, fmt.Errorf("read key: %w", err)
}
