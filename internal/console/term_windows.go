//go:build windows

package console

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func enterKeyMode(fd uintptr) (func() error, error) {
	h := windows.Handle(fd)

	var old uint32
	if err := windows.GetConsoleMode(h, &old); err != nil {
		return nil, fmt.Errorf("get console mode: %w", err)
	}

	next := old &^ (windows.ENABLE_LINE_INPUT | windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT)
	if err := windows.SetConsoleMode(h, next); err != nil {
		return nil, fmt.Errorf("set console mode: %w", err)
	}

	return func() error {
		if err := windows.SetConsoleMode(h, old); err != nil {
			return fmt.Errorf("restore console mode: %w", err)
		}
		return nil
	}, nil
}
