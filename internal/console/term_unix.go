//go:build linux || darwin || freebsd || netbsd || openbsd

package console

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func enterKeyMode(fd uintptr) (func() error, error) {
	old, err := unix.IoctlGetTermios(int(fd), ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("get terminal mode: %w", err)
	}

	next := *old
	// ISIG is cleared so Ctrl+C arrives as a byte instead of killing the
	// process with the terminal still in single-key mode.
	next.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	next.Cc[unix.VMIN] = 1
	next.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(int(fd), ioctlSetTermios, &next); err != nil {
		return nil, fmt.Errorf("set terminal mode: %w", err)
	}

	return func() error {
		// Flush on restore so keys typed during the pause are not replayed.
		if err := unix.IoctlSetTermios(int(fd), ioctlFlushTermios, old); err != nil {
			return fmt.Errorf("restore terminal mode: %w", err)
		}
		return nil
	}, nil
}
