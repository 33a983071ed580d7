//go:build darwin || freebsd || netbsd || openbsd

package console

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios   = unix.TIOCGETA
	ioctlSetTermios   = unix.TIOCSETA
	ioctlFlushTermios = unix.TIOCSETAF
)
