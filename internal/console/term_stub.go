//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package console

func enterKeyMode(uintptr) (func() error, error) {
	return nil, ErrUnsupported
}
