package console

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeTerminal struct {
	raw      bool
	enters   int
	restores int
	enterErr error
}

func (f *fakeTerminal) mode() (func() error, error) {
	if f.enterErr != nil {
		return nil, f.enterErr
	}
	f.enters++
	f.raw = true
	return func() error {
		f.restores++
		f.raw = false
		return nil
	}, nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

type rawCheckingReader struct {
	term   *fakeTerminal
	sawRaw bool
}

func (r *rawCheckingReader) Read(p []byte) (int, error) {
	r.sawRaw = r.term.raw
	p[0] = 'x'
	return 1, nil
}

func TestReadKeyReturnsOneByte(t *testing.T) {
	t.Parallel()

	term := &fakeTerminal{}
	k := &Keyboard{in: strings.NewReader("qrest"), mode: term.mode}

	key, err := k.ReadKey()
	if err != nil {
		t.Fatalf("ReadKey() error = %v", err)
	}
	if key != 'q' {
		t.Fatalf("ReadKey() = %q, want %q", key, 'q')
	}
	if term.enters != 1 || term.restores != 1 {
		t.Fatalf("enters/restores = %d/%d, want 1/1", term.enters, term.restores)
	}
	if term.raw {
		t.Fatal("terminal left in single-key mode")
	}
}

func TestReadKeyReadsInsideKeyMode(t *testing.T) {
	t.Parallel()

	term := &fakeTerminal{}
	r := &rawCheckingReader{term: term}
	k := &Keyboard{in: r, mode: term.mode}

	if _, err := k.ReadKey(); err != nil {
		t.Fatalf("ReadKey() error = %v", err)
	}
	if !r.sawRaw {
		t.Fatal("read happened outside single-key mode")
	}
}

func TestReadKeyRestoresModeOnReadFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   io.Reader
		want error
	}{
		{name: "eof", in: strings.NewReader(""), want: io.EOF},
		{name: "io error", in: failingReader{err: errors.New("device gone")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			term := &fakeTerminal{}
			k := &Keyboard{in: tc.in, mode: term.mode}

			_, err := k.ReadKey()
			if err == nil {
				t.Fatal("ReadKey() error = nil, want error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("ReadKey() error = %v, want %v", err, tc.want)
			}
			if term.restores != 1 || term.raw {
				t.Fatalf("restores = %d raw = %v, want 1 false", term.restores, term.raw)
			}
		})
	}
}

func TestReadKeyWithoutTerminal(t *testing.T) {
	t.Parallel()

	term := &fakeTerminal{enterErr: ErrUnsupported}
	k := &Keyboard{in: strings.NewReader("y"), mode: term.mode}

	key, err := k.ReadKey()
	if err != nil {
		t.Fatalf("ReadKey() error = %v", err)
	}
	if key != 'y' {
		t.Fatalf("ReadKey() = %q, want %q", key, 'y')
	}
	if term.restores != 0 {
		t.Fatalf("restores = %d, want 0", term.restores)
	}
}

func TestReadKeyZeroByteReadWithoutError(t *testing.T) {
	t.Parallel()

	term := &fakeTerminal{}
	k := &Keyboard{in: failingReader{}, mode: term.mode}

	if _, err := k.ReadKey(); !errors.Is(err, io.ErrNoProgress) {
		t.Fatalf("ReadKey() error = %v, want %v", err, io.ErrNoProgress)
	}
	if term.raw {
		t.Fatal("terminal left in single-key mode")
	}
}
