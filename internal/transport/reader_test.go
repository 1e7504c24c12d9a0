package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func TestFrameReader_ExtractsOneObject(t *testing.T) {
	r := newFrameReader(bytes.NewReader([]byte(`garbage{"c":5,"s":0,"d":0,"b":""}trailing`)))
	got, err := r.readObject(zerolog.Nop())
	if err != nil {
		t.Fatalf("readObject: %v", err)
	}
	want := `{"c":5,"s":0,"d":0,"b":""}`
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// zeroThenReader yields n zero-length reads before delegating to r, to
// exercise the "empty read" retry path without a real time delay.
type zeroThenReader struct {
	zeros int
	r     io.Reader
}

func (z *zeroThenReader) Read(p []byte) (int, error) {
	if z.zeros > 0 {
		z.zeros--
		return 0, nil
	}
	return z.r.Read(p)
}

func TestFrameReader_ToleratesEmptyReads(t *testing.T) {
	inner := &zeroThenReader{zeros: 3, r: bytes.NewReader([]byte(`{"c":1,"s":0,"d":0,"b":""}`))}
	r := newFrameReader(inner)
	// Each empty read ends one readObject call with (nil, nil); the caller
	// (Transport.WaitForJSON) retries, and the frame comes through once the
	// empty reads are used up.
	for i := 0; i < 3; i++ {
		got, err := r.readObject(zerolog.Nop())
		if err != nil {
			t.Fatalf("readObject %d: %v", i, err)
		}
		if got != nil {
			t.Fatalf("readObject %d: expected nil frame on empty read, got %q", i, got)
		}
	}
	got, err := r.readObject(zerolog.Nop())
	if err != nil {
		t.Fatalf("readObject: %v", err)
	}
	if string(got) != `{"c":1,"s":0,"d":0,"b":""}` {
		t.Fatalf("unexpected object: %q", got)
	}
}

func TestFrameReader_NoDataReturnsNil(t *testing.T) {
	r := newFrameReader(bytes.NewReader(nil))
	got, err := r.readObject(zerolog.Nop())
	if err != nil {
		t.Fatalf("readObject: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil frame on empty stream, got %q", got)
	}
}

func TestFrameReader_PropagatesReadError(t *testing.T) {
	boom := errors.New("boom")
	r := newFrameReader(errReader{err: boom})
	_, err := r.readObject(zerolog.Nop())
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

type errReader struct{ err error }

func (e errReader) Read(p []byte) (int, error) { return 0, e.err }

func TestFrameReader_RejectsOversizedFrame(t *testing.T) {
	huge := append([]byte{'{'}, bytes.Repeat([]byte("x"), maxFrameBytes+10)...)
	r := newFrameReader(bytes.NewReader(huge))
	_, err := r.readObject(zerolog.Nop())
	if !errors.Is(err, errFrameTooLong) {
		t.Fatalf("expected errFrameTooLong, got %v", err)
	}
}
