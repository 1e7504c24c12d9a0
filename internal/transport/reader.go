package transport

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// frameScanTimeout bounds how long readObject will wait, once it has seen a
// '{', for the matching '}'. The protocol never nests braces inside the
// payload encoding, so a frame that doesn't close within
// this window is treated as malformed rather than awaited forever.
const frameScanTimeout = 2 * time.Second

// frameReader extracts one `{...}` JSON object at a time from a byte
// stream. It is deliberately naive, with no brace-depth tracking, because
// the wire format guarantees the payload encoding never contains a
// literal brace. Defensive bound checks exist so malformed input degrades
// to an error instead of an unbounded read.
type frameReader struct {
	r io.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: r}
}

// readObject returns the bytes of one JSON object, starting at the next
// '{' it finds and ending at the matching '}'. It returns (nil, nil) if the
// stream produced no bytes at all (nothing to read yet, or the port is
// closed) on the very first byte, mirroring read_json's "return nothing on
// empty read" contract.
func (f *frameReader) readObject(log zerolog.Logger) ([]byte, error) {
	var one [1]byte

	// Find the opening brace.
	for {
		n, err := f.r.Read(one[:])
		if n == 0 && (err == nil || err == io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if one[0] == '{' {
			break
		}
	}

	buf := []byte{'{'}
	deadline := time.Now().Add(frameScanTimeout)

	for {
		n, err := f.r.Read(one[:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			if time.Now().After(deadline) {
				log.Debug().Str("partial", string(buf)).Msg("transport: frame scan timed out before closing brace")
				return nil, errFrameTimeout
			}
			continue
		}
		buf = append(buf, one[0])
		if one[0] == '}' {
			return buf, nil
		}
		if len(buf) > maxFrameBytes {
			log.Debug().Msg("transport: frame exceeded max size without closing brace")
			return nil, errFrameTooLong
		}
	}
}

// maxFrameBytes caps how large a single frame's raw text may grow before
// it is considered malformed. The largest real frame is well under 200
// bytes (an 8-byte payload base64-encoded plus JSON overhead); this is a
// generous multiple of that.
const maxFrameBytes = 4096
