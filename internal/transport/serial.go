// Package transport opens the USB-serial link to a module and provides the
// delimiter-based JSON framing the bootloader protocol is built on top of.
package transport

import (
	"io"
	"time"

	"github.com/goburrow/serial"
	"github.com/rs/zerolog"
)

// BaudRate is the fixed link speed the bootloader protocol runs at.
const BaudRate = 921600

// ReadTimeout is the per-read timeout the link is opened with. A read that
// sees nothing within this window returns zero bytes, not an error.
const ReadTimeout = 100 * time.Millisecond

// Dialer opens a connection to a named port. The default dialer talks to a
// real USB-serial device via goburrow/serial; tests substitute a dialer that
// talks to an in-process simulator instead (see internal/simulator).
type Dialer func(port string) (io.ReadWriteCloser, error)

// DefaultDialer opens the named port at BaudRate, 8N1, with ReadTimeout.
// Writes are non-blocking on the underlying port.
func DefaultDialer() Dialer {
	return func(port string) (io.ReadWriteCloser, error) {
		return serial.Open(&serial.Config{
			Address:  port,
			BaudRate: BaudRate,
			DataBits: 8,
			StopBits: 1,
			Parity:   "N",
			Timeout:  ReadTimeout,
		})
	}
}

// Transport owns the serial connection to exactly one module. It is not
// safe for concurrent use: each updater worker owns its own Transport
// exclusively.
type Transport struct {
	port string
	dial Dialer
	conn io.ReadWriteCloser
	buf  *frameReader
	log  zerolog.Logger
}

// Open dials port and wraps the resulting connection with a framing reader.
func Open(port string, dial Dialer, log zerolog.Logger) (*Transport, error) {
	conn, err := dial(port)
	if err != nil {
		return nil, err
	}
	return &Transport{
		port: port,
		dial: dial,
		conn: conn,
		buf:  newFrameReader(conn),
		log:  log,
	}, nil
}

// Port returns the port name the Transport was opened on, preserved across
// Close/Reopen cycles.
func (t *Transport) Port() string { return t.port }

// Close releases the underlying connection. Safe to call more than once.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.buf = nil
	return err
}

// Reopen dials t.port again, re-establishing the connection under the same
// port name. Used by the bootloader handoff, which closes the port,
// sleeps, then reopens it. The sleeps are the caller's responsibility,
// not the transport's.
func (t *Transport) Reopen() error {
	conn, err := t.dial(t.port)
	if err != nil {
		return err
	}
	t.conn = conn
	t.buf = newFrameReader(conn)
	return nil
}

// Write sends raw bytes to the module. Errors propagate; the write itself
// never blocks on a response.
func (t *Transport) Write(p []byte) (int, error) {
	if t.conn == nil {
		return 0, io.ErrClosedPipe
	}
	return t.conn.Write(p)
}

// ReadJSON makes one attempt to read a complete `{...}` JSON object from the
// link. It returns (nil, nil) if nothing is available right now, whether
// from an empty read or a closed port.
func (t *Transport) ReadJSON() ([]byte, error) {
	if t.conn == nil || t.buf == nil {
		return nil, nil
	}
	return t.buf.readObject(t.log)
}

// WaitForJSON retries ReadJSON until it returns a non-empty frame or timeout
// elapses, in which case it returns (nil, nil): a timeout is not an error,
// it is the caller's signal to move on.
func (t *Transport) WaitForJSON(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		raw, err := t.ReadJSON()
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			return raw, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		time.Sleep(time.Millisecond)
	}
}
