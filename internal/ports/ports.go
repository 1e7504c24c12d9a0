// Package ports discovers the serial ports a module might be attached to.
package ports

import "path/filepath"

// Enumerator discovers connected module ports as opaque string handles
// (device paths), suitable for passing to a transport.Dialer.
type Enumerator interface {
	Discover() ([]string, error)
}

// Glob is a best-effort default enumerator: it lists every
// /dev/ttyACM* and /dev/ttyUSB* device node. It is not meant to be a
// production port enumerator on its own; callers on other platforms or
// with stricter matching needs should supply their own Enumerator.
type Glob struct{}

func (Glob) Discover() ([]string, error) {
	var found []string
	for _, pattern := range []string{"/dev/ttyACM*", "/dev/ttyUSB*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}
	return found, nil
}
