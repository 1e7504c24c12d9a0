package transport

import "errors"

var (
	errFrameTimeout = errors.New("transport: timed out scanning for closing brace")
	errFrameTooLong = errors.New("transport: frame exceeded maximum size")
)
