package crc

import "errors"

var errShortChunk = errors.New("crc: data length must be a multiple of 8 bytes")
