package bootproto

import (
	"encoding/binary"
	"fmt"

	"github.com/tamzrod/modfw/internal/wire"
)

// UUIDReply is the parsed payload of a CmdUUIDReply packet: a module's
// identity and the version of whatever it is currently running (app or
// bootloader, depending on when the probe was sent).
type UUIDReply struct {
	UUID    uint64
	Version uint16
}

// ParseUUIDReply decodes a CmdUUIDReply payload: a 6-byte uuid followed by
// a 2-byte version, both little-endian.
func ParseUUIDReply(p wire.Packet) (UUIDReply, error) {
	if p.Cmd != CmdUUIDReply {
		return UUIDReply{}, fmt.Errorf("bootproto: expected cmd %#x, got %#x", CmdUUIDReply, p.Cmd)
	}
	if len(p.Payload) != 8 {
		return UUIDReply{}, fmt.Errorf("bootproto: uuid reply payload must be 8 bytes, got %d", len(p.Payload))
	}

	var uuidBuf [8]byte
	copy(uuidBuf[:6], p.Payload[:6])
	uuid := binary.LittleEndian.Uint64(uuidBuf[:])
	version := binary.LittleEndian.Uint16(p.Payload[6:8])

	return UUIDReply{UUID: uuid, Version: version}, nil
}

// Warning is the parsed payload of a CmdWarning packet: the sender's
// identity plus a warning_type code. WarningReady signals the bootloader
// is ready to accept firmware data.
type Warning struct {
	UUID        uint64
	WarningType uint8
}

// ParseWarning decodes a CmdWarning payload: a 6-byte uuid followed by a
// 1-byte warning_type, with one trailing pad byte.
func ParseWarning(p wire.Packet) (Warning, error) {
	if p.Cmd != CmdWarning {
		return Warning{}, fmt.Errorf("bootproto: expected cmd %#x, got %#x", CmdWarning, p.Cmd)
	}
	if len(p.Payload) != 8 {
		return Warning{}, fmt.Errorf("bootproto: warning payload must be 8 bytes, got %d", len(p.Payload))
	}

	var uuidBuf [8]byte
	copy(uuidBuf[:6], p.Payload[:6])
	uuid := binary.LittleEndian.Uint64(uuidBuf[:])

	return Warning{UUID: uuid, WarningType: p.Payload[6]}, nil
}

// FirmwareCommandReply is the parsed payload of a CmdFirmwareCommandReply
// packet: a dummy echo field the bootloader doesn't use meaningfully, and
// the StreamState that reports whether the preceding erase/crc command
// succeeded.
type FirmwareCommandReply struct {
	Dummy       uint32
	StreamState StreamState
}

// ParseFirmwareCommandReply decodes a CmdFirmwareCommandReply payload: a
// 4-byte dummy field followed by a 1-byte stream_state.
func ParseFirmwareCommandReply(p wire.Packet) (FirmwareCommandReply, error) {
	if p.Cmd != CmdFirmwareCommandReply {
		return FirmwareCommandReply{}, fmt.Errorf("bootproto: expected cmd %#x, got %#x", CmdFirmwareCommandReply, p.Cmd)
	}
	if len(p.Payload) != 8 {
		return FirmwareCommandReply{}, fmt.Errorf("bootproto: firmware command reply payload must be 8 bytes, got %d", len(p.Payload))
	}

	dummy := binary.LittleEndian.Uint32(p.Payload[0:4])
	return FirmwareCommandReply{Dummy: dummy, StreamState: StreamState(p.Payload[4])}, nil
}
