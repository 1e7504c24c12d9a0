package bootproto

import (
	"testing"

	"github.com/tamzrod/modfw/internal/wire"
)

func TestRequestUUID_Shape(t *testing.T) {
	p, err := RequestUUID()
	if err != nil {
		t.Fatalf("RequestUUID: %v", err)
	}
	if p.Cmd != CmdRequestUUID {
		t.Fatalf("cmd = %#x, want %#x", p.Cmd, CmdRequestUUID)
	}
	if p.SID != wire.BroadcastID || p.DID != wire.BroadcastID {
		t.Fatalf("sid/did = %#x/%#x, want both %#x", p.SID, p.DID, wire.BroadcastID)
	}
	if len(p.Payload) != 2 || p.Payload[0] != 0xFF || p.Payload[1] != 0xFF {
		t.Fatalf("unexpected payload %v", p.Payload)
	}
}

func TestSetNetworkModuleState_SendsZeroSID(t *testing.T) {
	p, err := SetNetworkModuleState(0x101, StateUpdateFirmware)
	if err != nil {
		t.Fatalf("SetNetworkModuleState: %v", err)
	}
	if p.SID != 0 {
		t.Fatalf("sid = %#x, want 0", p.SID)
	}
	if p.DID != 0x101 {
		t.Fatalf("did = %#x, want 0x101", p.DID)
	}
}

func TestSetModuleState_SendsZeroSID(t *testing.T) {
	p, err := SetModuleState(0x101, StateReboot)
	if err != nil {
		t.Fatalf("SetModuleState: %v", err)
	}
	if p.SID != 0 {
		t.Fatalf("sid = %#x, want 0", p.SID)
	}
	if p.DID != 0x101 {
		t.Fatalf("did = %#x, want 0x101", p.DID)
	}
}

func TestUUIDReply_RoundTrip(t *testing.T) {
	const uuid = uint64(0x123456789ABC) // fits in 6 bytes
	var version = uint16(0x2A07)        // major=1, minor=10, patch=7

	var payload [8]byte
	for i := 0; i < 6; i++ {
		payload[i] = byte(uuid >> (8 * i))
	}
	payload[6] = byte(version)
	payload[7] = byte(version >> 8)

	p, err := wire.New(CmdUUIDReply, 0, 0x101, payload[:])
	if err != nil {
		t.Fatalf("wire.New: %v", err)
	}

	got, err := ParseUUIDReply(p)
	if err != nil {
		t.Fatalf("ParseUUIDReply: %v", err)
	}
	if got.UUID != uuid {
		t.Fatalf("uuid = %#x, want %#x", got.UUID, uuid)
	}
	if got.Version != version {
		t.Fatalf("version = %#x, want %#x", got.Version, version)
	}
}

func TestParseUUIDReply_RejectsWrongCmd(t *testing.T) {
	p, err := wire.New(CmdWarning, 0, 0, make([]byte, 8))
	if err != nil {
		t.Fatalf("wire.New: %v", err)
	}
	if _, err := ParseUUIDReply(p); err == nil {
		t.Fatal("expected error for mismatched cmd")
	}
}

func TestWarning_RoundTrip(t *testing.T) {
	const uuid = uint64(0xAABBCCDDEEFF)
	var payload [8]byte
	for i := 0; i < 6; i++ {
		payload[i] = byte(uuid >> (8 * i))
	}
	payload[6] = WarningReady

	p, err := wire.New(CmdWarning, 0, 0x202, payload[:])
	if err != nil {
		t.Fatalf("wire.New: %v", err)
	}

	got, err := ParseWarning(p)
	if err != nil {
		t.Fatalf("ParseWarning: %v", err)
	}
	if got.UUID != uuid {
		t.Fatalf("uuid = %#x, want %#x", got.UUID, uuid)
	}
	if got.WarningType != WarningReady {
		t.Fatalf("warning_type = %d, want %d", got.WarningType, WarningReady)
	}
}

func TestFirmwareCommandReply_RoundTrip(t *testing.T) {
	payload := []byte{0, 0, 0, 0, byte(StreamEraseComplete), 0, 0, 0}
	p, err := wire.New(CmdFirmwareCommandReply, encodeFirmwareCommandSID(SubCommandErase), 0x303, payload)
	if err != nil {
		t.Fatalf("wire.New: %v", err)
	}

	got, err := ParseFirmwareCommandReply(p)
	if err != nil {
		t.Fatalf("ParseFirmwareCommandReply: %v", err)
	}
	if got.StreamState != StreamEraseComplete {
		t.Fatalf("stream_state = %d, want %d", got.StreamState, StreamEraseComplete)
	}
}

func TestFirmwareData_RejectsShortChunk(t *testing.T) {
	if _, err := FirmwareData(0x1, 0, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short chunk")
	}
}

func TestFirmwareCommand_EncodesSubCommandIntoSID(t *testing.T) {
	p, err := FirmwareCommand(0x1, SubCommandCRC, 0xDEADBEEF, 0x08004000)
	if err != nil {
		t.Fatalf("FirmwareCommand: %v", err)
	}
	if p.SID != encodeFirmwareCommandSID(SubCommandCRC) {
		t.Fatalf("sid = %#x, want %#x", p.SID, encodeFirmwareCommandSID(SubCommandCRC))
	}
}
