package bootproto

import (
	"encoding/binary"
	"fmt"

	"github.com/tamzrod/modfw/internal/wire"
)

// encodeFirmwareCommandSID folds a sub-command into the sid field of a
// CmdFirmwareCommand packet: the sub-command occupies the high byte, a
// fixed sequence marker of 1 the low byte.
func encodeFirmwareCommandSID(sub FirmwareSubCommand) uint16 {
	return uint16(sub)<<8 | 1
}

// RequestUUID builds the identity probe broadcast to every module on the
// bus. Its sid and did are both the broadcast id; the payload is a fixed
// two-byte marker rather than any per-module field.
func RequestUUID() (wire.Packet, error) {
	return wire.New(CmdRequestUUID, wire.BroadcastID, wire.BroadcastID, []byte{0xFF, 0xFF})
}

// SetNetworkModuleState hands a running application off into its
// bootloader. did addresses the target module; sid is sent as 0, unlike
// the probe exchange's broadcast sid, since this command targets one
// module rather than every module on the bus.
func SetNetworkModuleState(did uint16, state uint8) (wire.Packet, error) {
	return wire.New(CmdSetNetworkModuleState, 0, did, []byte{state, PNPOff})
}

// SetModuleState commands a module already in its bootloader (e.g. into
// StateReboot once the update completes). sid is sent as 0, same as
// SetNetworkModuleState.
func SetModuleState(did uint16, state uint8) (wire.Packet, error) {
	return wire.New(CmdSetModuleState, 0, did, []byte{state, PNPOff})
}

// FirmwareData builds one firmware-chunk packet. chunk must be exactly
// wire.MaxPayloadLen bytes; seq is the bootloader's running sequence
// counter for this page, threaded through sid so replies can be matched to
// the chunk that produced them.
func FirmwareData(did uint16, seq uint16, chunk []byte) (wire.Packet, error) {
	if len(chunk) != wire.MaxPayloadLen {
		return wire.Packet{}, fmt.Errorf("bootproto: firmware chunk must be %d bytes, got %d", wire.MaxPayloadLen, len(chunk))
	}
	return wire.New(CmdFirmwareData, seq, did, chunk)
}

// FirmwareCommand builds an erase or crc request against pageAddr, with
// crc carrying the page's expected CRC-32 for SubCommandCRC (ignored by
// the bootloader for SubCommandErase, which instead reuses that field to
// carry a fixed page count).
func FirmwareCommand(did uint16, sub FirmwareSubCommand, crc uint32, pageAddr uint32) (wire.Packet, error) {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], crc)
	binary.LittleEndian.PutUint32(payload[4:8], pageAddr)
	return wire.New(CmdFirmwareCommand, encodeFirmwareCommandSID(sub), did, payload)
}
