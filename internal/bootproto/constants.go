// Package bootproto implements the bootloader command/response exchanges:
// uuid probe, mode switch, warning wait, erase-page, write-data, crc-page.
// It builds and parses wire.Packet payloads; it does not touch the
// transport or the JSON codec directly.
package bootproto

// Opcodes exchanged with a module's bootloader.
const (
	CmdRequestUUID           uint8 = 0x28 // -> module: request identity
	CmdUUIDReply             uint8 = 0x05 // module ->: uuid + version
	CmdWarning               uint8 = 0x0A // module ->: warning / bootloader notice
	CmdSetModuleState        uint8 = 0x09 // -> module: set module state
	CmdSetNetworkModuleState uint8 = 0xA4 // -> module: app->bootloader handoff
	CmdFirmwareData          uint8 = 0x0B // -> module: firmware data chunk
	CmdFirmwareCommand       uint8 = 0x0D // -> module: erase or crc command
	CmdFirmwareCommandReply  uint8 = 0x0C // module ->: erase/crc response
)

// Module states (subset the updater uses).
const (
	StateUpdateFirmware      uint8 = 1
	StateUpdateFirmwareReady uint8 = 2
	StateReboot              uint8 = 3
)

// PNP state. Always Off during a firmware update.
const PNPOff uint8 = 0

// StreamState values carried in a CmdFirmwareCommandReply payload.
type StreamState uint8

const (
	StreamNoError       StreamState = 0
	StreamReady         StreamState = 1
	StreamWriteFail     StreamState = 2
	StreamVerifyFail    StreamState = 3
	StreamCRCError      StreamState = 4
	StreamCRCComplete   StreamState = 5
	StreamEraseError    StreamState = 6
	StreamEraseComplete StreamState = 7
)

// FirmwareSubCommand selects which operation a CmdFirmwareCommand packet
// requests. It is folded into the packet's sid field (see EncodeFirmwareCommandSID).
type FirmwareSubCommand uint8

const (
	SubCommandCRC   FirmwareSubCommand = 1
	SubCommandErase FirmwareSubCommand = 2
)

// WarningReady is the warning_type value that signals the bootloader is
// ready to accept firmware data.
const WarningReady uint8 = 2
