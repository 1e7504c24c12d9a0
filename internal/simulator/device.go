// Package simulator provides an in-process stand-in for a real module: a
// struct that implements io.ReadWriteCloser, decodes whatever a real
// driver would write to the wire, and queues the replies a real device
// would send back. It exists so internal/updater's end-to-end phases can
// be exercised without hardware, including injected failures such as a
// stuck erase or a flaky CRC verify.
package simulator

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/tamzrod/modfw/internal/bootproto"
	"github.com/tamzrod/modfw/internal/identity"
	"github.com/tamzrod/modfw/internal/transport"
	"github.com/tamzrod/modfw/internal/wire"
)

// Config selects one simulated module's identity and the failures it
// injects into the run.
type Config struct {
	UUID    uint64 // encodes type class + module id, see internal/identity
	Version uint16 // wire-packed app version reported by CmdUUIDReply

	SilentIdentify bool // never answers CmdRequestUUID
	SilentWarning  bool // never sends CmdWarning

	// FlakyCRCAddr, if non-zero, NAKs exactly the first crc verify at that
	// flash address and succeeds on the retry.
	FlakyCRCAddr uint32

	// StuckEraseAddr, if non-zero, NAKs every erase at that flash address.
	StuckEraseAddr uint32

	// InterleavedStatusAddr, if non-zero, sends a StreamReady frame before
	// the real completion frame for the first firmware command (erase or
	// crc) at that flash address, modeling a bootloader that reports
	// progress before it is done.
	InterleavedStatusAddr uint32
}

// Device implements io.ReadWriteCloser. One instance represents one
// module across its host's close/reopen cycle: Dial reconnects the same
// instance rather than resetting its state, matching real hardware that
// doesn't forget it's mid-update just because the host closed the port.
type Device struct {
	mu       sync.Mutex
	cfg      Config
	moduleID uint16
	outbox   []byte
	closed   bool

	warnedNotReady  bool
	crcSeenOnce     map[uint32]bool
	interleavedSent map[uint32]bool
	Rebooted        bool
}

// New constructs a Device ready to be dialed.
func New(cfg Config) *Device {
	return &Device{
		cfg:             cfg,
		moduleID:        identity.ModuleID(cfg.UUID),
		crcSeenOnce:     make(map[uint32]bool),
		interleavedSent: make(map[uint32]bool),
	}
}

// Dial returns a transport.Dialer that reconnects to d on every call,
// including after a Transport.Reopen following the bootloader handoff's
// close/reopen cycle.
func Dial(d *Device) transport.Dialer {
	return func(string) (io.ReadWriteCloser, error) {
		d.mu.Lock()
		d.closed = false
		d.mu.Unlock()
		return d, nil
	}
}

// Read drains the reply queue. It never blocks: an empty queue returns
// (0, nil), matching the non-blocking timeout-read contract
// internal/transport is built against.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.outbox) == 0 {
		return 0, nil
	}
	n := copy(p, d.outbox)
	d.outbox = d.outbox[n:]
	return n, nil
}

// Write decodes one wire frame and dispatches it to the matching handler.
// A frame not addressed to this device (unicast to a different module id)
// is dropped, same as real hardware sharing a bus.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, io.ErrClosedPipe
	}

	pkt, err := wire.Decode(p)
	if err != nil {
		return len(p), nil
	}
	if pkt.DID != wire.BroadcastID && pkt.DID != d.moduleID {
		return len(p), nil
	}

	switch pkt.Cmd {
	case bootproto.CmdRequestUUID:
		d.onIdentify()
	case bootproto.CmdSetNetworkModuleState:
		d.onHandoff(pkt)
	case bootproto.CmdSetModuleState:
		d.onSetModuleState(pkt)
	case bootproto.CmdFirmwareCommand:
		d.onFirmwareCommand(pkt)
	case bootproto.CmdFirmwareData:
		// Accepted silently; the simulator doesn't model flash contents,
		// only the erase/crc handshake around them.
	}
	return len(p), nil
}

// Close marks the connection closed. Dial clears this on the next
// (re)connect, so it does not end the device's simulated life.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Device) onIdentify() {
	if d.cfg.SilentIdentify {
		return
	}
	payload := make([]byte, 8)
	putUUID48(payload[:6], d.cfg.UUID)
	binary.LittleEndian.PutUint16(payload[6:8], d.cfg.Version)
	d.enqueue(bootproto.CmdUUIDReply, payload)
}

// onHandoff answers the app->bootloader handoff by immediately raising a
// not-ready warning, forcing the caller through the ack round-trip
// warningWait exercises before the bootloader declares itself ready.
func (d *Device) onHandoff(pkt wire.Packet) {
	if len(pkt.Payload) < 1 || pkt.Payload[0] != bootproto.StateUpdateFirmware {
		return
	}
	if d.cfg.SilentWarning {
		return
	}
	d.sendWarning(1)
	d.warnedNotReady = true
}

func (d *Device) onSetModuleState(pkt wire.Packet) {
	if len(pkt.Payload) < 1 {
		return
	}
	switch pkt.Payload[0] {
	case bootproto.StateUpdateFirmwareReady:
		if d.warnedNotReady && !d.cfg.SilentWarning {
			d.sendWarning(bootproto.WarningReady)
		}
	case bootproto.StateReboot:
		d.Rebooted = true
	}
}

func (d *Device) sendWarning(warningType uint8) {
	payload := make([]byte, 8)
	putUUID48(payload[:6], d.cfg.UUID)
	payload[6] = warningType
	d.enqueue(bootproto.CmdWarning, payload)
}

func (d *Device) onFirmwareCommand(pkt wire.Packet) {
	if len(pkt.Payload) != 8 {
		return
	}
	sub := bootproto.FirmwareSubCommand(pkt.SID >> 8)
	addr := binary.LittleEndian.Uint32(pkt.Payload[4:8])

	if d.cfg.InterleavedStatusAddr != 0 && addr == d.cfg.InterleavedStatusAddr && !d.interleavedSent[addr] {
		d.interleavedSent[addr] = true
		reply := make([]byte, 8)
		reply[4] = uint8(bootproto.StreamReady)
		d.enqueue(bootproto.CmdFirmwareCommandReply, reply)
	}

	var state bootproto.StreamState
	switch sub {
	case bootproto.SubCommandErase:
		if d.cfg.StuckEraseAddr != 0 && addr == d.cfg.StuckEraseAddr {
			state = bootproto.StreamEraseError
		} else {
			state = bootproto.StreamEraseComplete
		}
	case bootproto.SubCommandCRC:
		if d.cfg.FlakyCRCAddr != 0 && addr == d.cfg.FlakyCRCAddr && !d.crcSeenOnce[addr] {
			d.crcSeenOnce[addr] = true
			state = bootproto.StreamCRCError
		} else {
			state = bootproto.StreamCRCComplete
		}
	default:
		return
	}

	reply := make([]byte, 8)
	reply[4] = uint8(state)
	d.enqueue(bootproto.CmdFirmwareCommandReply, reply)
}

// enqueue appends the JSON encoding of one reply packet to the outbox.
// The caller already holds d.mu.
func (d *Device) enqueue(cmd uint8, payload []byte) {
	pkt, err := wire.New(cmd, 0, d.moduleID, payload)
	if err != nil {
		return
	}
	raw, err := wire.Encode(pkt)
	if err != nil {
		return
	}
	d.outbox = append(d.outbox, raw...)
}

// putUUID48 writes the low 48 bits of uuid into dst, little-endian,
// matching the 6-byte uuid field every module->host packet carries.
func putUUID48(dst []byte, uuid uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uuid)
	copy(dst, buf[:6])
}
