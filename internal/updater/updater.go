// Package updater implements the per-module firmware update state machine:
// the erase->write->crc page loop, the bootloader handshake that precedes
// it, and the end-flash trailer and reboot that follow it.
package updater

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modfw/internal/firmware"
	"github.com/tamzrod/modfw/internal/identity"
	"github.com/tamzrod/modfw/internal/transport"
	"github.com/tamzrod/modfw/internal/wire"
)

// Updater drives one module, attached at Config.Port, through the entire
// identify -> handoff -> warning-wait -> page-loop -> trailer -> reboot
// sequence. It owns its Transport exclusively; no two Updaters ever share
// one.
type Updater struct {
	cfg      Config
	log      zerolog.Logger
	timings  Timings
	tr       *transport.Transport
	State    State
	kind     identity.Kind
	uuid     uint64
	moduleID uint16
	image    *firmware.Image
	version  identity.Version
}

// New opens the port and returns an Updater ready to Run. A construction
// failure (port unreachable) is the caller's signal to skip this port
// entirely.
func New(cfg Config, opts ...Option) (*Updater, error) {
	if cfg.Dial == nil {
		cfg.Dial = transport.DefaultDialer()
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	tr, err := transport.Open(cfg.Port, cfg.Dial, s.log)
	if err != nil {
		return nil, fmt.Errorf("updater: open %s: %w", cfg.Port, err)
	}

	u := &Updater{
		cfg:      cfg,
		log:      s.log.With().Str("port", cfg.Port).Logger(),
		timings:  s.timings,
		tr:       tr,
		moduleID: wire.BroadcastID,
		kind:     identity.Network, // Phase 1 default when identity never resolves
	}
	u.State.setModuleID(wire.BroadcastID)
	return u, nil
}

// Port returns the serial port this Updater targets.
func (u *Updater) Port() string { return u.cfg.Port }

// Run drives the module through every phase to completion. It is not
// cancellation-aware: once started it runs to either success or a fatal
// error, updating u.State throughout so a supervisor can observe progress
// from another goroutine. The returned error is nil on success. On fatal
// failure it is either one of the typed *Error values in errors.go or the
// error from resolving and loading the firmware image.
func (u *Updater) Run() error {
	defer u.tr.Close()

	u.identify()

	loadErr := u.loadImage()

	u.enterBootloader()

	var fatal error
	if loadErr != nil {
		fatal = loadErr
	} else {
		fatal = u.warningWait()
		if fatal == nil {
			fatal = u.pageLoop()
		}
	}

	if terr := u.writeTrailer(fatal != nil); terr != nil && fatal == nil {
		fatal = terr
	}

	u.reboot()

	if fatal != nil {
		u.log.Error().Err(fatal).Msg("updater: aborted")
		u.State.setFatal(fatal)
	} else {
		u.log.Info().Msg("updater: complete")
		u.State.setSuccess()
	}

	return fatal
}

// loadImage resolves the firmware file for u.kind from the catalog and
// loads it. Called once identity (or its Phase 1 default) is known.
func (u *Updater) loadImage() error {
	slots, ok := u.cfg.Catalog[u.kind.String()]
	if !ok {
		return fmt.Errorf("updater: no catalog entry for device type %q", u.kind)
	}
	raw, ok := slots["app"]
	if !ok {
		return fmt.Errorf("updater: catalog[%s] has no \"app\" entry", u.kind)
	}

	version, err := identity.ParseVersionString(raw)
	if err != nil {
		return fmt.Errorf("updater: %w", err)
	}
	u.version = version

	path, err := firmware.PathFor(u.cfg.FirmwareRoot, u.kind, raw)
	if err != nil {
		return err
	}
	img, err := firmware.Load(path)
	if err != nil {
		return err
	}
	u.image = img
	return nil
}

// readFrame waits up to timeout for one complete wire frame, decodes it,
// and returns (nil, nil) on timeout. A malformed frame is logged and
// treated as absent rather than propagated as an error.
func (u *Updater) readFrame(timeout time.Duration) (*wire.Packet, error) {
	raw, err := u.tr.WaitForJSON(timeout)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	p, err := wire.Decode(raw)
	if err != nil {
		u.log.Debug().Err(err).Bytes("raw", raw).Msg("updater: malformed frame, treating as absent")
		return nil, nil
	}
	return &p, nil
}

// send encodes and writes one packet.
func (u *Updater) send(p wire.Packet) error {
	raw, err := wire.Encode(p)
	if err != nil {
		return err
	}
	_, err = u.tr.Write(raw)
	return err
}

// isRelevantKind reports whether uuid belongs to a network or camera
// module, the only two kinds Phase 1 and Phase 3 accept.
func isRelevantKind(uuid uint64) (identity.Kind, bool) {
	k := identity.KindFromUUID(uuid)
	return k, k == identity.Network || k == identity.Camera
}
