// Package supervisor coordinates one update run across every module port
// discovered on the bus: it constructs one updater per port, runs them
// concurrently, and polls their published state at a fixed cadence to
// aggregate a single total-progress figure and drive an EventSink.
package supervisor

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modfw/internal/config"
	"github.com/tamzrod/modfw/internal/ports"
	"github.com/tamzrod/modfw/internal/transport"
	"github.com/tamzrod/modfw/internal/updater"
)

// defaultMaxDevices caps how many ports a single run will attach to when
// Config.MaxDevices is unset.
const defaultMaxDevices = 10

// pollInterval is the cadence the supervisor's aggregation loop runs at.
const pollInterval = 10 * time.Millisecond

// EventSink receives every observable event a run produces: per-device
// identity and progress, per-device outcome, and the aggregate totals a
// UI would show for the whole run.
type EventSink interface {
	DeviceUUID(port string, uuid uint64)
	DeviceProgress(port string, progress int)
	DeviceState(port string, ok bool)
	DeviceError(port string, message string)
	TotalProgress(progress int)
	TotalStatus(status string)
}

// Config is the input to New. Ports lists explicit port names to attach
// to; if empty, Discover is consulted instead. Dial and Timings are
// forwarded to every constructed updater, letting tests substitute an
// in-process transport and a compressed timing profile.
type Config struct {
	Ports        []string
	Discover     ports.Enumerator
	FirmwareRoot string
	Catalog      config.VersionCatalog
	Dial         transport.Dialer
	MaxDevices   int
	Timings      updater.Timings

	Sink       EventSink
	OnComplete func()
	Log        zerolog.Logger
}

type slot struct {
	port     string
	u        *updater.Updater
	phase    phase
	uuidSent bool
}

// Supervisor runs one update pass over a fixed set of worker slots,
// established once at New and never changed afterward: ports that
// arrive after Run starts are not picked up.
type Supervisor struct {
	cfg   Config
	log   zerolog.Logger
	slots []*slot
}

// New resolves the port list (explicit or discovered), caps it, and
// constructs one updater per surviving port. A port that fails to open
// is logged and skipped rather than failing the whole run.
func New(cfg Config) (*Supervisor, error) {
	if cfg.MaxDevices <= 0 {
		cfg.MaxDevices = defaultMaxDevices
	}
	log := cfg.Log

	portList := cfg.Ports
	if len(portList) == 0 && cfg.Discover != nil {
		discovered, err := cfg.Discover.Discover()
		if err != nil {
			return nil, fmt.Errorf("supervisor: discover ports: %w", err)
		}
		portList = discovered
	}
	if len(portList) > cfg.MaxDevices {
		log.Warn().Int("found", len(portList)).Int("cap", cfg.MaxDevices).
			Msg("supervisor: capping device count")
		portList = portList[:cfg.MaxDevices]
	}

	timings := cfg.Timings
	if timings == (updater.Timings{}) {
		timings = updater.DefaultTimings()
	}

	s := &Supervisor{cfg: cfg, log: log}
	for _, port := range portList {
		u, err := updater.New(updater.Config{
			Port:         port,
			Dial:         cfg.Dial,
			FirmwareRoot: cfg.FirmwareRoot,
			Catalog:      cfg.Catalog,
		}, updater.WithLogger(log.With().Str("port", port).Logger()), updater.WithTimings(timings))
		if err != nil {
			log.Warn().Str("port", port).Err(err).Msg("supervisor: skipping port")
			continue
		}
		s.slots = append(s.slots, &slot{port: port, u: u})
	}
	return s, nil
}

// Run spawns one worker goroutine per slot, then polls their published
// state at pollInterval until every slot has left the running phase. It
// blocks until the whole run finishes. OnComplete, if set, fires exactly
// once, whether or not any slot existed at all.
func (s *Supervisor) Run() {
	if len(s.slots) == 0 {
		if s.cfg.Sink != nil {
			s.cfg.Sink.TotalStatus("no devices found")
		}
		if s.cfg.OnComplete != nil {
			s.cfg.OnComplete()
		}
		return
	}

	for _, sl := range s.slots {
		go func(sl *slot) {
			if err := sl.u.Run(); err != nil {
				s.log.Debug().Str("port", sl.port).Err(err).Msg("supervisor: worker finished with error")
			}
		}(sl)
	}

	if s.cfg.Sink != nil {
		s.cfg.Sink.TotalStatus("running")
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if s.tick() {
			break
		}
	}

	if s.cfg.Sink != nil {
		s.cfg.Sink.TotalStatus("complete")
	}
	if s.cfg.OnComplete != nil {
		s.cfg.OnComplete()
	}
}

// tick advances every slot's phase by one step, accumulates the total
// progress figure, and reports whether every slot has now left the
// running phase.
func (s *Supervisor) tick() bool {
	n := len(s.slots)
	total := 0
	anyRunning := false

	for _, sl := range s.slots {
		st := &sl.u.State

		if st.UUIDKnown() && !sl.uuidSent {
			sl.uuidSent = true
			if s.cfg.Sink != nil {
				s.cfg.Sink.DeviceUUID(sl.port, st.UUID())
			}
		}

		switch sl.phase {
		case phaseRunning:
			if st.ErrorCode() == updater.ErrorNone {
				total += st.Progress() / n
				if s.cfg.Sink != nil {
					s.cfg.Sink.DeviceProgress(sl.port, st.Progress())
				}
				anyRunning = true
			} else {
				total += 100 / n
				sl.phase = phaseJustFinished
			}
		case phaseJustFinished:
			total += 100 / n
			ok := st.ErrorCode() == updater.ErrorOK
			if s.cfg.Sink != nil {
				s.cfg.Sink.DeviceState(sl.port, ok)
				if !ok {
					s.cfg.Sink.DeviceError(sl.port, st.Message())
				}
			}
			sl.phase = phaseReported
		case phaseReported:
			total += 100 / n
		}
	}

	if s.cfg.Sink != nil {
		s.cfg.Sink.TotalProgress(total)
	}

	return !anyRunning
}
