package updater

import (
	"github.com/rs/zerolog"

	"github.com/tamzrod/modfw/internal/config"
	"github.com/tamzrod/modfw/internal/transport"
)

// Config is the immutable configuration one Updater is constructed with.
type Config struct {
	Port         string
	Dial         transport.Dialer
	FirmwareRoot string
	Catalog      config.VersionCatalog
}

// Option is a functional option for New.
type Option func(*settings)

type settings struct {
	log     zerolog.Logger
	timings Timings
}

func defaultSettings() settings {
	return settings{
		log:     zerolog.Nop(),
		timings: DefaultTimings(),
	}
}

// WithLogger attaches a structured logger. Frame-level chatter logs at
// Debug, phase transitions at Info, retried failures at Warn, fatal
// aborts at Error.
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithTimings overrides the default (spec-literal) sleep and deadline
// profile. Production callers should not need this; tests use it to run
// the state machine's logic in milliseconds instead of real seconds.
func WithTimings(t Timings) Option {
	return func(s *settings) { s.timings = t }
}
