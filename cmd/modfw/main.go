package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modfw/internal/config"
	"github.com/tamzrod/modfw/internal/ports"
	"github.com/tamzrod/modfw/internal/supervisor"
	"github.com/tamzrod/modfw/internal/transport"
)

func newLogger() zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Str("app", "modfw").Logger()
}

func main() {
	log := newLogger()

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: modfw <config.yaml>")
	}
	cfgPath := os.Args[1]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)

	sup, err := supervisor.New(supervisor.Config{
		Ports:        cfg.Ports,
		Discover:     ports.Glob{},
		FirmwareRoot: cfg.FirmwareRoot,
		Catalog:      cfg.Catalog,
		Dial:         transport.DefaultDialer(),
		MaxDevices:   cfg.MaxDevices,
		Sink:         &cliSink{log: log},
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("supervisor setup failed")
	}

	log.Info().Str("config", cfgPath).Msg("modfw: starting update run")
	sup.Run()
	log.Info().Msg("modfw: update run complete")
}

// cliSink renders every supervisor event as a structured log line. It is
// the simplest possible EventSink; a UI-backed sink would publish the
// same events to a channel or socket instead of stdout.
type cliSink struct {
	log zerolog.Logger
}

func (s *cliSink) DeviceUUID(port string, uuid uint64) {
	s.log.Info().Str("port", port).Str("uuid", fmt.Sprintf("0x%X", uuid)).Msg("device identified")
}

func (s *cliSink) DeviceProgress(port string, progress int) {
	s.log.Debug().Str("port", port).Int("progress", progress).Msg("device progress")
}

func (s *cliSink) DeviceState(port string, ok bool) {
	if ok {
		s.log.Info().Str("port", port).Msg("device update succeeded")
	} else {
		s.log.Warn().Str("port", port).Msg("device update failed")
	}
}

func (s *cliSink) DeviceError(port string, message string) {
	s.log.Warn().Str("port", port).Str("error", message).Msg("device error detail")
}

func (s *cliSink) TotalProgress(progress int) {
	s.log.Debug().Int("total_progress", progress).Msg("run progress")
}

func (s *cliSink) TotalStatus(status string) {
	s.log.Info().Str("status", status).Msg("run status")
}
