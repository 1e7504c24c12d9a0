package config

import (
	"fmt"

	"github.com/tamzrod/modfw/internal/identity"
)

// Validate checks configuration correctness. It performs declarative
// validation only and must not mutate cfg.
func Validate(cfg *RunConfig) error {
	if cfg.FirmwareRoot == "" {
		return fmt.Errorf("config: firmware_root must not be empty")
	}

	if cfg.MaxDevices != 0 && (cfg.MaxDevices < 1 || cfg.MaxDevices > 10) {
		return fmt.Errorf("config: max_devices %d out of range 1..10", cfg.MaxDevices)
	}

	if !cfg.DiscoverPorts && len(cfg.Ports) == 0 {
		return fmt.Errorf("config: discover_ports is false but no ports were listed")
	}

	for kind, slots := range cfg.Catalog {
		if kind != "network" && kind != "camera" {
			return fmt.Errorf("config: catalog has unknown device type %q", kind)
		}
		for slot, version := range slots {
			if _, err := identity.ParseVersionString(version); err != nil {
				return fmt.Errorf("config: catalog[%s][%s]: %w", kind, slot, err)
			}
		}
	}

	return nil
}
