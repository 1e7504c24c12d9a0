// Package config loads, validates, and normalizes one modfw run's YAML
// configuration.
package config

// RunConfig is the top-level configuration for one modfw run, as decoded
// from YAML: where firmware images live, which ports to target, and the
// version catalog each worker updates its module to.
type RunConfig struct {
	FirmwareRoot  string         `yaml:"firmware_root"`
	DiscoverPorts bool           `yaml:"discover_ports"`
	Ports         []string       `yaml:"ports"`
	MaxDevices    int            `yaml:"max_devices"`
	Catalog       VersionCatalog `yaml:"catalog"`
}

// VersionCatalog maps a device type ("network", "camera") to its firmware
// slots ("app") and the version string each slot should be updated to.
type VersionCatalog map[string]map[string]string
