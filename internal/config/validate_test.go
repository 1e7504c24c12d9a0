package config

import "testing"

func validConfig() *RunConfig {
	return &RunConfig{
		FirmwareRoot:  "/var/lib/modfw/firmware",
		DiscoverPorts: true,
		MaxDevices:    5,
		Catalog: VersionCatalog{
			"network": {"app": "1.2.3"},
			"camera":  {"app": "v1.0.4-rc1"},
		},
	}
}

func TestValidate_AcceptsWellFormedConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsEmptyFirmwareRoot(t *testing.T) {
	cfg := validConfig()
	cfg.FirmwareRoot = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for empty firmware_root")
	}
}

func TestValidate_RejectsMaxDevicesOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.MaxDevices = 11
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for max_devices > 10")
	}
}

func TestValidate_ZeroMaxDevicesIsUnsetSentinel(t *testing.T) {
	cfg := validConfig()
	cfg.MaxDevices = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error for zero max_devices: %v", err)
	}
}

func TestValidate_RequiresPortsWhenNotDiscovering(t *testing.T) {
	cfg := validConfig()
	cfg.DiscoverPorts = false
	cfg.Ports = nil
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for no ports and discovery disabled")
	}
}

func TestValidate_RejectsUnknownDeviceType(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog["thermostat"] = map[string]string{"app": "1.0.0"}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown catalog device type")
	}
}

func TestValidate_RejectsMalformedVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog["network"]["app"] = "not-a-version"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for malformed catalog version")
	}
}

func TestValidate_RejectsOutOfRangeVersionComponent(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog["network"]["app"] = "9.0.0"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for major version out of range")
	}
}

func TestNormalize_DefaultsMaxDevices(t *testing.T) {
	cfg := validConfig()
	cfg.MaxDevices = 0
	Normalize(cfg)
	if cfg.MaxDevices != defaultMaxDevices {
		t.Fatalf("max_devices = %d, want %d", cfg.MaxDevices, defaultMaxDevices)
	}
}

func TestNormalize_LeavesCatalogVersionsRaw(t *testing.T) {
	cfg := validConfig()
	Normalize(cfg)
	if got := cfg.Catalog["camera"]["app"]; got != "v1.0.4-rc1" {
		t.Fatalf("normalized camera version = %q, want %q (unchanged)", got, "v1.0.4-rc1")
	}
	if got := cfg.Catalog["network"]["app"]; got != "1.2.3" {
		t.Fatalf("normalized network version = %q, want %q (unchanged)", got, "1.2.3")
	}
}
