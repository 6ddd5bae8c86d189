package deploy

import (
	"errors"
	"testing"
)

func testConfig() InstallConfig {
	cfg := InstallConfig{}
	cfg.ApplyDefaults()
	return cfg
}

func TestNewDescriptor_DerivesPaths(t *testing.T) {
	desc, err := NewDescriptor("weather-station", testConfig())
	if err != nil {
		t.Fatalf("NewDescriptor() = %v", err)
	}

	tests := []struct {
		field, got, want string
	}{
		{"ScriptPath", desc.ScriptPath, "/usr/local/bin/weather-station.py"},
		{"CorePath", desc.CorePath, "/usr/local/bin/BHSCore.py"},
		{"ConfigPath", desc.ConfigPath, "/etc/bhs/weather-station.config"},
		{"EnvFilePath", desc.EnvFilePath, "/etc/bhs/weather-station.env"},
		{"UnitFilePath", desc.UnitFilePath, "/etc/systemd/system/weather-station.service"},
		{"LogDir", desc.LogDir, "/var/log/bhs"},
		{"SourceScript", desc.SourceScript, "weather-station.py"},
		{"SourceCore", desc.SourceCore, "BHSCore.py"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}

	if desc.UnitName() != "weather-station.service" {
		t.Errorf("UnitName() = %q, want weather-station.service", desc.UnitName())
	}
}

func TestNewDescriptor_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name    string
		service string
	}{
		{"empty", ""},
		{"slash", "a/b"},
		{"backslash", `a\b`},
		{"traversal", "../../etc/passwd"},
		{"dot", "."},
		{"dotdot", ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDescriptor(tt.service, testConfig())
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("NewDescriptor(%q) error = %v, want *ValidationError", tt.service, err)
			}
		})
	}
}

func TestNewDescriptor_CustomLayout(t *testing.T) {
	cfg := InstallConfig{
		BinDir:    "/opt/bhs/bin",
		ConfigDir: "/opt/bhs/etc",
		SourceDir: "/home/op/bhs/service",
	}
	cfg.ApplyDefaults()

	desc, err := NewDescriptor("tank-level", cfg)
	if err != nil {
		t.Fatalf("NewDescriptor() = %v", err)
	}
	if desc.ScriptPath != "/opt/bhs/bin/tank-level.py" {
		t.Errorf("ScriptPath = %q", desc.ScriptPath)
	}
	if desc.SourceScript != "/home/op/bhs/service/tank-level.py" {
		t.Errorf("SourceScript = %q", desc.SourceScript)
	}
}
