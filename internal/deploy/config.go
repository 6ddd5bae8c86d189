// Package deploy installs BHS services onto a Linux host and registers
// them with systemd.
package deploy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds the database settings written into the per-service
// environment file. Optional: when Host is empty no environment file is
// produced.
type DatabaseConfig struct {
	// Host is the database server hostname.
	Host string `yaml:"host"`

	// Name is the production database name.
	// Default: bhs
	Name string `yaml:"name"`

	// TestName is the database name used when installing in test mode.
	// Default: bhs_test
	TestName string `yaml:"test_name"`

	// User and Password are the service's database credentials.
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// InstallConfig holds the host layout and install-time options for deploying
// a BHS service. It is populated from an optional YAML file via LoadConfig
// and from CLI flags; no other file I/O happens in this package's config
// handling.
type InstallConfig struct {
	// BinDir is the directory runtime scripts are staged into.
	// Default: /usr/local/bin
	BinDir string `yaml:"bin_dir"`

	// ConfigDir is the directory service configuration files are staged into.
	// Default: /etc/bhs
	ConfigDir string `yaml:"config_dir"`

	// LogDir is the shared log directory for all BHS services.
	// Default: /var/log/bhs
	LogDir string `yaml:"log_dir"`

	// UnitDir is the systemd unit directory.
	// Default: /etc/systemd/system
	UnitDir string `yaml:"unit_dir"`

	// SourceDir is the directory source files are staged from.
	// Default: . (current directory)
	SourceDir string `yaml:"source_dir"`

	// CoreModule is the filename of the shared support module staged
	// alongside every service script.
	// Default: BHSCore.py
	CoreModule string `yaml:"core_module"`

	// Description is the unit Description for generated unit files.
	// Default: BHS Service
	Description string `yaml:"description"`

	// Database configures the generated environment file (optional).
	Database DatabaseConfig `yaml:"database"`

	// UseTestDatabase switches the environment file to the test database.
	// Set from the --db-test flag, not from YAML.
	UseTestDatabase bool `yaml:"-"`
}

// DefaultBinDir is the default directory for staged runtime scripts.
const DefaultBinDir = "/usr/local/bin"

// DefaultConfigDir is the default service configuration directory.
const DefaultConfigDir = "/etc/bhs"

// DefaultLogDir is the default shared log directory.
const DefaultLogDir = "/var/log/bhs"

// DefaultUnitDir is the default systemd unit directory.
const DefaultUnitDir = "/etc/systemd/system"

// DefaultCoreModule is the default shared support module filename.
const DefaultCoreModule = "BHSCore.py"

// DefaultDescription is the default unit description.
const DefaultDescription = "BHS Service"

// ApplyDefaults sets default values for zero-valued fields.
func (c *InstallConfig) ApplyDefaults() {
	if c.BinDir == "" {
		c.BinDir = DefaultBinDir
	}
	if c.ConfigDir == "" {
		c.ConfigDir = DefaultConfigDir
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if c.UnitDir == "" {
		c.UnitDir = DefaultUnitDir
	}
	if c.SourceDir == "" {
		c.SourceDir = "."
	}
	if c.CoreModule == "" {
		c.CoreModule = DefaultCoreModule
	}
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	if c.Database.Name == "" {
		c.Database.Name = "bhs"
	}
	if c.Database.TestName == "" {
		c.Database.TestName = "bhs_test"
	}
}

// Validate checks that required fields are set.
func (c *InstallConfig) Validate() error {
	if c.BinDir == "" {
		return errors.New("deploy: config: bin_dir is required")
	}
	if c.ConfigDir == "" {
		return errors.New("deploy: config: config_dir is required")
	}
	if c.LogDir == "" {
		return errors.New("deploy: config: log_dir is required")
	}
	if c.UnitDir == "" {
		return errors.New("deploy: config: unit_dir is required")
	}
	if c.SourceDir == "" {
		return errors.New("deploy: config: source_dir is required")
	}
	if c.CoreModule == "" {
		return errors.New("deploy: config: core_module is required")
	}
	return nil
}

// LoadConfig reads an InstallConfig from a YAML file and applies defaults.
// An empty path yields the default configuration. A missing file is not an
// error: the installer works with built-in defaults on a bare host.
func LoadConfig(path string) (InstallConfig, error) {
	var cfg InstallConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("deploy: read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("deploy: parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
