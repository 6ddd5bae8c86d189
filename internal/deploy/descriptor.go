package deploy

import (
	"path/filepath"
	"strings"
)

// ServiceDescriptor holds the identity of one service and every path the
// installer touches for it. All destination paths are derived from the
// service name and the host layout in InstallConfig; a descriptor is
// immutable for the duration of one run.
type ServiceDescriptor struct {
	// Name is the service identity. Unit name is Name + ".service".
	Name string

	// Destination paths on the host.
	ScriptPath   string // <bin_dir>/<name>.py
	CorePath     string // <bin_dir>/<core_module>
	ConfigPath   string // <config_dir>/<name>.config
	EnvFilePath  string // <config_dir>/<name>.env
	UnitFilePath string // <unit_dir>/<name>.service
	LogDir       string

	// Source paths under SourceDir.
	SourceScript string
	SourceCore   string
	SourceConfig string
	SourceUnit   string
}

// NewDescriptor validates name and derives all staging paths from it.
// The name is embedded in destination paths under /etc and /usr/local, so
// anything that could escape those directories is rejected here, before any
// side effect.
func NewDescriptor(name string, cfg InstallConfig) (ServiceDescriptor, error) {
	if name == "" {
		return ServiceDescriptor{}, &ValidationError{Field: "service name", Reason: "must not be empty"}
	}
	if strings.ContainsAny(name, `/\`) {
		return ServiceDescriptor{}, &ValidationError{Field: "service name", Reason: "must not contain path separators"}
	}
	if name == "." || name == ".." {
		return ServiceDescriptor{}, &ValidationError{Field: "service name", Reason: "must not be a relative path element"}
	}

	return ServiceDescriptor{
		Name:         name,
		ScriptPath:   filepath.Join(cfg.BinDir, name+".py"),
		CorePath:     filepath.Join(cfg.BinDir, cfg.CoreModule),
		ConfigPath:   filepath.Join(cfg.ConfigDir, name+".config"),
		EnvFilePath:  filepath.Join(cfg.ConfigDir, name+".env"),
		UnitFilePath: filepath.Join(cfg.UnitDir, name+".service"),
		LogDir:       cfg.LogDir,
		SourceScript: filepath.Join(cfg.SourceDir, name+".py"),
		SourceCore:   filepath.Join(cfg.SourceDir, cfg.CoreModule),
		SourceConfig: filepath.Join(cfg.SourceDir, name+".config"),
		SourceUnit:   filepath.Join(cfg.SourceDir, name+".service"),
	}, nil
}

// UnitName returns the systemd unit name for the service.
func (d ServiceDescriptor) UnitName() string {
	return d.Name + ".service"
}
