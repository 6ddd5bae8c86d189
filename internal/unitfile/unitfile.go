// Package unitfile generates systemd unit and environment files for BHS
// services.
package unitfile

import (
	"fmt"
	"io"

	"github.com/coreos/go-systemd/v22/unit"
)

// Params holds everything that varies between generated service units.
type Params struct {
	Description      string
	ExecStart        string
	WorkingDirectory string

	// EnvironmentFile is referenced with the leading "-" so a unit without
	// database settings starts without one.
	EnvironmentFile string

	// LogDir is granted write access under ProtectSystem.
	LogDir string
}

// Generate produces a complete systemd unit for a BHS service.
func Generate(p Params) string {
	opts := []*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", p.Description),
		unit.NewUnitOption("Unit", "After", "network-online.target"),
		unit.NewUnitOption("Unit", "Wants", "network-online.target"),
		unit.NewUnitOption("Unit", "StartLimitBurst", "5"),
		unit.NewUnitOption("Unit", "StartLimitIntervalSec", "60"),

		unit.NewUnitOption("Service", "Type", "simple"),
		unit.NewUnitOption("Service", "ExecStart", p.ExecStart),
		unit.NewUnitOption("Service", "WorkingDirectory", p.WorkingDirectory),
		unit.NewUnitOption("Service", "Restart", "always"),
		unit.NewUnitOption("Service", "RestartSec", "5s"),
		unit.NewUnitOption("Service", "EnvironmentFile", "-"+p.EnvironmentFile),
		unit.NewUnitOption("Service", "ProtectSystem", "full"),
		unit.NewUnitOption("Service", "ProtectHome", "true"),
		unit.NewUnitOption("Service", "ReadWritePaths", p.LogDir),

		unit.NewUnitOption("Install", "WantedBy", "multi-user.target"),
	}

	data, err := io.ReadAll(unit.Serialize(opts))
	if err != nil {
		// Serialize reads from an in-memory buffer; this cannot happen.
		panic(err)
	}
	return string(data)
}

// Environment produces a systemd EnvironmentFile with the database settings
// a BHS service reads at startup.
func Environment(host, database, user, password string) []byte {
	return []byte(fmt.Sprintf(
		"BHS_DB_HOST=%s\nBHS_DB_NAME=%s\nBHS_DB_USER=%s\nBHS_DB_PASSWORD=%s\n",
		host, database, user, password,
	))
}
