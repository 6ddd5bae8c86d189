package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bhs-ops/inserv/internal/unitfile"
)

// Installer deploys one named BHS service: it stages the runtime script, the
// shared core module and the service configuration, and registers a systemd
// unit. All host mutation goes through the injected ServiceManager and
// FileStager, so the full sequence is testable without touching the system.
type Installer struct {
	cfg    InstallConfig
	sm     ServiceManager
	stager FileStager
	root   RootChecker
	logger *slog.Logger
}

// NewInstaller creates an Installer with defaults applied.
func NewInstaller(cfg InstallConfig, sm ServiceManager, stager FileStager, root RootChecker, logger *slog.Logger) *Installer {
	cfg.ApplyDefaults()
	return &Installer{
		cfg:    cfg,
		sm:     sm,
		stager: stager,
		root:   root,
		logger: logger.With("component", "deploy"),
	}
}

// Install runs the fixed installation sequence for the named service and
// returns one Result per executed step, in order. A mandatory step's failure
// aborts the remaining sequence and is returned as the error alongside the
// partial results; failures of the initial stop/disable step are recorded
// but tolerated. Re-running Install for the same name is safe: directory
// creation and the copy-if-newer staging are no-ops when already applied.
//
// The context is checked between steps. Cancellation aborts the remaining
// sequence with a failed Result for the step that would have run next.
func (ins *Installer) Install(ctx context.Context, name string) ([]Result, error) {
	var desc ServiceDescriptor

	steps := []Step{
		{Name: StepValidate, Mandatory: true, run: func(context.Context) error {
			d, err := NewDescriptor(name, ins.cfg)
			if err != nil {
				return err
			}
			if !ins.root.IsRoot() {
				return errors.New("install requires root privileges")
			}
			if !ins.sm.IsAvailable() {
				return errors.New("systemd is not available on this host")
			}
			desc = d
			return nil
		}},
		{Name: StepStopDisablePrior, Mandatory: false, run: func(ctx context.Context) error {
			// Both fail with "unit not found" on a first-time install, and
			// each is attempted regardless of the other's outcome.
			var errs []error
			if err := ins.sm.Stop(ctx, desc.UnitName()); err != nil && !IsUnitNotFound(err) {
				errs = append(errs, err)
			}
			if err := ins.sm.Disable(ctx, desc.UnitName()); err != nil && !IsUnitNotFound(err) {
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		}},
		{Name: StepStageRuntime, Mandatory: true, run: func(context.Context) error {
			if err := ins.stager.CopyIfNewer(desc.SourceCore, desc.CorePath); err != nil {
				return err
			}
			return ins.stager.CopyIfNewer(desc.SourceScript, desc.ScriptPath)
		}},
		{Name: StepStageConfig, Mandatory: true, run: func(context.Context) error {
			if err := ins.stager.EnsureDir(ins.cfg.ConfigDir, 0o755); err != nil {
				return err
			}
			if err := ins.stager.CopyIfNewer(desc.SourceConfig, desc.ConfigPath); err != nil {
				return err
			}
			return ins.writeEnvFile(desc)
		}},
		{Name: StepEnsureLogDir, Mandatory: true, run: func(context.Context) error {
			// Services write here under their own accounts.
			return ins.stager.EnsureDir(ins.cfg.LogDir, 0o777)
		}},
		{Name: StepSetExecutable, Mandatory: true, run: func(context.Context) error {
			return ins.stager.AddExecuteBit(desc.ScriptPath)
		}},
		{Name: StepStageUnitFile, Mandatory: true, run: func(context.Context) error {
			return ins.stageUnitFile(desc)
		}},
		{Name: StepReloadDaemons, Mandatory: true, run: func(ctx context.Context) error {
			return ins.sm.Reload(ctx)
		}},
		{Name: StepEnableUnit, Mandatory: true, run: func(ctx context.Context) error {
			return ins.sm.Enable(ctx, desc.UnitName())
		}},
	}

	results := make([]Result, 0, len(steps))
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Step: st.Name, Detail: "cancelled: " + err.Error()})
			return results, fmt.Errorf("deploy: install %s cancelled before step %s: %w", name, st.Name, err)
		}

		if err := st.run(ctx); err != nil {
			results = append(results, Result{Step: st.Name, Detail: err.Error()})
			if st.Mandatory {
				return results, fmt.Errorf("deploy: install %s: step %s: %w", name, st.Name, err)
			}
			ins.logger.Warn("step failed, continuing", "service", name, "step", st.Name, "error", err)
			continue
		}

		results = append(results, Result{Step: st.Name, OK: true})
		ins.logger.Info("step completed", "service", name, "step", st.Name)
	}

	ins.logger.Info("service installed", "service", name, "unit", desc.UnitName())
	return results, nil
}

// Start starts the named service. Install never starts anything; this is
// the explicit opt-in behind the install --start flag.
func (ins *Installer) Start(ctx context.Context, name string) error {
	desc, err := NewDescriptor(name, ins.cfg)
	if err != nil {
		return err
	}
	if err := ins.sm.Start(ctx, desc.UnitName()); err != nil {
		return fmt.Errorf("deploy: start %s: %w", name, err)
	}
	ins.logger.Info("service started", "service", name)
	return nil
}

// Status reports whether the named service is installed (unit file present)
// and currently active.
func (ins *Installer) Status(ctx context.Context, name string) (installed, active bool, err error) {
	desc, err := NewDescriptor(name, ins.cfg)
	if err != nil {
		return false, false, err
	}
	if _, err := os.Stat(desc.UnitFilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("deploy: stat unit file: %w", err)
	}
	return true, ins.sm.IsActive(ctx, desc.UnitName()), nil
}

// Uninstall removes the named service: best-effort stop and disable, then
// unit file, staged script, configuration and environment file. The shared
// core module and log directory stay in place, since other services use
// them; purge additionally removes the log directory. Uninstalling a
// service that is not installed is a no-op.
func (ins *Installer) Uninstall(ctx context.Context, name string, purge bool) error {
	if !ins.root.IsRoot() {
		return errors.New("deploy: uninstall requires root privileges")
	}
	desc, err := NewDescriptor(name, ins.cfg)
	if err != nil {
		return err
	}

	if _, err := os.Stat(desc.UnitFilePath); errors.Is(err, os.ErrNotExist) {
		ins.logger.Info("service is not installed, nothing to do", "service", name)
		return nil
	}

	if err := ins.sm.Stop(ctx, desc.UnitName()); err != nil && !IsUnitNotFound(err) {
		ins.logger.Warn("stop service", "service", name, "error", err)
	}
	if err := ins.sm.Disable(ctx, desc.UnitName()); err != nil && !IsUnitNotFound(err) {
		ins.logger.Warn("disable service", "service", name, "error", err)
	}

	if err := os.Remove(desc.UnitFilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deploy: remove unit file: %w", err)
	}
	ins.logger.Info("unit file removed", "path", desc.UnitFilePath)

	if err := ins.sm.Reload(ctx); err != nil {
		return fmt.Errorf("deploy: daemon-reload: %w", err)
	}

	for _, path := range []string{desc.ScriptPath, desc.ConfigPath, desc.EnvFilePath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("deploy: remove %s: %w", path, err)
		}
	}
	ins.logger.Info("staged files removed", "service", name)

	if purge {
		if err := os.RemoveAll(ins.cfg.LogDir); err != nil {
			return fmt.Errorf("deploy: remove log directory: %w", err)
		}
		ins.logger.Info("log directory removed", "path", ins.cfg.LogDir)
	}

	return nil
}

// stageUnitFile copies the unit definition from the source directory when
// one exists, and otherwise writes a generated default unit. Either way the
// destination is overwritten unconditionally so unit changes always land,
// even when every staging step was skipped as up to date.
func (ins *Installer) stageUnitFile(desc ServiceDescriptor) error {
	if _, err := os.Stat(desc.SourceUnit); err == nil {
		return ins.stager.CopyAlways(desc.SourceUnit, desc.UnitFilePath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat source unit: %w", err)
	}

	return ins.stager.WriteFile(desc.UnitFilePath, []byte(ins.renderUnit(desc)), 0o644)
}

// RenderUnit returns the generated default unit for the named service, as
// written when the source directory carries no unit file of its own.
func (ins *Installer) RenderUnit(name string) (string, error) {
	desc, err := NewDescriptor(name, ins.cfg)
	if err != nil {
		return "", err
	}
	return ins.renderUnit(desc), nil
}

func (ins *Installer) renderUnit(desc ServiceDescriptor) string {
	return unitfile.Generate(unitfile.Params{
		Description:      fmt.Sprintf("%s: %s", ins.cfg.Description, desc.Name),
		ExecStart:        desc.ScriptPath,
		WorkingDirectory: ins.cfg.BinDir,
		EnvironmentFile:  desc.EnvFilePath,
		LogDir:           ins.cfg.LogDir,
	})
}

// writeEnvFile writes the per-service environment file when database
// settings are configured. Credentials end up on disk, hence 0600.
func (ins *Installer) writeEnvFile(desc ServiceDescriptor) error {
	db := ins.cfg.Database
	if db.Host == "" {
		return nil
	}

	dbName := db.Name
	if ins.cfg.UseTestDatabase {
		dbName = db.TestName
	}
	content := unitfile.Environment(db.Host, dbName, db.User, db.Password)
	if err := ins.stager.WriteFile(desc.EnvFilePath, content, 0o600); err != nil {
		return err
	}
	ins.logger.Info("environment file written", "path", desc.EnvFilePath, "database", dbName)
	return nil
}
