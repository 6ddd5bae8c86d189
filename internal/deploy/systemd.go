package deploy

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// systemdManager implements ServiceManager by shelling out to systemctl.
type systemdManager struct {
	systemctl string
}

// NewSystemdManager returns a ServiceManager backed by the real systemctl
// binary.
func NewSystemdManager() ServiceManager {
	return &systemdManager{systemctl: "systemctl"}
}

func (m *systemdManager) IsAvailable() bool {
	_, err := exec.LookPath(m.systemctl)
	return err == nil
}

func (m *systemdManager) Stop(ctx context.Context, name string) error {
	return m.run(ctx, "stop", name)
}

func (m *systemdManager) Disable(ctx context.Context, name string) error {
	return m.run(ctx, "disable", name)
}

func (m *systemdManager) Reload(ctx context.Context) error {
	return m.run(ctx, "daemon-reload")
}

func (m *systemdManager) Enable(ctx context.Context, name string) error {
	return m.run(ctx, "enable", name)
}

func (m *systemdManager) Start(ctx context.Context, name string) error {
	return m.run(ctx, "start", name)
}

func (m *systemdManager) IsActive(ctx context.Context, name string) bool {
	err := exec.CommandContext(ctx, m.systemctl, "is-active", "--quiet", name).Run()
	return err == nil
}

func (m *systemdManager) run(ctx context.Context, args ...string) error {
	output, err := exec.CommandContext(ctx, m.systemctl, args...).CombinedOutput()
	if err == nil {
		return nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	msg := strings.TrimSpace(string(output))
	if msg == "" {
		msg = err.Error()
	}
	return &ServiceManagerError{Op: args[0], Code: code, Message: msg}
}

// realRootChecker implements RootChecker using os.Getuid.
type realRootChecker struct{}

// NewRootChecker returns a RootChecker that checks the real process UID.
func NewRootChecker() RootChecker {
	return &realRootChecker{}
}

func (c *realRootChecker) IsRoot() bool {
	return os.Getuid() == 0
}
