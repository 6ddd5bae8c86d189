package deploy

import (
	"context"
	"os"
)

// ServiceManager abstracts systemd unit lifecycle control for testability.
// Implementations invoke an external privileged subsystem; every call may
// block until the underlying command finishes, so all methods take a context.
type ServiceManager interface {
	// IsAvailable returns true if systemd (systemctl) is available on the system.
	IsAvailable() bool

	// Stop stops the named service.
	Stop(ctx context.Context, name string) error

	// Disable disables the named service from starting on boot.
	Disable(ctx context.Context, name string) error

	// Reload executes systemctl daemon-reload to pick up unit file changes.
	Reload(ctx context.Context) error

	// Enable enables the named service to start on boot.
	Enable(ctx context.Context, name string) error

	// Start starts the named service. Install never calls Start; it is the
	// explicit opt-in behind the --start flag.
	Start(ctx context.Context, name string) error

	// IsActive returns true if the named service is currently running.
	IsActive(ctx context.Context, name string) bool
}

// FileStager abstracts the privileged file operations of an installation.
// All methods that modify state must be idempotent: repeating an operation
// that is already applied returns nil.
type FileStager interface {
	// CopyIfNewer copies src to dst unless dst exists and is at least as
	// new as src (mtime comparison).
	CopyIfNewer(src, dst string) error

	// CopyAlways copies src to dst unconditionally.
	CopyAlways(src, dst string) error

	// EnsureDir creates path (and parents) if absent.
	EnsureDir(path string, perm os.FileMode) error

	// AddExecuteBit adds execute-for-owner to path, leaving other mode
	// bits untouched.
	AddExecuteBit(path string) error

	// WriteFile writes generated content to path atomically.
	WriteFile(path string, data []byte, perm os.FileMode) error
}

// RootChecker abstracts privilege checking for testability.
type RootChecker interface {
	// IsRoot returns true if the current process has root privileges.
	IsRoot() bool
}
