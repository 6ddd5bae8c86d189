package deploy

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports invalid installer input. It is returned before any
// host state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("deploy: invalid %s: %s", e.Field, e.Reason)
}

// ServiceManagerError reports a failed systemctl invocation.
type ServiceManagerError struct {
	// Op is the systemctl verb that failed (stop, enable, ...).
	Op string

	// Code is the systemctl exit status, or -1 if the command could not run.
	Code int

	// Message is the trimmed combined output of the failed command.
	Message string
}

func (e *ServiceManagerError) Error() string {
	return fmt.Sprintf("deploy: systemctl %s: exit %d: %s", e.Op, e.Code, e.Message)
}

// FileStagerError reports a failed file staging operation.
type FileStagerError struct {
	Path string
	Err  error
}

func (e *FileStagerError) Error() string {
	return fmt.Sprintf("deploy: stage %s: %v", e.Path, e.Err)
}

func (e *FileStagerError) Unwrap() error { return e.Err }

// ErrInsufficientSpace is wrapped by FileStagerError when the free-space
// preflight rejects a write.
var ErrInsufficientSpace = errors.New("insufficient free space on destination filesystem")

// systemctl exits 5 when asked to operate on a unit it does not know.
const exitUnitNotFound = 5

// IsUnitNotFound reports whether err means the unit is unknown to systemd.
// Stop and disable of a never-installed service fail this way; the installer
// treats that as success on a first-time install.
func IsUnitNotFound(err error) bool {
	var smErr *ServiceManagerError
	if !errors.As(err, &smErr) {
		return false
	}
	if smErr.Code == exitUnitNotFound {
		return true
	}
	msg := strings.ToLower(smErr.Message)
	return strings.Contains(msg, "not loaded") ||
		strings.Contains(msg, "could not be found") ||
		strings.Contains(msg, "does not exist")
}
