package deploy

import "context"

// Step names, in execution order.
const (
	StepValidate         = "validate"
	StepStopDisablePrior = "stop-disable-prior"
	StepStageRuntime     = "stage-runtime"
	StepStageConfig      = "stage-config"
	StepEnsureLogDir     = "ensure-log-dir"
	StepSetExecutable    = "set-executable"
	StepStageUnitFile    = "stage-unit-file"
	StepReloadDaemons    = "reload-daemons"
	StepEnableUnit       = "enable-unit"
)

// Step is one named unit of installation work. A mandatory step's failure
// aborts the run; a non-mandatory step's failure is recorded and the run
// continues.
type Step struct {
	Name      string
	Mandatory bool

	run func(ctx context.Context) error
}

// Result records the outcome of one executed step.
type Result struct {
	Step string
	OK   bool

	// Detail carries the error text for failed steps, or a short note
	// (e.g. "skipped, destination up to date") for notable successes.
	Detail string
}
