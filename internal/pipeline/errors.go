package pipeline

import "fmt"

// Stage names the pipeline phase an error belongs to. Config and connect
// errors abort a run before any report executes; query, transform, and
// write errors are scoped to one report; delivery errors flag the whole run
// failed after the files are already on disk.
type Stage string

const (
	StageConfig    Stage = "config"
	StageConnect   Stage = "connect"
	StageQuery     Stage = "query"
	StageTransform Stage = "transform"
	StageWrite     Stage = "write"
	StageDelivery  Stage = "delivery"
)

// StageError wraps an error with the stage and report it happened in.
// Report is empty for run-level stages (config, connect, delivery).
type StageError struct {
	Stage  Stage
	Report string
	Err    error
}

func (e *StageError) Error() string {
	if e.Report == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: report %s: %v", e.Stage, e.Report, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
