package app

import (
	"ct-go/internal/ct"
)

// newOperation creates an in-memory journal record for one invocation.
// It gets an ID once the journal stores it.
func newOperation(runID string, mode ct.Mode, target string, itemCount int) *ct.Operation {
	return &ct.Operation{
		RunID:     runID,
		Mode:      mode,
		Target:    target,
		ItemCount: itemCount,
		Status:    ct.StatusRunning,
	}
}

// settle sets the operation's final status from the outcome of the run.
func settle(op *ct.Operation, destination string, err error) {
	op.Destination = destination
	if err != nil {
		op.Status = ct.StatusError
		op.Error = err.Error()
		return
	}
	op.Status = ct.StatusSuccess
	op.Error = ""
}
