package ct

import (
	"database/sql"
	"time"
)

// Mode is the direction of one invocation.
type Mode string

const (
	ModeCrypt   Mode = "crypt"
	ModeDecrypt Mode = "decrypt"
)

// Operation statuses recorded in the journal.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is the journal record of one crypt or decrypt invocation.
// ID is zero until the operation has been stored.
type Operation struct {
	ID          int64
	RunID       string
	Mode        Mode
	Target      string
	Destination string
	ItemCount   int
	StartedAt   time.Time
	FinishedAt  sql.NullTime
	Status      string
	Error       string
}

// Persisted returns true if this operation has been saved to the journal.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Journal stores a history of operations.
type Journal interface {
	// StartOperation stores op and assigns its ID.
	StartOperation(op *Operation) error

	// FinishOperation records op's final status, error and finish time.
	FinishOperation(op *Operation) error

	// ListOperations returns up to limit operations, newest first.
	ListOperations(limit int) ([]*Operation, error)

	Close() error
}

// NopJournal keeps nothing. It is used when the journal is disabled.
type NopJournal struct {
	nextID int64
}

func (j *NopJournal) StartOperation(op *Operation) error {
	j.nextID++
	op.ID = j.nextID
	return nil
}

func (j *NopJournal) FinishOperation(*Operation) error         { return nil }
func (j *NopJournal) ListOperations(int) ([]*Operation, error) { return nil, nil }
func (j *NopJournal) Close() error                             { return nil }
