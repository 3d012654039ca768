package storage

import (
	"errors"

	"tradenet/models"
)

// ErrRunNotFound is returned by FetchRun when no run has the given id.
var ErrRunNotFound = errors.New("run not found")

// LinkWriter is the interface any link sink must satisfy.
type LinkWriter interface {
	Write(table *models.LinkTable) error
	Close() error
}

// LinkReader is implemented by sinks that can read a run back.
type LinkReader interface {
	FetchRun(runID string) (*models.LinkTable, error)
}

// LinkStore is a database sink: it writes runs and reads them back.
type LinkStore interface {
	LinkWriter
	LinkReader
}
