// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"
)

// Status of a job run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusPartial   Status = "partial"
)

// Datasets tracked in processed_dates.
const (
	DatasetFXRates   = "fx_rates"
	DatasetPositions = "positions"
)

// FXRatesDataset is the processed_dates key for one currency pair. Each pair
// keeps its own watermark so a run over a subset leaves the others alone.
func FXRatesDataset(symbol string) string {
	return DatasetFXRates + "/" + symbol
}

var ErrRunNotFound = errors.New("run not found")

// Run is one invocation of an ingestion job.
type Run struct {
	ID          string
	Job         string
	Environment string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      Status
	Detail      string
}

type Journal interface {
	StartRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, runID string, status Status, detail string) error
	GetRun(ctx context.Context, runID string) (Run, error)
	MarkProcessed(ctx context.Context, dataset, date, runID string) error
	// LastProcessed returns the most recent date (YYYY-MM-DD) recorded for
	// dataset; ok is false when nothing has been recorded yet.
	LastProcessed(ctx context.Context, dataset string) (date string, ok bool, err error)
	Close() error
}
