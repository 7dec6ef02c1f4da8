// Package extract downloads daily FX aggregates for the configured pairs
// and lands the raw responses for downstream ingestion.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/rustyeddy/fxrisk/internal/logger"
	"github.com/rustyeddy/fxrisk/internal/telemetry"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/storage"
)

const JobName = "extract_fx_rates"

// ErrPartialFailure is returned with the Summary when at least one pair
// could not be fetched or written.
var ErrPartialFailure = errors.New("extract: some currency pairs failed")

// Fetcher returns the raw aggregate response for one pair and date range.
// *polygon.Client satisfies it.
type Fetcher interface {
	DailyAggregates(ctx context.Context, symbol, from, to string) ([]byte, error)
}

// Request names the pairs and inclusive date range for one run.
type Request struct {
	Environment string
	Symbols     []string
	From        string // YYYY-MM-DD, inclusive
	To          string // YYYY-MM-DD, inclusive
	OutputDir   string
}

// Summary reports how many pairs a run fetched and which failed.
type Summary struct {
	RunID     string
	From      string
	To        string
	Total     int
	Succeeded int
	Failed    []string
}

// Job downloads each requested pair through Fetcher and lands the raw
// response with Writer. Journal, Metrics and Logger are optional.
type Job struct {
	Fetcher Fetcher
	Writer  storage.Writer
	Journal journal.Journal // optional
	Metrics *telemetry.Metrics
	Logger  *logger.Logger
}

// ResolveFromDate picks the first date to fetch for symbols: the earliest of
// their last recorded dates, or minimumDate when any of them has never been
// fetched. The last processed date is fetched again so late revisions are
// picked up.
func ResolveFromDate(ctx context.Context, j journal.Journal, symbols []string, minimumDate string) (string, error) {
	if j == nil || len(symbols) == 0 {
		return minimumDate, nil
	}
	from := ""
	for _, symbol := range symbols {
		last, ok, err := j.LastProcessed(ctx, journal.FXRatesDataset(symbol))
		if err != nil {
			return "", fmt.Errorf("extract: last processed date for %s: %w", symbol, err)
		}
		if !ok {
			return minimumDate, nil
		}
		if from == "" || last < from {
			from = last
		}
	}
	return from, nil
}

// FileName is the landing file name for one pair and date range.
func FileName(symbol, from, to string) string {
	return fmt.Sprintf("%s_%s_%s.json", symbol, from, to)
}

func (r Request) validate() error {
	from, err := time.Parse(time.DateOnly, r.From)
	if err != nil {
		return fmt.Errorf("extract: from date: %w", err)
	}
	to, err := time.Parse(time.DateOnly, r.To)
	if err != nil {
		return fmt.Errorf("extract: to date: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("extract: to date %s is before from date %s", r.To, r.From)
	}
	return nil
}

// Run fetches every symbol in order. A failing pair is logged and recorded
// in Summary.Failed; the remaining pairs are still processed.
func (j *Job) Run(ctx context.Context, req Request) (Summary, error) {
	if j.Fetcher == nil {
		return Summary{}, fmt.Errorf("extract: Fetcher is required")
	}
	if j.Writer == nil {
		return Summary{}, fmt.Errorf("extract: Writer is required")
	}
	if err := req.validate(); err != nil {
		return Summary{}, err
	}

	log := j.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	sum := Summary{
		RunID: id.New(),
		From:  req.From,
		To:    req.To,
		Total: len(req.Symbols),
	}
	log = log.Component(JobName)
	log.Info().
		Str("run_id", sum.RunID).
		Str("from", req.From).
		Str("to", req.To).
		Int("pairs", sum.Total).
		Str("output_dir", req.OutputDir).
		Msg("extracting fx rates")

	if j.Journal != nil {
		err := j.Journal.StartRun(ctx, journal.Run{ID: sum.RunID, Job: JobName, Environment: req.Environment})
		if err != nil {
			return sum, fmt.Errorf("extract: start run: %w", err)
		}
	}

	var fetched []string
	for _, symbol := range req.Symbols {
		if err := ctx.Err(); err != nil {
			j.finish(ctx, log, &sum, fetched, err)
			return sum, err
		}

		n, err := j.fetchOne(ctx, req, symbol)
		j.Metrics.PairFetched(symbol, err == nil)
		if err != nil {
			sum.Failed = append(sum.Failed, symbol)
			log.Error().Err(err).Str("symbol", symbol).Msg("download failed")
			continue
		}
		sum.Succeeded++
		fetched = append(fetched, symbol)
		j.Metrics.BytesWritten(journal.DatasetFXRates, n)
		log.Info().Str("symbol", symbol).Int("bytes", n).Msg("downloaded")
	}

	var runErr error
	if len(sum.Failed) > 0 {
		runErr = fmt.Errorf("%w: %d of %d (%v)", ErrPartialFailure, len(sum.Failed), sum.Total, sum.Failed)
	}
	j.finish(ctx, log, &sum, fetched, runErr)
	return sum, runErr
}

func (j *Job) fetchOne(ctx context.Context, req Request, symbol string) (int, error) {
	data, err := j.Fetcher.DailyAggregates(ctx, symbol, req.From, req.To)
	if err != nil {
		return 0, err
	}
	p := path.Join(req.OutputDir, FileName(symbol, req.From, req.To))
	if err := j.Writer.Put(ctx, p, data, true); err != nil {
		return 0, err
	}
	return len(data), nil
}

// finish advances the watermark of every pair in fetched, including on
// partial runs, since a failed pair keeps its own earlier date.
func (j *Job) finish(ctx context.Context, log *logger.Logger, sum *Summary, fetched []string, runErr error) {
	status := journal.StatusSucceeded
	switch {
	case errors.Is(runErr, ErrPartialFailure) && sum.Succeeded > 0:
		status = journal.StatusPartial
	case runErr != nil:
		status = journal.StatusFailed
	}
	detail := fmt.Sprintf("%d/%d pairs", sum.Succeeded, sum.Total)
	if runErr != nil {
		detail = runErr.Error()
	}

	j.Metrics.RunFinished(JobName, string(status))
	if status == journal.StatusSucceeded {
		j.Metrics.RunSucceeded(JobName, float64(time.Now().Unix()))
	}

	if j.Journal != nil {
		for _, symbol := range fetched {
			if err := j.Journal.MarkProcessed(ctx, journal.FXRatesDataset(symbol), sum.To, sum.RunID); err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("mark processed")
			}
		}
		if err := j.Journal.FinishRun(ctx, sum.RunID, status, detail); err != nil {
			log.Warn().Err(err).Msg("finish run")
		}
	}

	log.Info().
		Str("run_id", sum.RunID).
		Str("status", string(status)).
		Int("total", sum.Total).
		Int("succeeded", sum.Succeeded).
		Strs("failed", sum.Failed).
		Msg("extraction summary")
}
