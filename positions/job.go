package positions

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/internal/logger"
	"github.com/rustyeddy/fxrisk/internal/telemetry"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/storage"
)

const JobName = "generate_positions"

// Job generates a day of positions and lands them under
// storage.raw_data.positions. A nil Logger falls back to the one carried by
// the context passed to Run.
type Job struct {
	Config  *config.Pipeline
	Writer  storage.Writer
	Journal journal.Journal // optional
	Metrics *telemetry.Metrics
	Logger  *logger.Logger

	// Options are passed to NewGenerator, e.g. WithRand for a fixed seed.
	Options []Option
}

// Result describes one completed run.
type Result struct {
	RunID   string
	Path    string
	Records []Record
	Summary []DirectionSummary
}

// Run generates positions for date and writes them, replacing any earlier
// file for the same day.
func (j *Job) Run(ctx context.Context, date time.Time) (Result, error) {
	if j.Config == nil {
		return Result{}, fmt.Errorf("positions: Config is required")
	}
	if j.Writer == nil {
		return Result{}, fmt.Errorf("positions: Writer is required")
	}
	log := j.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	res := Result{
		RunID: id.New(),
		Path:  path.Join(j.Config.PositionsRawPath(), FileName(date)),
	}
	log = log.Component(JobName)
	log.Info().Str("run_id", res.RunID).Str("date", date.Format(time.DateOnly)).Msg("generating positions")

	if j.Journal != nil {
		err := j.Journal.StartRun(ctx, journal.Run{
			ID:          res.RunID,
			Job:         JobName,
			Environment: j.Config.Environment(),
		})
		if err != nil {
			return res, fmt.Errorf("positions: start run: %w", err)
		}
	}

	err := j.generate(ctx, date, &res)
	j.finish(ctx, log, date, &res, err)
	return res, err
}

func (j *Job) generate(ctx context.Context, date time.Time, res *Result) error {
	gen, err := NewGenerator(ParamsFrom(j.Config), j.Options...)
	if err != nil {
		return err
	}

	res.Records = gen.Generate(date, j.Config.OrderedBasePositions())
	res.Summary = Summarize(res.Records)

	data, err := EncodeJSONLines(res.Records)
	if err != nil {
		return fmt.Errorf("positions: encode: %w", err)
	}
	if err := j.Writer.Put(ctx, res.Path, data, true); err != nil {
		return fmt.Errorf("positions: write: %w", err)
	}

	j.Metrics.BytesWritten(journal.DatasetPositions, len(data))
	for _, r := range res.Records {
		j.Metrics.PositionGenerated(string(r.Direction))
	}
	return nil
}

func (j *Job) finish(ctx context.Context, log *logger.Logger, date time.Time, res *Result, runErr error) {
	status := journal.StatusSucceeded
	detail := fmt.Sprintf("%d positions", len(res.Records))
	if runErr != nil {
		status = journal.StatusFailed
		detail = runErr.Error()
	}

	j.Metrics.RunFinished(JobName, string(status))
	if runErr == nil {
		j.Metrics.RunSucceeded(JobName, float64(time.Now().Unix()))
	}

	if j.Journal != nil {
		if runErr == nil {
			if err := j.Journal.MarkProcessed(ctx, journal.DatasetPositions, date.Format(time.DateOnly), res.RunID); err != nil {
				log.Warn().Err(err).Msg("mark processed")
			}
		}
		if err := j.Journal.FinishRun(ctx, res.RunID, status, detail); err != nil {
			log.Warn().Err(err).Msg("finish run")
		}
	}

	if runErr != nil {
		log.Error().Err(runErr).Str("run_id", res.RunID).Msg("position generation failed")
		return
	}
	for _, s := range res.Summary {
		log.Info().
			Str("direction", string(s.Direction)).
			Int("count", s.Count).
			Float64("total", s.Sum).
			Float64("mean", s.Mean).
			Msg("positions by direction")
	}
	log.Info().Str("run_id", res.RunID).Str("path", res.Path).Int("records", len(res.Records)).Msg("positions written")
}
