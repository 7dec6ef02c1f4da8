package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/fxrisk/pkg/id"
)

type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// StartRun records r as running. A zero StartedAt is taken from the time
// stamped into a ULID run ID, or the clock when the ID is not one.
func (j *SQLite) StartRun(ctx context.Context, r Run) error {
	if r.StartedAt.IsZero() {
		if t, err := id.Time(r.ID); err == nil {
			r.StartedAt = t
		} else {
			r.StartedAt = j.now()
		}
	}
	if r.Status == "" {
		r.Status = StatusRunning
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, job, environment, started_at, status, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Job, r.Environment, r.StartedAt.UTC(), string(r.Status), r.Detail,
	)
	return err
}

func (j *SQLite) FinishRun(ctx context.Context, runID string, status Status, detail string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, detail = ?
		WHERE run_id = ?`,
		j.now().UTC(), string(status), detail, runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	var (
		r        Run
		status   string
		finished sql.NullTime
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT run_id, job, environment, started_at, finished_at, status, detail
		FROM runs WHERE run_id = ?`, runID,
	).Scan(&r.ID, &r.Job, &r.Environment, &r.StartedAt, &finished, &status, &r.Detail)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, err
	}
	r.Status = Status(status)
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return r, nil
}

func (j *SQLite) MarkProcessed(ctx context.Context, dataset, date, runID string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("mark processed %s: %w", dataset, err)
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO processed_dates (dataset, date, run_id, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(dataset, date) DO UPDATE SET run_id = excluded.run_id, recorded_at = excluded.recorded_at`,
		dataset, date, runID, j.now().UTC(),
	)
	return err
}

func (j *SQLite) LastProcessed(ctx context.Context, dataset string) (string, bool, error) {
	var date sql.NullString
	err := j.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM processed_dates WHERE dataset = ?`, dataset,
	).Scan(&date)
	if err != nil {
		return "", false, err
	}
	if !date.Valid {
		return "", false, nil
	}
	return date.String, true, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
