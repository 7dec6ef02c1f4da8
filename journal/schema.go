// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	job TEXT NOT NULL,
	environment TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS processed_dates (
	dataset TEXT NOT NULL,
	date TEXT NOT NULL,
	run_id TEXT NOT NULL,
	recorded_at DATETIME NOT NULL,
	PRIMARY KEY (dataset, date)
);

CREATE INDEX IF NOT EXISTS idx_runs_job ON runs(job, started_at);
`
