package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"training-plan-wizard/internal/domain"
	"training-plan-wizard/internal/domain/model"
	"training-plan-wizard/internal/domain/ports/repository"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
	id            TEXT PRIMARY KEY,
	job_id        TEXT NOT NULL UNIQUE,
	user_id       TEXT NOT NULL,
	race_id       INTEGER NOT NULL,
	submitted_at  TIMESTAMP NOT NULL,
	outcome       TEXT NOT NULL DEFAULT '',
	result_plan_id TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(user_id, submitted_at DESC);
`

var _ repository.SubmissionHistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo stores generation attempts in a local sqlite file.
type HistoryRepo struct {
	db *sql.DB
}

// Open connects to the sqlite file at path, creating directories and schema
// as needed.
func Open(path string) (*HistoryRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &HistoryRepo{db: db}, nil
}

func (r *HistoryRepo) Close() error { return r.db.Close() }

func (r *HistoryRepo) RecordSubmission(ctx context.Context, rec *model.SubmissionRecord) error {
	const q = `INSERT INTO submissions (id, job_id, user_id, race_id, submitted_at)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rec.ID, rec.JobID, rec.UserID, rec.RaceID, rec.SubmittedAt)
	return err
}

func (r *HistoryRepo) RecordOutcome(ctx context.Context, jobID, outcome, resultPlanID, errorMessage string) error {
	const q = `UPDATE submissions SET outcome = ?, result_plan_id = ?, error_message = ?
	           WHERE job_id = ?`
	res, err := r.db.ExecContext(ctx, q, outcome, resultPlanID, errorMessage, jobID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HistoryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*model.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT id, job_id, user_id, race_id, submitted_at, outcome, result_plan_id, error_message
	           FROM submissions WHERE user_id = ? ORDER BY submitted_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*model.SubmissionRecord
	for rows.Next() {
		var rec model.SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.UserID, &rec.RaceID,
			&rec.SubmittedAt, &rec.Outcome, &rec.ResultPlanID, &rec.ErrorMessage); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
