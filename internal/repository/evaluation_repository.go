// Package repository archives evaluation results in sqlite so past runs
// can be queried and compared.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

var ErrNotFound = errors.New("evaluation not found")

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	ticket_number TEXT    NOT NULL,
	template      TEXT    NOT NULL,
	total_score   INTEGER NOT NULL,
	max_score     INTEGER NOT NULL,
	percentage    REAL    NOT NULL,
	band          TEXT    NOT NULL,
	passed        INTEGER NOT NULL,
	auto_fail     INTEGER NOT NULL,
	detail        TEXT    NOT NULL,
	archived_at   TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_ticket ON evaluations(ticket_number);
CREATE INDEX IF NOT EXISTS idx_evaluations_archived ON evaluations(archived_at);
`

type EvaluationRepository struct {
	db *sql.DB
}

func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Init creates the archive schema if it does not exist yet.
func (r *EvaluationRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init archive schema: %w", err)
	}
	return nil
}

// Save archives one evaluation. The full result is kept as JSON in the
// detail column; the indexed columns exist for querying.
func (r *EvaluationRepository) Save(ctx context.Context, result *models.EvaluationResult) error {
	detail, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal evaluation %s: %w", result.TicketNumber, err)
	}

	const query = `
		INSERT INTO evaluations
			(ticket_number, template, total_score, max_score, percentage, band, passed, auto_fail, detail, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		result.TicketNumber, result.Template,
		result.TotalScore, result.MaxScore, result.Percentage,
		string(result.Band), result.Passed, result.AutoFail,
		string(detail), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert evaluation %s: %w", result.TicketNumber, err)
	}
	return nil
}

// SaveBatch archives a set of results in one transaction.
func (r *EvaluationRepository) SaveBatch(ctx context.Context, results []*models.EvaluationResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO evaluations
			(ticket_number, template, total_score, max_score, percentage, band, passed, auto_fail, detail, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare archive insert: %w", err)
	}
	defer stmt.Close()

	archivedAt := time.Now().UTC().Format(time.RFC3339)
	for _, result := range results {
		detail, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal evaluation %s: %w", result.TicketNumber, err)
		}
		if _, err := stmt.ExecContext(ctx,
			result.TicketNumber, result.Template,
			result.TotalScore, result.MaxScore, result.Percentage,
			string(result.Band), result.Passed, result.AutoFail,
			string(detail), archivedAt); err != nil {
			return fmt.Errorf("insert evaluation %s: %w", result.TicketNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Latest returns the most recently archived evaluation for a ticket.
func (r *EvaluationRepository) Latest(ctx context.Context, ticketNumber string) (*models.EvaluationResult, error) {
	const query = `
		SELECT detail FROM evaluations
		WHERE ticket_number = ?
		ORDER BY id DESC
		LIMIT 1
	`
	var detail string
	err := r.db.QueryRowContext(ctx, query, ticketNumber).Scan(&detail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticketNumber)
		}
		return nil, fmt.Errorf("query Latest: %w", err)
	}

	var result models.EvaluationResult
	if err := json.Unmarshal([]byte(detail), &result); err != nil {
		return nil, fmt.Errorf("decode evaluation %s: %w", ticketNumber, err)
	}
	return &result, nil
}

// History returns archived summaries for a ticket, newest first.
func (r *EvaluationRepository) History(ctx context.Context, ticketNumber string, limit int) ([]*models.EvaluationResult, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT detail FROM evaluations
		WHERE ticket_number = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, ticketNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("query History: %w", err)
	}
	defer rows.Close()

	var results []*models.EvaluationResult
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("scan History row: %w", err)
		}
		var result models.EvaluationResult
		if err := json.Unmarshal([]byte(detail), &result); err != nil {
			return nil, fmt.Errorf("decode evaluation %s: %w", ticketNumber, err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// PassRate computes the archive-wide pass rate for a template since a
// given time, entirely in SQL.
func (r *EvaluationRepository) PassRate(ctx context.Context, template string, since time.Time) (float64, int64, error) {
	const query = `
		SELECT
			CASE WHEN COUNT(*) > 0
				THEN SUM(CAST(passed AS REAL)) * 100.0 / COUNT(*)
				ELSE 0
			END AS pass_rate,
			COUNT(*) AS count
		FROM evaluations
		WHERE template = ? AND archived_at >= ?
	`
	var rate sql.NullFloat64
	var count sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, template, since.UTC().Format(time.RFC3339)).Scan(&rate, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("query PassRate: %w", err)
	}
	return rate.Float64, count.Int64, nil
}
