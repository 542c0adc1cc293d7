package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qualiobra/internal/model"
)

// ErrDuplicateAnswer is returned when a record id is already taken by another answer
var ErrDuplicateAnswer = errors.New("answer already recorded for this session and item")

const pqUniqueViolation = "23505"

type pgAnswerRepo struct {
	db *sql.DB
}

// NewPGAnswerRepo creates a Postgres-backed answer repository
func NewPGAnswerRepo(db *sql.DB) AnswerRepo {
	return &pgAnswerRepo{db: db}
}

// InsertAnswers writes the whole batch in one transaction. A stored
// (session, item) pair is overwritten, keeping its original id.
func (r *pgAnswerRepo) InsertAnswers(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostic_answers (id, session_id, user_id, level, item_id, score, note, answered_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, item_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			level = EXCLUDED.level,
			score = EXCLUDED.score,
			note = EXCLUDED.note,
			answered_at = EXCLUDED.answered_at,
			created_at = EXCLUDED.created_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		score := sql.NullInt64{Int64: int64(rec.Score), Valid: rec.Score > 0}
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.SessionID, rec.UserID, rec.Level, rec.ItemID, score, rec.Note, rec.AnsweredAt, rec.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return fmt.Errorf("item %s: %w", rec.ItemID, ErrDuplicateAnswer)
			}
			return fmt.Errorf("failed to insert answer for item %s: %w", rec.ItemID, err)
		}
	}
	return tx.Commit()
}

func (r *pgAnswerRepo) GetBySessionID(ctx context.Context, sessionID string) ([]model.AnswerRecord, error) {
	query := `
		SELECT id, session_id, user_id, level, item_id, score, note, answered_at, created_at
		FROM diagnostic_answers WHERE session_id = $1 ORDER BY item_id
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AnswerRecord{}
	for rows.Next() {
		var rec model.AnswerRecord
		var score sql.NullInt64
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.UserID,
			&rec.Level,
			&rec.ItemID,
			&score,
			&rec.Note,
			&rec.AnsweredAt,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if score.Valid {
			rec.Score = int(score.Int64)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *pgAnswerRepo) ListSessionsByUser(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	query := `
		SELECT session_id, MIN(level), COUNT(*), MAX(created_at)
		FROM diagnostic_answers WHERE user_id = $1
		GROUP BY session_id ORDER BY MAX(created_at) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.SessionSummary{}
	for rows.Next() {
		var s model.SessionSummary
		if err := rows.Scan(&s.SessionID, &s.Level, &s.AnswerCount, &s.CommittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
