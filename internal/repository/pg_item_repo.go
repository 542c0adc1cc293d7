package repository

import (
	"context"
	"database/sql"
	"fmt"

	"qualiobra/internal/model"
)

type pgItemRepo struct {
	db *sql.DB
}

// NewPGItemRepo creates a Postgres-backed item repository
func NewPGItemRepo(db *sql.DB) ItemRepo {
	return &pgItemRepo{db: db}
}

const itemColumns = `id, normative_reference, applicable_level, requirement_code, requirement_title, description, scoring_kind, display_order, active`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*model.QuestionnaireItem, error) {
	var it model.QuestionnaireItem
	err := row.Scan(
		&it.ID,
		&it.NormativeReference,
		&it.ApplicableLevel,
		&it.RequirementCode,
		&it.RequirementTitle,
		&it.Description,
		&it.ScoringKind,
		&it.DisplayOrder,
		&it.Active,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *pgItemRepo) GetActive(ctx context.Context) ([]model.QuestionnaireItem, error) {
	query := `SELECT ` + itemColumns + ` FROM diagnostic_items WHERE active = TRUE ORDER BY display_order`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.QuestionnaireItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *pgItemRepo) GetByID(ctx context.Context, id string) (*model.QuestionnaireItem, error) {
	query := `SELECT ` + itemColumns + ` FROM diagnostic_items WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (r *pgItemRepo) Upsert(ctx context.Context, items []model.QuestionnaireItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostic_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			normative_reference = $2,
			applicable_level = $3,
			requirement_code = $4,
			requirement_title = $5,
			description = $6,
			scoring_kind = $7,
			display_order = $8,
			active = $9
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, it.NormativeReference, it.ApplicableLevel, it.RequirementCode, it.RequirementTitle,
			it.Description, it.ScoringKind, it.DisplayOrder, it.Active)
		if err != nil {
			return fmt.Errorf("failed to upsert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}
