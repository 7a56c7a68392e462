package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/seltra-ai/be-cpq-quotes/internal/database"
	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// ApprovalRulesRepository handles CRUD for quote_approval_rules.
type ApprovalRulesRepository struct {
	db *database.DB
}

// NewApprovalRulesRepository creates a new ApprovalRulesRepository.
func NewApprovalRulesRepository(db *database.DB) *ApprovalRulesRepository {
	return &ApprovalRulesRepository{db: db}
}

// Create inserts a new approval rule.
func (r *ApprovalRulesRepository) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	query := `
		INSERT INTO quote_approval_rules
		    (margin_min, margin_max, required_role, is_active, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	return r.db.QueryRow(ctx, query,
		rule.MarginMin,
		rule.MarginMax,
		rule.RequiredRole,
		rule.IsActive,
		rule.Priority,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

// List returns all rules, optionally filtered to active only, ordered the way
// the rule set evaluates them (margin_min ascending, nulls first, then
// insertion order).
func (r *ApprovalRulesRepository) List(ctx context.Context, activeOnly bool) ([]domain.ApprovalRule, error) {
	query := `
		SELECT id, margin_min, margin_max, required_role, is_active, priority,
		       created_at, updated_at
		FROM quote_approval_rules
	`
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY margin_min ASC NULLS FIRST, priority ASC, created_at ASC"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list approval rules")
	}
	defer rows.Close()

	var rules []domain.ApprovalRule
	for rows.Next() {
		var rule domain.ApprovalRule
		err := rows.Scan(
			&rule.ID,
			&rule.MarginMin,
			&rule.MarginMax,
			&rule.RequiredRole,
			&rule.IsActive,
			&rule.Priority,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan approval rule")
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ListActive returns only the active rules.
func (r *ApprovalRulesRepository) ListActive(ctx context.Context) ([]domain.ApprovalRule, error) {
	return r.List(ctx, true)
}

// Update persists changes to an existing rule.
func (r *ApprovalRulesRepository) Update(ctx context.Context, rule *domain.ApprovalRule) error {
	query := `
		UPDATE quote_approval_rules
		SET margin_min    = $2,
		    margin_max    = $3,
		    required_role = $4,
		    is_active     = $5,
		    priority      = $6,
		    updated_at    = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rule.ID,
		rule.MarginMin,
		rule.MarginMax,
		rule.RequiredRole,
		rule.IsActive,
		rule.Priority,
	).Scan(&rule.UpdatedAt)

	if err == pgx.ErrNoRows {
		return errors.NotFound("approval_rule", rule.ID)
	}
	return err
}

// Delete removes an approval rule.
func (r *ApprovalRulesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quote_approval_rules WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete approval rule")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("approval_rule", id)
	}
	return nil
}
