package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/seltra-ai/be-cpq-quotes/internal/database"
	"github.com/seltra-ai/be-cpq-quotes/internal/domain"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// QuoteRepository handles quote persistence. Status changes are persisted
// atomically per quote (a single UPDATE in Save).
type QuoteRepository struct {
	db *database.DB
}

// NewQuoteRepository creates a new quote repository.
func NewQuoteRepository(db *database.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a quote and its items in one transaction.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.InTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO quotes (quote_number, customer_name, region, status, created_by,
			                    subtotal, total_cost, total_tax, total_freight,
			                    total_offered, total_margin_percent)
			VALUES ($1, $2, $3, $4::quote_status, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRow(ctx, query,
			quote.QuoteNumber,
			quote.CustomerName,
			quote.Region,
			string(quote.Status),
			quote.CreatedBy,
			quote.Totals.Subtotal,
			quote.Totals.TotalCost,
			quote.Totals.TotalTax,
			quote.Totals.TotalFreight,
			quote.Totals.TotalOffered,
			quote.Totals.TotalMarginPercent,
		).Scan(&quote.ID, &quote.CreatedAt, &quote.UpdatedAt)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create quote")
		}

		itemQuery := `
			INSERT INTO quote_items (quote_id, line_number, product_code, description,
			                         quantity, unit_cost, unit_price, freight_amount, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`

		for _, item := range quote.Items {
			item.QuoteID = quote.ID
			err := tx.QueryRow(ctx, itemQuery,
				item.QuoteID,
				item.LineNumber,
				item.ProductCode,
				item.Description,
				item.Quantity,
				item.UnitCost,
				item.UnitPrice,
				item.FreightAmount,
				item.TaxRate,
			).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to create quote item")
			}
		}

		return nil
	})
}

// FindByID retrieves a quote with all its items.
func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*domain.Quote, error) {
	query := `
		SELECT id, quote_number, customer_name, region, status, created_by,
		       subtotal, total_cost, total_tax, total_freight,
		       total_offered, total_margin_percent,
		       approved_by, approved_at, approval_notes,
		       created_at, updated_by, updated_at
		FROM quotes
		WHERE id = $1
	`

	quote, err := r.scanQuote(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, err
	}

	items, err := r.GetItems(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	quote.Items = items

	return quote, nil
}

// GetItems retrieves all items for a quote ordered by line number.
func (r *QuoteRepository) GetItems(ctx context.Context, quoteID string) ([]*domain.QuoteItem, error) {
	query := `
		SELECT id, quote_id, line_number, product_code, description,
		       quantity, unit_cost, unit_price, freight_amount, tax_rate,
		       created_at, updated_at
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY line_number
	`

	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get quote items")
	}
	defer rows.Close()

	items := make([]*domain.QuoteItem, 0)
	for rows.Next() {
		item := &domain.QuoteItem{}
		err := rows.Scan(
			&item.ID,
			&item.QuoteID,
			&item.LineNumber,
			&item.ProductCode,
			&item.Description,
			&item.Quantity,
			&item.UnitCost,
			&item.UnitPrice,
			&item.FreightAmount,
			&item.TaxRate,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan quote item")
		}
		items = append(items, item)
	}

	return items, nil
}

// List retrieves quotes with filtering and pagination. Items are not loaded.
func (r *QuoteRepository) List(ctx context.Context, status, customer *string, limit, offset int) ([]*domain.Quote, int64, error) {
	query := `
		SELECT id, quote_number, customer_name, region, status, created_by,
		       subtotal, total_cost, total_tax, total_freight,
		       total_offered, total_margin_percent,
		       approved_by, approved_at, approval_notes,
		       created_at, updated_by, updated_at
		FROM quotes
		WHERE TRUE
	`
	countQuery := `SELECT COUNT(*) FROM quotes WHERE TRUE`

	args := []any{}
	argCount := 1

	if status != nil {
		clause := fmt.Sprintf(" AND status = $%d::quote_status", argCount)
		query += clause
		countQuery += clause
		args = append(args, *status)
		argCount++
	}

	if customer != nil {
		clause := fmt.Sprintf(" AND customer_name ILIKE '%%' || $%d || '%%'", argCount)
		query += clause
		countQuery += clause
		args = append(args, *customer)
		argCount++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to count quotes")
	}

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to list quotes")
	}
	defer rows.Close()

	quotes := make([]*domain.Quote, 0)
	for rows.Next() {
		quote, err := r.scanQuote(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan quote")
		}
		quotes = append(quotes, quote)
	}

	return quotes, total, nil
}

// Save persists the quote's status, totals and approval fields in a single
// UPDATE so a status change is never half-written.
func (r *QuoteRepository) Save(ctx context.Context, quote *domain.Quote) error {
	query := `
		UPDATE quotes
		SET status               = $2::quote_status,
		    subtotal             = $3,
		    total_cost           = $4,
		    total_tax            = $5,
		    total_freight        = $6,
		    total_offered        = $7,
		    total_margin_percent = $8,
		    approved_by          = $9,
		    approved_at          = $10,
		    approval_notes       = $11,
		    updated_by           = $12,
		    updated_at           = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		quote.ID,
		string(quote.Status),
		quote.Totals.Subtotal,
		quote.Totals.TotalCost,
		quote.Totals.TotalTax,
		quote.Totals.TotalFreight,
		quote.Totals.TotalOffered,
		quote.Totals.TotalMarginPercent,
		quote.ApprovedBy,
		quote.ApprovedAt,
		quote.ApprovalNotes,
		quote.UpdatedBy,
	).Scan(&quote.UpdatedAt)

	if err == pgx.ErrNoRows {
		return errors.NotFound("quote", quote.ID)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save quote")
	}
	return nil
}

// ── scan helpers ─────────────────────────────────────────────────────────────

type quoteScanner interface {
	Scan(dest ...any) error
}

func (r *QuoteRepository) scanQuote(row quoteScanner) (*domain.Quote, error) {
	quote := &domain.Quote{}
	var rawStatus string

	err := row.Scan(
		&quote.ID,
		&quote.QuoteNumber,
		&quote.CustomerName,
		&quote.Region,
		&rawStatus,
		&quote.CreatedBy,
		&quote.Totals.Subtotal,
		&quote.Totals.TotalCost,
		&quote.Totals.TotalTax,
		&quote.Totals.TotalFreight,
		&quote.Totals.TotalOffered,
		&quote.Totals.TotalMarginPercent,
		&quote.ApprovedBy,
		&quote.ApprovedAt,
		&quote.ApprovalNotes,
		&quote.CreatedAt,
		&quote.UpdatedBy,
		&quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unknown status values are rejected at the boundary instead of flowing
	// through as unchecked strings.
	status, err := domain.ParseQuoteStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	quote.Status = status

	return quote, nil
}
