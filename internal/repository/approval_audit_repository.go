package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seltra-ai/be-cpq-quotes/internal/database"
	"github.com/seltra-ai/be-cpq-quotes/internal/errors"
)

// QuoteAuditEntry is one immutable record in the approval audit log.
type QuoteAuditEntry struct {
	ID                string
	QuoteID           string
	ApprovalRequestID *string
	Action            string // approval_requested | approved | rejected | escalated
	PerformedBy       string
	PerformedAt       time.Time
	QuoteStatusBefore *string
	QuoteStatusAfter  *string
	Metadata          map[string]interface{}
}

// ApprovalAuditRepository appends and reads immutable approval audit entries.
type ApprovalAuditRepository struct {
	db *database.DB
}

// NewApprovalAuditRepository creates a new ApprovalAuditRepository.
func NewApprovalAuditRepository(db *database.DB) *ApprovalAuditRepository {
	return &ApprovalAuditRepository{db: db}
}

// Append inserts one audit entry. The table is append-only; this is the only
// mutation exposed.
func (r *ApprovalAuditRepository) Append(ctx context.Context, entry *QuoteAuditEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal audit metadata")
		}
	}

	query := `
		INSERT INTO quote_approval_audit_log
		    (quote_id, approval_request_id, action, performed_by,
		     quote_status_before, quote_status_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, performed_at
	`

	return r.db.QueryRow(ctx, query,
		entry.QuoteID,
		entry.ApprovalRequestID,
		entry.Action,
		entry.PerformedBy,
		entry.QuoteStatusBefore,
		entry.QuoteStatusAfter,
		metadataJSON,
	).Scan(&entry.ID, &entry.PerformedAt)
}

// GetByQuoteID returns the full audit trail for a quote ordered oldest-first.
func (r *ApprovalAuditRepository) GetByQuoteID(ctx context.Context, quoteID string) ([]*QuoteAuditEntry, error) {
	query := `
		SELECT id, quote_id, approval_request_id, action, performed_by, performed_at,
		       quote_status_before, quote_status_after, metadata
		FROM quote_approval_audit_log
		WHERE quote_id = $1
		ORDER BY performed_at ASC
	`

	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get audit log")
	}
	defer rows.Close()

	var entries []*QuoteAuditEntry
	for rows.Next() {
		entry := &QuoteAuditEntry{}
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.QuoteID,
			&entry.ApprovalRequestID,
			&entry.Action,
			&entry.PerformedBy,
			&entry.PerformedAt,
			&entry.QuoteStatusBefore,
			&entry.QuoteStatusAfter,
			&metadataJSON,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan audit entry")
		}

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to unmarshal audit metadata")
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
