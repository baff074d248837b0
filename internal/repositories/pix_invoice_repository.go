package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
)

type pixInvoiceRepository struct {
	db *sql.DB
}

// NewPixInvoiceRepository creates a new pix invoice repository
func NewPixInvoiceRepository(db *sql.DB) *pixInvoiceRepository {
	return &pixInvoiceRepository{
		db: db,
	}
}

// Create records the mapping from a gateway invoice id to the buyer and
// course it was created for
func (r *pixInvoiceRepository) Create(ctx context.Context, invoice *models.PixInvoice) error {
	query := `
		INSERT INTO pix_invoices (invoice_id, user_id, course_id, amount_cents)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.InvoiceID,
		invoice.UserID,
		invoice.CourseID,
		invoice.AmountCents,
	)
	if err != nil {
		return fmt.Errorf("failed to create pix invoice: %w", err)
	}

	return nil
}

// GetByID retrieves a pix invoice mapping by the gateway invoice id
func (r *pixInvoiceRepository) GetByID(ctx context.Context, invoiceID string) (*models.PixInvoice, error) {
	query := `
		SELECT invoice_id, user_id, course_id, amount_cents, created_at
		FROM pix_invoices
		WHERE invoice_id = ?
		LIMIT 1
	`

	var invoice models.PixInvoice
	err := r.db.QueryRowContext(ctx, query, invoiceID).Scan(
		&invoice.InvoiceID,
		&invoice.UserID,
		&invoice.CourseID,
		&invoice.AmountCents,
		&invoice.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invoice not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pix invoice: %w", err)
	}

	return &invoice, nil
}
