package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// mysqlDuplicateEntry is the MySQL error number for a unique constraint
// violation
const mysqlDuplicateEntry = 1062

// ErrAlreadyPurchased is returned when a purchase row already exists for
// the (user, course) pair. The unique constraint makes the grant
// idempotent; callers treat this as "access already granted".
var ErrAlreadyPurchased = errors.New("course already purchased")

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *sql.DB) *purchaseRepository {
	return &purchaseRepository{
		db: db,
	}
}

// Create records a purchase. The UNIQUE(user_id, course_id) constraint
// resolves the duplicate-grant race: a second insert for the same pair
// fails with a duplicate entry, surfaced as ErrAlreadyPurchased.
func (r *purchaseRepository) Create(ctx context.Context, purchase *models.CoursePurchase) error {
	if purchase.ID == "" {
		purchase.ID = uuid.New().String()
	}

	query := `
		INSERT INTO course_purchases (id, user_id, course_id, amount_cents, payment_method, invoice_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var invoiceID sql.NullString
	if purchase.InvoiceID != "" {
		invoiceID = sql.NullString{String: purchase.InvoiceID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		purchase.ID,
		purchase.UserID,
		purchase.CourseID,
		purchase.AmountCents,
		purchase.PaymentMethod,
		invoiceID,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return ErrAlreadyPurchased
		}
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

// Exists checks if the user already purchased the course
func (r *purchaseRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM course_purchases WHERE user_id = ? AND course_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase existence: %w", err)
	}

	return exists, nil
}
