package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursemarket/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPurchaseTestRepository creates a purchase repository with a mock database
func setupPurchaseTestRepository(t *testing.T) (*purchaseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPurchaseRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPurchaseRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		purchase      *models.CoursePurchase
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			purchase: &models.CoursePurchase{
				ID:            "purchase-1",
				UserID:        "user-1",
				CourseID:      "course-1",
				AmountCents:   4990,
				PaymentMethod: models.PaymentMethodCreditCard,
				InvoiceID:     "inv-1",
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_purchases`).
					WithArgs("purchase-1", "user-1", "course-1", int64(4990), models.PaymentMethodCreditCard, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate pair maps to ErrAlreadyPurchased",
			purchase: &models.CoursePurchase{
				ID:            "purchase-2",
				UserID:        "user-1",
				CourseID:      "course-1",
				AmountCents:   4990,
				PaymentMethod: models.PaymentMethodPix,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_purchases`).
					WithArgs("purchase-2", "user-1", "course-1", int64(4990), models.PaymentMethodPix, sqlmock.AnyArg()).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: ErrAlreadyPurchased,
		},
		{
			name: "database error is passed through",
			purchase: &models.CoursePurchase{
				ID:            "purchase-3",
				UserID:        "user-1",
				CourseID:      "course-1",
				AmountCents:   4990,
				PaymentMethod: models.PaymentMethodCreditCard,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO course_purchases`).
					WillReturnError(errors.New("connection lost"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPurchaseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.purchase)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.name == "success":
				assert.NoError(t, err)
			default:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrAlreadyPurchased)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPurchaseRepository_Create_GeneratesID(t *testing.T) {
	repo, mock, cleanup := setupPurchaseTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO course_purchases`).
		WithArgs(sqlmock.AnyArg(), "user-1", "course-1", int64(1000), models.PaymentMethodPix, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	purchase := &models.CoursePurchase{
		UserID:        "user-1",
		CourseID:      "course-1",
		AmountCents:   1000,
		PaymentMethod: models.PaymentMethodPix,
	}

	err := repo.Create(context.Background(), purchase)

	assert.NoError(t, err)
	assert.NotEmpty(t, purchase.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseSchema_SurvivesCourseDeletion(t *testing.T) {
	ddl, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init_schema.up.sql"))
	require.NoError(t, err)

	var purchasesDDL string
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS course_purchases") {
			purchasesDDL = stmt
			break
		}
	}
	require.NotEmpty(t, purchasesDDL)

	// Purchase history outlives the catalog: deleting a course must not
	// cascade into course_purchases
	assert.NotContains(t, purchasesDDL, "REFERENCES courses")
	assert.Contains(t, purchasesDDL, "UNIQUE KEY uq_course_purchases_user_course (user_id, course_id)")
}

func TestPurchaseRepository_Exists(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedExists bool
		expectedError  bool
	}{
		{
			name: "purchase exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "course-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expectedExists: true,
		},
		{
			name: "purchase does not exist",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "course-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			expectedExists: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1", "course-1").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPurchaseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			exists, err := repo.Exists(context.Background(), "user-1", "course-1")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedExists, exists)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
