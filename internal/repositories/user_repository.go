package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// GetByExternalID retrieves a user by the identity provider's ID
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `
		SELECT id, external_id, name, email, role, created_at
		FROM users
		WHERE external_id = ?
		LIMIT 1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	return &user, nil
}

// ListWithStats retrieves all users with purchased-course and
// completed-lesson counters, newest first
func (r *userRepository) ListWithStats(ctx context.Context) ([]models.AdminUserItem, error) {
	query := `
		SELECT
			u.id,
			u.name,
			u.email,
			u.role,
			u.created_at,
			COUNT(DISTINCT cp.id) AS purchased_courses,
			COUNT(DISTINCT cl.lesson_id) AS completed_lessons
		FROM users u
		LEFT JOIN course_purchases cp ON cp.user_id = u.id
		LEFT JOIN completed_lessons cl ON cl.user_id = u.id
		GROUP BY u.id, u.name, u.email, u.role, u.created_at
		ORDER BY u.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.AdminUserItem
	for rows.Next() {
		var user models.AdminUserItem
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
			&user.PurchasedCourses,
			&user.CompletedLessons,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
