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

// ErrTagExists is returned when a tag with the same name already exists
var ErrTagExists = errors.New("tag already exists")

type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new course tag repository
func NewTagRepository(db *sql.DB) *tagRepository {
	return &tagRepository{
		db: db,
	}
}

// List retrieves all tags in alphabetical order
func (r *tagRepository) List(ctx context.Context) ([]models.CourseTag, error) {
	query := `SELECT id, name FROM course_tags ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.CourseTag
	for rows.Next() {
		var tag models.CourseTag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return tags, nil
}

// Create inserts a new tag. Tag names are unique.
func (r *tagRepository) Create(ctx context.Context, tag *models.CourseTag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}

	query := `INSERT INTO course_tags (id, name) VALUES (?, ?)`

	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return ErrTagExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}
