package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
	"github.com/google/uuid"
)

type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new lesson comment repository
func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{
		db: db,
	}
}

// Create inserts a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.LessonComment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	query := `
		INSERT INTO lesson_comments (id, lesson_id, user_id, parent_id, content)
		VALUES (?, ?, ?, ?, ?)
	`

	var parentID sql.NullString
	if comment.ParentID != "" {
		parentID = sql.NullString{String: comment.ParentID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.LessonID,
		comment.UserID,
		parentID,
		comment.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.LessonComment, error) {
	query := `
		SELECT id, lesson_id, user_id, parent_id, content, created_at
		FROM lesson_comments
		WHERE id = ?
		LIMIT 1
	`

	var comment models.LessonComment
	var parentID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.LessonID,
		&comment.UserID,
		&parentID,
		&comment.Content,
		&comment.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("comment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	if parentID.Valid {
		comment.ParentID = parentID.String
	}
	return &comment, nil
}

// ListByLesson retrieves all comments of a lesson with author names,
// oldest first so threads read top to bottom
func (r *commentRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.LessonComment, error) {
	query := `
		SELECT c.id, c.lesson_id, c.user_id, c.parent_id, c.content, u.name, c.created_at
		FROM lesson_comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.lesson_id = ?
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.LessonComment
	for rows.Next() {
		var comment models.LessonComment
		var parentID sql.NullString
		if err := rows.Scan(
			&comment.ID,
			&comment.LessonID,
			&comment.UserID,
			&parentID,
			&comment.Content,
			&comment.AuthorName,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if parentID.Valid {
			comment.ParentID = parentID.String
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment; replies cascade at the database level
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM lesson_comments WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("comment not found")
	}

	return nil
}
