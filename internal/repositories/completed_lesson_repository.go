package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type completedLessonRepository struct {
	db *sql.DB
}

// NewCompletedLessonRepository creates a new completed lesson repository
func NewCompletedLessonRepository(db *sql.DB) *completedLessonRepository {
	return &completedLessonRepository{
		db: db,
	}
}

// Exists checks if the user has completed the lesson
func (r *completedLessonRepository) Exists(ctx context.Context, userID, lessonID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM completed_lessons WHERE user_id = ? AND lesson_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completion existence: %w", err)
	}

	return exists, nil
}

// Create marks a lesson as completed for the user
func (r *completedLessonRepository) Create(ctx context.Context, userID, lessonID, courseID string) error {
	query := `
		INSERT INTO completed_lessons (user_id, lesson_id, course_id)
		VALUES (?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, lessonID, courseID); err != nil {
		return fmt.Errorf("failed to create completion record: %w", err)
	}

	return nil
}

// Delete removes a completion mark
func (r *completedLessonRepository) Delete(ctx context.Context, userID, lessonID string) error {
	query := `
		DELETE FROM completed_lessons
		WHERE user_id = ? AND lesson_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, userID, lessonID); err != nil {
		return fmt.Errorf("failed to delete completion record: %w", err)
	}

	return nil
}

// ListLessonIDsByUserAndCourse retrieves the lessons the user completed
// in a course
func (r *completedLessonRepository) ListLessonIDsByUserAndCourse(ctx context.Context, userID, courseID string) ([]string, error) {
	query := `
		SELECT lesson_id
		FROM completed_lessons
		WHERE user_id = ? AND course_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed lessons: %w", err)
	}
	defer rows.Close()

	var lessonIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		lessonIDs = append(lessonIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completed lessons: %w", err)
	}

	return lessonIDs, nil
}
