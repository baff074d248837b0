package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coursemarket/backend/internal/models"
	"github.com/google/uuid"
)

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new course module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

// GetByCourseIDs retrieves the modules of each given course with their
// lessons, both ordered by position
func (r *moduleRepository) GetByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseModuleResponse, error) {
	result := make(map[string][]models.CourseModuleResponse, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(courseIDs)), ",")
	args := make([]any, 0, len(courseIDs))
	for _, id := range courseIDs {
		args = append(args, id)
	}

	query := `
		SELECT id, course_id, title, description, position
		FROM course_modules
		WHERE course_id IN (` + placeholders + `)
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get course modules: %w", err)
	}
	defer rows.Close()

	// Index for attaching lessons below
	moduleIndex := make(map[string]*models.CourseModuleResponse)
	var moduleIDs []string
	for rows.Next() {
		var mod models.CourseModuleResponse
		if err := rows.Scan(&mod.ID, &mod.CourseID, &mod.Title, &mod.Description, &mod.Position); err != nil {
			return nil, fmt.Errorf("failed to scan course module: %w", err)
		}
		mod.Lessons = []models.CourseLesson{}
		result[mod.CourseID] = append(result[mod.CourseID], mod)
		moduleIDs = append(moduleIDs, mod.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course modules: %w", err)
	}

	for courseID := range result {
		for i := range result[courseID] {
			moduleIndex[result[courseID][i].ID] = &result[courseID][i]
		}
	}

	if len(moduleIDs) == 0 {
		return result, nil
	}

	lessonPlaceholders := strings.TrimSuffix(strings.Repeat("?,", len(moduleIDs)), ",")
	lessonArgs := make([]any, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		lessonArgs = append(lessonArgs, id)
	}

	lessonQuery := `
		SELECT id, module_id, title, description, video_id, duration_ms, position
		FROM course_lessons
		WHERE module_id IN (` + lessonPlaceholders + `)
		ORDER BY position ASC
	`

	lessonRows, err := r.db.QueryContext(ctx, lessonQuery, lessonArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to get course lessons: %w", err)
	}
	defer lessonRows.Close()

	for lessonRows.Next() {
		var lesson models.CourseLesson
		if err := lessonRows.Scan(
			&lesson.ID,
			&lesson.ModuleID,
			&lesson.Title,
			&lesson.Description,
			&lesson.VideoID,
			&lesson.DurationMs,
			&lesson.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course lesson: %w", err)
		}
		if mod, ok := moduleIndex[lesson.ModuleID]; ok {
			mod.Lessons = append(mod.Lessons, lesson)
		}
	}
	if err := lessonRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course lessons: %w", err)
	}

	return result, nil
}

// CreateWithLessons inserts a module and its nested lessons
func (r *moduleRepository) CreateWithLessons(ctx context.Context, courseID string, payload *models.CourseModulePayload) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	moduleID := payload.ID
	if moduleID == "" {
		moduleID = uuid.New().String()
	}

	query := `
		INSERT INTO course_modules (id, course_id, title, description, position)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, moduleID, courseID, payload.Title, payload.Description, payload.Position); err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	for i := range payload.Lessons {
		if err := upsertLesson(ctx, tx, moduleID, &payload.Lessons[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	payload.ID = moduleID
	return nil
}

// UpdateWithLessons updates a module and upserts its lessons. Lessons
// with an id are updated in place, the rest are created.
func (r *moduleRepository) UpdateWithLessons(ctx context.Context, payload *models.CourseModulePayload) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE course_modules
		SET title = ?, description = ?, position = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, payload.Title, payload.Description, payload.Position, payload.ID)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("module not found")
	}

	for i := range payload.Lessons {
		if err := upsertLesson(ctx, tx, payload.ID, &payload.Lessons[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteModules removes modules by ids; their lessons cascade
func (r *moduleRepository) DeleteModules(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := `DELETE FROM course_modules WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete modules: %w", err)
	}

	return nil
}

// DeleteLessons removes lessons by ids
func (r *moduleRepository) DeleteLessons(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := `DELETE FROM course_lessons WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}

	return nil
}

// GetLessonCourseID resolves the course a lesson belongs to. Used by
// the comment and completion flows to check content access.
func (r *moduleRepository) GetLessonCourseID(ctx context.Context, lessonID string) (string, error) {
	query := `
		SELECT m.course_id
		FROM course_lessons l
		INNER JOIN course_modules m ON m.id = l.module_id
		WHERE l.id = ?
		LIMIT 1
	`

	var courseID string
	err := r.db.QueryRowContext(ctx, query, lessonID).Scan(&courseID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("lesson not found")
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve lesson course: %w", err)
	}

	return courseID, nil
}

// upsertLesson inserts or updates one lesson within a transaction
func upsertLesson(ctx context.Context, tx *sql.Tx, moduleID string, lesson *models.CourseLessonPayload) error {
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}

	query := `
		INSERT INTO course_lessons (id, module_id, title, description, video_id, duration_ms, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title),
			description = VALUES(description),
			video_id = VALUES(video_id),
			duration_ms = VALUES(duration_ms),
			position = VALUES(position)
	`

	_, err := tx.ExecContext(ctx, query,
		lesson.ID,
		moduleID,
		lesson.Title,
		lesson.Description,
		lesson.VideoID,
		lesson.DurationMs,
		lesson.Position,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert lesson: %w", err)
	}

	return nil
}
