package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/coursemarket/backend/internal/models"
	"github.com/google/uuid"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

const courseColumns = `id, slug, title, short_description, description, price_cents, discount_price_cents, difficulty, status, thumbnail_url, created_at, updated_at`

// scanCourse scans one course row
func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	var course models.Course
	var discount sql.NullInt64
	err := row.Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.ShortDescription,
		&course.Description,
		&course.PriceCents,
		&discount,
		&course.Difficulty,
		&course.Status,
		&course.ThumbnailURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if discount.Valid {
		course.DiscountPriceCents = &discount.Int64
	}
	return &course, nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? LIMIT 1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return course, nil
}

// GetBySlug retrieves a course by its slug
func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE slug = ? LIMIT 1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("course not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}

	return course, nil
}

// ListPublished retrieves published courses with optional title or
// description search and tag filter, newest first
func (r *courseRepository) ListPublished(ctx context.Context, search string, tagIDs []string) ([]models.Course, error) {
	whereClauses := []string{"c.status = ?"}
	args := []any{models.CourseStatusPublished}

	if search != "" {
		whereClauses = append(whereClauses, "(c.title LIKE ? OR c.description LIKE ?)")
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	if len(tagIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tagIDs)), ",")
		whereClauses = append(whereClauses, `EXISTS (
			SELECT 1 FROM course_tag_links ctl
			WHERE ctl.course_id = c.id AND ctl.tag_id IN (`+placeholders+`)
		)`)
		for _, id := range tagIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT ` + prefixedCourseColumns("c") + `
		FROM courses c
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY c.created_at DESC
	`

	return r.queryCourses(ctx, query, args...)
}

// ListAll retrieves all courses regardless of status, newest first
func (r *courseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC`
	return r.queryCourses(ctx, query)
}

// ListPurchasedByUser retrieves the courses the user bought, newest
// purchase first
func (r *courseRepository) ListPurchasedByUser(ctx context.Context, userID string) ([]models.Course, error) {
	query := `
		SELECT ` + prefixedCourseColumns("c") + `
		FROM courses c
		INNER JOIN course_purchases cp ON cp.course_id = c.id
		WHERE cp.user_id = ?
		ORDER BY cp.created_at DESC
	`
	return r.queryCourses(ctx, query, userID)
}

// CountBySlugPrefix counts courses whose slug starts with prefix. The
// count disambiguates slug collisions: n existing matches make the next
// slug "<prefix>-<n+1>".
func (r *courseRepository) CountBySlugPrefix(ctx context.Context, prefix string) (int, error) {
	query := `SELECT COUNT(*) FROM courses WHERE slug LIKE ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, prefix+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count courses by slug prefix: %w", err)
	}

	return count, nil
}

// Create inserts a course and its tag links in one transaction
func (r *courseRepository) Create(ctx context.Context, course *models.Course, tagIDs []string) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO courses (id, slug, title, short_description, description, price_cents, discount_price_cents, difficulty, status, thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		course.ID,
		course.Slug,
		course.Title,
		course.ShortDescription,
		course.Description,
		course.PriceCents,
		course.DiscountPriceCents,
		course.Difficulty,
		course.Status,
		course.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	if err := insertTagLinks(ctx, tx, course.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update updates a course and replaces its tag links in one transaction
func (r *courseRepository) Update(ctx context.Context, course *models.Course, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE courses
		SET slug = ?, title = ?, short_description = ?, description = ?, price_cents = ?, discount_price_cents = ?, difficulty = ?, thumbnail_url = ?
		WHERE id = ?
	`

	_, err = tx.ExecContext(ctx, query,
		course.Slug,
		course.Title,
		course.ShortDescription,
		course.Description,
		course.PriceCents,
		course.DiscountPriceCents,
		course.Difficulty,
		course.ThumbnailURL,
		course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_tag_links WHERE course_id = ?`, course.ID); err != nil {
		return fmt.Errorf("failed to clear tag links: %w", err)
	}

	if err := insertTagLinks(ctx, tx, course.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateStatus changes the publication status of a course
func (r *courseRepository) UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error {
	query := `UPDATE courses SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update course status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// Delete removes a course. Modules, lessons, tag links and pix invoice
// mappings cascade at the database level.
func (r *courseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM courses WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("course not found")
	}

	return nil
}

// GetTagsByCourseIDs retrieves the tags of each given course
func (r *courseRepository) GetTagsByCourseIDs(ctx context.Context, courseIDs []string) (map[string][]models.CourseTag, error) {
	tags := make(map[string][]models.CourseTag, len(courseIDs))
	if len(courseIDs) == 0 {
		return tags, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(courseIDs)), ",")
	query := `
		SELECT ctl.course_id, t.id, t.name
		FROM course_tag_links ctl
		INNER JOIN course_tags t ON t.id = ctl.tag_id
		WHERE ctl.course_id IN (` + placeholders + `)
		ORDER BY t.name ASC
	`

	args := make([]any, 0, len(courseIDs))
	for _, id := range courseIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get course tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var courseID string
		var tag models.CourseTag
		if err := rows.Scan(&courseID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan course tag: %w", err)
		}
		tags[courseID] = append(tags[courseID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course tags: %w", err)
	}

	return tags, nil
}

// queryCourses runs a query returning course rows
func (r *courseRepository) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return courses, nil
}

// insertTagLinks inserts course-tag link rows within a transaction
func insertTagLinks(ctx context.Context, tx *sql.Tx, courseID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	values := strings.TrimSuffix(strings.Repeat("(?, ?),", len(tagIDs)), ",")
	args := make([]any, 0, len(tagIDs)*2)
	for _, tagID := range tagIDs {
		args = append(args, courseID, tagID)
	}

	query := `INSERT INTO course_tag_links (course_id, tag_id) VALUES ` + values
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert tag links: %w", err)
	}

	return nil
}

// prefixedCourseColumns returns the course column list qualified with a
// table alias
func prefixedCourseColumns(alias string) string {
	cols := strings.Split(courseColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
