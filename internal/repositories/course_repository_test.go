package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursemarket/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCourseTestRepository creates a course repository with a mock database
func setupCourseTestRepository(t *testing.T) (*courseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewCourseRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func courseRows(courses ...*models.Course) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "slug", "title", "short_description", "description",
		"price_cents", "discount_price_cents", "difficulty", "status",
		"thumbnail_url", "created_at", "updated_at",
	})
	for _, c := range courses {
		var discount any
		if c.DiscountPriceCents != nil {
			discount = *c.DiscountPriceCents
		}
		rows.AddRow(c.ID, c.Slug, c.Title, c.ShortDescription, c.Description,
			c.PriceCents, discount, c.Difficulty, c.Status,
			c.ThumbnailURL, c.CreatedAt, c.UpdatedAt)
	}
	return rows
}

func TestCourseRepository_GetBySlug(t *testing.T) {
	now := time.Now()
	discount := int64(800)

	tests := []struct {
		name          string
		slug          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		checkCourse   func(t *testing.T, course *models.Course)
	}{
		{
			name: "success with discount price",
			slug: "intro-to-go",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM courses WHERE slug = \?`).
					WithArgs("intro-to-go").
					WillReturnRows(courseRows(&models.Course{
						ID:                 "course-1",
						Slug:               "intro-to-go",
						Title:              "Intro to Go",
						PriceCents:         1000,
						DiscountPriceCents: &discount,
						Difficulty:         models.DifficultyBeginner,
						Status:             models.CourseStatusPublished,
						CreatedAt:          now,
						UpdatedAt:          now,
					}))
			},
			checkCourse: func(t *testing.T, course *models.Course) {
				assert.Equal(t, "course-1", course.ID)
				require.NotNil(t, course.DiscountPriceCents)
				assert.Equal(t, int64(800), *course.DiscountPriceCents)
				assert.Equal(t, int64(800), course.CheckoutAmountCents())
			},
		},
		{
			name: "not found",
			slug: "missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM courses WHERE slug = \?`).
					WithArgs("missing").
					WillReturnRows(courseRows())
			},
			expectedError: true,
		},
		{
			name: "database error",
			slug: "intro-to-go",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM courses WHERE slug = \?`).
					WithArgs("intro-to-go").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			course, err := repo.GetBySlug(context.Background(), tt.slug)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				tt.checkCourse(t, course)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_CountBySlugPrefix(t *testing.T) {
	tests := []struct {
		name          string
		prefix        string
		setupMock     func(sqlmock.Sqlmock)
		expectedCount int
		expectedError bool
	}{
		{
			name:   "no existing slugs",
			prefix: "intro-to-go",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses WHERE slug LIKE \?`).
					WithArgs("intro-to-go%").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			},
			expectedCount: 0,
		},
		{
			name:   "two existing slugs",
			prefix: "intro-to-go",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses WHERE slug LIKE \?`).
					WithArgs("intro-to-go%").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
			},
			expectedCount: 2,
		},
		{
			name:   "database error",
			prefix: "intro-to-go",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM courses WHERE slug LIKE \?`).
					WithArgs("intro-to-go%").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			count, err := repo.CountBySlugPrefix(context.Background(), tt.prefix)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCount, count)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_ListPublished(t *testing.T) {
	now := time.Now()

	t.Run("search and tag filter are applied", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM courses c WHERE c\.status = \? AND \(c\.title LIKE \? OR c\.description LIKE \?\) AND EXISTS`).
			WithArgs(models.CourseStatusPublished, "%go%", "%go%", "tag-1").
			WillReturnRows(courseRows(&models.Course{
				ID:         "course-1",
				Slug:       "intro-to-go",
				Title:      "Intro to Go",
				PriceCents: 1000,
				Difficulty: models.DifficultyBeginner,
				Status:     models.CourseStatusPublished,
				CreatedAt:  now,
				UpdatedAt:  now,
			}))

		courses, err := repo.ListPublished(context.Background(), "go", []string{"tag-1"})

		assert.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "intro-to-go", courses[0].Slug)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no filters", func(t *testing.T) {
		repo, mock, cleanup := setupCourseTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT .+ FROM courses c WHERE c\.status = \?`).
			WithArgs(models.CourseStatusPublished).
			WillReturnRows(courseRows())

		courses, err := repo.ListPublished(context.Background(), "", nil)

		assert.NoError(t, err)
		assert.Empty(t, courses)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCourseRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM courses WHERE id = \?`).
					WithArgs("course-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "course not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM courses WHERE id = \?`).
					WithArgs("course-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupCourseTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Delete(context.Background(), "course-1")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
