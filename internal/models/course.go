package models

import "time"

// CourseStatus represents the publication status of a course
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// Valid reports whether the status is one of the known values
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusPublished, CourseStatusArchived:
		return true
	}
	return false
}

// Difficulty represents the difficulty level of a course
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// Course represents a course in the marketplace.
// Prices are stored in cents; DiscountPriceCents, when set, is the
// amount actually charged at checkout.
type Course struct {
	ID                 string       `json:"id"`
	Slug               string       `json:"slug"`
	Title              string       `json:"title"`
	ShortDescription   string       `json:"shortDescription"`
	Description        string       `json:"description"`
	PriceCents         int64        `json:"priceCents"`
	DiscountPriceCents *int64       `json:"discountPriceCents,omitempty"`
	Difficulty         Difficulty   `json:"difficulty"`
	Status             CourseStatus `json:"status"`
	ThumbnailURL       string       `json:"thumbnailUrl"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// CheckoutAmountCents returns the amount a buyer pays for the course:
// the discount price when present, the list price otherwise.
func (c *Course) CheckoutAmountCents() int64 {
	if c.DiscountPriceCents != nil {
		return *c.DiscountPriceCents
	}
	return c.PriceCents
}

// CourseTag represents a tag used to categorize courses
type CourseTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CourseDetailResponse represents a course with its tags and modules
type CourseDetailResponse struct {
	Course
	Tags    []CourseTag            `json:"tags"`
	Modules []CourseModuleResponse `json:"modules"`
}

// CreateCourseRequest represents a request to create a course.
// Thumbnail bytes travel separately as a multipart file; ThumbnailName
// keeps the original file name for extension detection.
type CreateCourseRequest struct {
	Title              string                `json:"title"`
	ShortDescription   string                `json:"shortDescription"`
	Description        string                `json:"description"`
	PriceCents         int64                 `json:"priceCents"`
	DiscountPriceCents *int64                `json:"discountPriceCents,omitempty"`
	Difficulty         Difficulty            `json:"difficulty"`
	TagIDs             []string              `json:"tagIds"`
	Modules            []CourseModulePayload `json:"modules"`
	Thumbnail          []byte                `json:"-"`
	ThumbnailName      string                `json:"-"`
}

// UpdateCourseRequest represents a request to update a course.
// A nil Thumbnail keeps the current one.
type UpdateCourseRequest struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	ShortDescription   string     `json:"shortDescription"`
	Description        string     `json:"description"`
	PriceCents         int64      `json:"priceCents"`
	DiscountPriceCents *int64     `json:"discountPriceCents,omitempty"`
	Difficulty         Difficulty `json:"difficulty"`
	TagIDs             []string   `json:"tagIds"`
	Thumbnail          []byte     `json:"-"`
	ThumbnailName      string     `json:"-"`
}

// UpdateCourseStatusRequest represents a request to change a course status
type UpdateCourseStatusRequest struct {
	CourseID string       `json:"courseId"`
	Status   CourseStatus `json:"status"`
}
