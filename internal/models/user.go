package models

import "time"

type Role int

// UserRole constants
const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// User represents a user in the system. Identity is owned by the external
// identity provider; ExternalID is the stable id it resolves sessions to.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"-"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AdminUserItem represents a user row in the admin users table,
// enriched with purchase and completion counters
type AdminUserItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	CreatedAt        time.Time `json:"createdAt"`
	PurchasedCourses int       `json:"purchasedCourses"`
	CompletedLessons int       `json:"completedLessons"`
}
