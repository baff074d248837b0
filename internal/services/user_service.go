package services

import (
	"context"
	"fmt"

	"github.com/coursemarket/backend/internal/models"
)

// UserRepository defines methods for user data access
type UserRepository interface {
	// ListWithStats retrieves all users with purchase and completion
	// counters
	ListWithStats(ctx context.Context) ([]models.AdminUserItem, error)
}

type userService struct {
	repo UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository) *userService {
	return &userService{
		repo: repo,
	}
}

// ListWithStats retrieves the admin user table
func (s *userService) ListWithStats(ctx context.Context) ([]models.AdminUserItem, error) {
	users, err := s.repo.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.AdminUserItem{}
	}
	return users, nil
}
