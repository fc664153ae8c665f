package repositories

import (
	"errors"

	"bastion/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("kyc email already registered")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create creates a new user record.
	Create(user *models.User) error

	// GetByID retrieves a user by ID.
	GetByID(id string) (*models.User, error)

	// GetByEmail retrieves a user by KYC email.
	GetByEmail(email string) (*models.User, error)

	// List retrieves users ordered by creation date with pagination.
	List(offset, limit int) ([]models.User, int64, error)

	// Search retrieves users whose name or KYC email matches the query,
	// with pagination.
	Search(query string, offset, limit int) ([]models.User, int64, error)

	// UpdateRisk stores a recalculated risk score and flag state.
	UpdateRisk(id string, score int, flagged bool) error
}
