package repositories

import (
	"errors"
	"strings"

	"bastion/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAdminNotFound  = errors.New("admin not found")
	ErrAdminExists    = errors.New("admin email already registered")
	ErrAPIKeyNotFound = errors.New("api key not found")
)

// AdminRepository defines the interface for reviewer accounts and API keys.
type AdminRepository interface {
	CreateAdmin(admin *models.Admin) error
	GetAdminByEmail(email string) (*models.Admin, error)
	CreateAPIKey(key *models.APIKey) error
	GetAPIKey(key string) (*models.APIKey, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository instance.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CreateAdmin(admin *models.Admin) error {
	if err := r.db.Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			return ErrAdminExists
		}
		return err
	}
	return nil
}

func (r *adminRepository) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) CreateAPIKey(key *models.APIKey) error {
	return r.db.Create(key).Error
}

func (r *adminRepository) GetAPIKey(key string) (*models.APIKey, error) {
	var record models.APIKey
	err := r.db.First(&record, "key = ? AND revoked = ?", key, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &record, nil
}
