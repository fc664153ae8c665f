package repositories

import (
	"errors"
	"strings"

	"bastion/internal/models"

	"gorm.io/gorm"
)

var ErrStoreNameTaken = errors.New("store name already registered")

// StoreRepository defines the interface for store persistence.
type StoreRepository interface {
	Create(store *models.Store) error
	GetByID(id string) (*models.Store, error)
	List() ([]models.Store, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository instance.
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *models.Store) error {
	if err := r.db.Create(store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			return ErrStoreNameTaken
		}
		return err
	}
	return nil
}

func (r *storeRepository) GetByID(id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) List() ([]models.Store, error) {
	var stores []models.Store
	err := r.db.Order("name ASC").Find(&stores).Error
	return stores, err
}
