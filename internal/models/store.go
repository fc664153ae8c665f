package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a merchant integrated with the platform.
type Store struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StoreCreate is the POST /stores payload.
type StoreCreate struct {
	Name string `json:"name"`
}

// StoreClaimsResponse is the envelope of /stores/{id}/claims.
type StoreClaimsResponse struct {
	StoreID string        `json:"store_id"`
	Claims  []ClaimDetail `json:"claims"`
	Total   int           `json:"total"`
}
