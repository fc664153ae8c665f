package repositories

import (
	"errors"
	"time"

	"bastion/internal/models"
)

var (
	ErrClaimNotFound = errors.New("claim not found")
	ErrStoreNotFound = errors.New("store not found")
	ErrClaimResolved = errors.New("claim already resolved")
)

// ClaimRecord is a claim joined with its ownership context. Scanned from
// the claims/store_accounts/stores join used by every admin view.
type ClaimRecord struct {
	models.Claim `gorm:"embedded"`
	UserID       string `gorm:"column:user_id"`
	StoreID      string `gorm:"column:store_id"`
	EmailAtStore string `gorm:"column:email_at_store"`
	StoreName    string `gorm:"column:store_name"`
}

// Detail converts the record into its admin API shape.
func (r ClaimRecord) Detail() models.ClaimDetail {
	return models.ClaimDetail{
		ID:           r.Claim.ID,
		UserID:       r.UserID,
		StoreID:      r.StoreID,
		StoreName:    r.StoreName,
		EmailAtStore: r.EmailAtStore,
		Status:       r.Status,
		Items:        r.ClaimData,
		TotalValue:   r.ClaimData.TotalValue(),
		RiskScore:    r.RiskScore,
		IsFlagged:    r.IsFlagged,
		CreatedAt:    r.Claim.CreatedAt,
	}
}

// History converts the record into the per-user claim history shape.
func (r ClaimRecord) History() models.ClaimHistory {
	return models.ClaimHistory{
		ID:         r.Claim.ID,
		Status:     r.Status,
		CreatedAt:  r.Claim.CreatedAt,
		StoreName:  r.StoreName,
		Items:      r.ClaimData,
		TotalValue: r.ClaimData.TotalValue(),
	}
}

// DisputeCounters aggregates per-user claim counts for the admin user list.
type DisputeCounters struct {
	UserID       string     `gorm:"column:user_id"`
	Total        int        `gorm:"column:total"`
	Pending      int        `gorm:"column:pending"`
	Approved     int        `gorm:"column:approved"`
	Denied       int        `gorm:"column:denied"`
	LastActivity *time.Time `gorm:"column:last_activity"`
}

// ClaimRepository defines the interface for claim persistence.
type ClaimRepository interface {
	// FindAccount looks up the store account linking a user to a store.
	FindAccount(userID, storeID string) (*models.StoreAccount, error)

	// CreateAccount creates a store account.
	CreateAccount(account *models.StoreAccount) error

	// Create persists a new claim.
	Create(claim *models.Claim) error

	// GetDetail retrieves one claim with its ownership context.
	GetDetail(claimID string) (*ClaimRecord, error)

	// ListByUser retrieves a user's full claim history, newest first.
	ListByUser(userID string) ([]ClaimRecord, error)

	// ListByUserPage retrieves one page of a user's claims with the total.
	ListByUserPage(userID string, offset, limit int) ([]ClaimRecord, int64, error)

	// ListFlagged retrieves flagged claims still awaiting review.
	ListFlagged(limit int) ([]ClaimRecord, error)

	// ListByStore retrieves the most recent claims filed against a store.
	ListByStore(storeID string, limit int) ([]ClaimRecord, error)

	// ListSince retrieves every claim created at or after the given time.
	// A zero time returns the full history.
	ListSince(since time.Time) ([]ClaimRecord, error)

	// UpdateStatus transitions a PENDING claim to a terminal status.
	// Returns ErrClaimResolved when the claim already left PENDING.
	UpdateStatus(claimID string, status models.ClaimStatus) (*ClaimRecord, error)

	// CountersForUsers aggregates dispute counters for a set of users.
	CountersForUsers(userIDs []string) (map[string]DisputeCounters, error)
}
