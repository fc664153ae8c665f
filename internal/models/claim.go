package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimStatus is the lifecycle state of a claim. New claims start PENDING
// and move to APPROVED or DENIED exactly once; resolved claims are terminal.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimDenied   ClaimStatus = "DENIED"
)

// Valid reports whether s is one of the known claim states.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimPending, ClaimApproved, ClaimDenied:
		return true
	}
	return false
}

// Resolved reports whether the claim reached a terminal state.
func (s ClaimStatus) Resolved() bool {
	return s == ClaimApproved || s == ClaimDenied
}

// ItemData describes one item within a claim.
type ItemData struct {
	ItemName string  `json:"item_name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	URL      string  `json:"url,omitempty"`
}

// TotalValue is price*quantity for the line.
func (i ItemData) TotalValue() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemList stores claim items as a JSON column.
type ItemList []ItemData

// Value implements the driver.Valuer interface.
func (l ItemList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface.
func (l *ItemList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return errors.New("unsupported type for ItemList")
}

// TotalValue sums price*quantity across all items.
func (l ItemList) TotalValue() float64 {
	var total float64
	for _, item := range l {
		total += item.TotalValue()
	}
	return total
}

// StoreAccount links a user to one store under one store-scoped email.
// A user owns at most one account per store.
type StoreAccount struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;index:idx_store_accounts_user_store,unique;not null" json:"user_id"`
	StoreID      string    `gorm:"type:uuid;index:idx_store_accounts_user_store,unique;not null" json:"store_id"`
	EmailAtStore string    `gorm:"not null" json:"email_at_store"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *StoreAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Claim is a return claim filed through a store account.
type Claim struct {
	ID             string      `gorm:"type:uuid;primaryKey" json:"id"`
	StoreAccountID string      `gorm:"type:uuid;index;not null" json:"store_account_id"`
	Status         ClaimStatus `gorm:"type:varchar(16);default:'PENDING'" json:"status"`
	ClaimData      ItemList    `gorm:"type:text" json:"claim_data"`
	RiskScore      int         `gorm:"default:0" json:"risk_score"`
	IsFlagged      bool        `gorm:"default:false" json:"is_flagged"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = ClaimPending
	}
	return nil
}

// ClaimContext carries the store-scoped part of a submission.
type ClaimContext struct {
	StoreID      string   `json:"store_id"`
	EmailAtStore string   `json:"email_at_store"`
	ClaimData    ItemList `json:"claim_data"`
}

// ClaimSubmission is the POST /claims/submit payload.
type ClaimSubmission struct {
	UserID       string       `json:"user_id"`
	ClaimContext ClaimContext `json:"claim_context"`
}

// ClaimResponse is returned after a claim submission.
type ClaimResponse struct {
	ClaimID   string      `json:"claim_id"`
	UserID    string      `json:"user_id"`
	Status    ClaimStatus `json:"status"`
	RiskScore int         `json:"risk_score"`
	IsFlagged bool        `json:"is_flagged"`
	Message   string      `json:"message"`
}

// ClaimDetail is the admin view of a single claim with its ownership context.
type ClaimDetail struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	StoreID      string      `json:"store_id"`
	StoreName    string      `json:"store_name"`
	EmailAtStore string      `json:"email_at_store"`
	Status       ClaimStatus `json:"status"`
	Items        ItemList    `json:"items"`
	TotalValue   float64     `json:"total_value"`
	RiskScore    int         `json:"risk_score"`
	IsFlagged    bool        `json:"is_flagged"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ClaimHistory is one resolved or pending claim in a user's history.
type ClaimHistory struct {
	ID         string      `json:"id"`
	Status     ClaimStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	StoreName  string      `json:"store_name"`
	Items      ItemList    `json:"items"`
	TotalValue float64     `json:"total_value"`
}

// FlaggedClaimsResponse is the envelope of /admin/flagged-claims.
type FlaggedClaimsResponse struct {
	FlaggedClaims []ClaimDetail `json:"flagged_claims"`
	Total         int           `json:"total"`
}

// ClaimStatusUpdate is the PUT /admin/{claim_id}/status payload.
type ClaimStatusUpdate struct {
	Status ClaimStatus `json:"status"`
}

// ClaimStatusUpdated acknowledges a status transition.
type ClaimStatusUpdated struct {
	ClaimID   string      `json:"claim_id"`
	Status    ClaimStatus `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
}
