package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a KYC-verified customer tracked by the fraud platform.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	KYCEmail  string    `gorm:"uniqueIndex;not null" json:"kyc_email"`
	FullName  string    `gorm:"not null" json:"full_name"`
	DOB       string    `json:"dob"`
	RiskScore int       `gorm:"default:0" json:"risk_score"`
	IsFlagged bool      `gorm:"default:false" json:"is_flagged"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is one row of the paginated admin user list. The dispute
// counters always satisfy approved+pending+denied == total.
type UserSummary struct {
	ID               string     `json:"id"`
	KYCEmail         string     `json:"kyc_email"`
	FullName         string     `json:"full_name"`
	CreatedAt        time.Time  `json:"created_at"`
	RiskScore        int        `json:"risk_score"`
	IsFlagged        bool       `json:"is_flagged"`
	TotalDisputes    int        `json:"total_disputes"`
	PendingDisputes  int        `json:"pending_disputes"`
	ApprovedDisputes int        `json:"approved_disputes"`
	DeniedDisputes   int        `json:"denied_disputes"`
	LastActivity     *time.Time `json:"last_activity"`
}

// UserListResponse is the envelope returned by /admin/users/list and
// /admin/users/search.
type UserListResponse struct {
	Users      []UserSummary `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// UserDetail combines the user record with its full claim history.
type UserDetail struct {
	User   UserDetailProfile `json:"user"`
	Claims []ClaimHistory    `json:"claims"`
}

// UserDetailProfile is the profile block of /admin/users/{id}/details.
type UserDetailProfile struct {
	UserSummary
	TotalClaimValue float64 `json:"total_claim_value"`
}

// DisputeRow is one entry of the per-user dispute history view.
type DisputeRow struct {
	Date     string `json:"date"`
	Company  string `json:"company"`
	Category string `json:"category"`
	ItemLink string `json:"itemLink"`
}

// DisputeListResponse is the envelope returned by /admin/users/{id}/disputes.
type DisputeListResponse struct {
	Disputes   []DisputeRow `json:"disputes"`
	Pagination Pagination   `json:"pagination"`
}
