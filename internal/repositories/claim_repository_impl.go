package repositories

import (
	"errors"
	"time"

	"bastion/internal/models"

	"gorm.io/gorm"
)

const claimJoinSelect = `claims.id, claims.store_account_id, claims.status, claims.claim_data,
claims.risk_score, claims.is_flagged, claims.created_at,
store_accounts.user_id AS user_id, store_accounts.store_id AS store_id,
store_accounts.email_at_store AS email_at_store, stores.name AS store_name`

type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository instance.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) joined() *gorm.DB {
	return r.db.Table("claims").
		Select(claimJoinSelect).
		Joins("JOIN store_accounts ON store_accounts.id = claims.store_account_id").
		Joins("JOIN stores ON stores.id = store_accounts.store_id")
}

func (r *claimRepository) FindAccount(userID, storeID string) (*models.StoreAccount, error) {
	var account models.StoreAccount
	err := r.db.First(&account, "user_id = ? AND store_id = ?", userID, storeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *claimRepository) CreateAccount(account *models.StoreAccount) error {
	return r.db.Create(account).Error
}

func (r *claimRepository) Create(claim *models.Claim) error {
	return r.db.Create(claim).Error
}

func (r *claimRepository) GetDetail(claimID string) (*ClaimRecord, error) {
	var record ClaimRecord
	err := r.joined().Where("claims.id = ?", claimID).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.Claim.ID == "" {
		return nil, ErrClaimNotFound
	}
	return &record, nil
}

func (r *claimRepository) ListByUser(userID string) ([]ClaimRecord, error) {
	var records []ClaimRecord
	err := r.joined().
		Where("store_accounts.user_id = ?", userID).
		Order("claims.created_at DESC").
		Scan(&records).Error
	return records, err
}

func (r *claimRepository) ListByUserPage(userID string, offset, limit int) ([]ClaimRecord, int64, error) {
	var total int64
	err := r.db.Table("claims").
		Joins("JOIN store_accounts ON store_accounts.id = claims.store_account_id").
		Where("store_accounts.user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var records []ClaimRecord
	err = r.joined().
		Where("store_accounts.user_id = ?", userID).
		Order("claims.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&records).Error
	return records, total, err
}

func (r *claimRepository) ListFlagged(limit int) ([]ClaimRecord, error) {
	var records []ClaimRecord
	err := r.joined().
		Where("claims.is_flagged = ? AND claims.status = ?", true, models.ClaimPending).
		Order("claims.risk_score DESC, claims.created_at DESC").
		Limit(limit).
		Scan(&records).Error
	return records, err
}

func (r *claimRepository) ListByStore(storeID string, limit int) ([]ClaimRecord, error) {
	var records []ClaimRecord
	err := r.joined().
		Where("store_accounts.store_id = ?", storeID).
		Order("claims.created_at DESC").
		Limit(limit).
		Scan(&records).Error
	return records, err
}

func (r *claimRepository) ListSince(since time.Time) ([]ClaimRecord, error) {
	query := r.joined()
	if !since.IsZero() {
		query = query.Where("claims.created_at >= ?", since)
	}

	var records []ClaimRecord
	err := query.Order("claims.created_at ASC").Scan(&records).Error
	return records, err
}

func (r *claimRepository) UpdateStatus(claimID string, status models.ClaimStatus) (*ClaimRecord, error) {
	var claim models.Claim
	if err := r.db.First(&claim, "id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if claim.Status.Resolved() {
		return nil, ErrClaimResolved
	}

	// Guard the transition in SQL so concurrent reviews cannot double-resolve.
	result := r.db.Model(&models.Claim{}).
		Where("id = ? AND status = ?", claimID, models.ClaimPending).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrClaimResolved
	}

	return r.GetDetail(claimID)
}

func (r *claimRepository) CountersForUsers(userIDs []string) (map[string]DisputeCounters, error) {
	counters := make(map[string]DisputeCounters, len(userIDs))
	if len(userIDs) == 0 {
		return counters, nil
	}

	var rows []DisputeCounters
	err := r.db.Table("claims").
		Select(`store_accounts.user_id AS user_id,
COUNT(*) AS total,
SUM(CASE WHEN claims.status = 'PENDING' THEN 1 ELSE 0 END) AS pending,
SUM(CASE WHEN claims.status = 'APPROVED' THEN 1 ELSE 0 END) AS approved,
SUM(CASE WHEN claims.status = 'DENIED' THEN 1 ELSE 0 END) AS denied,
MAX(claims.created_at) AS last_activity`).
		Joins("JOIN store_accounts ON store_accounts.id = claims.store_account_id").
		Where("store_accounts.user_id IN ?", userIDs).
		Group("store_accounts.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counters[row.UserID] = row
	}
	return counters, nil
}
