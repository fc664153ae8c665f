// Package riskcache maintains precomputed user risk snapshots in Redis so
// admin views do not recompute fraud scores on every request.
package riskcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bastion/internal/models"
	"bastion/internal/repositories"
	"bastion/internal/services/fraud"
)

const (
	keyPrefix = "risk_score:"
	cacheTTL  = 24 * time.Hour

	// WarmUp computes users in small batches to keep startup load bounded.
	warmupBatchSize = 5

	highRiskThreshold = 70
	flagThreshold     = 75
)

// Snapshot is the cached risk state of one user. RiskScore is nil when the
// user has no claims to score.
type Snapshot struct {
	UserID           string    `json:"user_id"`
	RiskScore        *int      `json:"risk_score"`
	IsFlagged        bool      `json:"is_flagged"`
	InsufficientData bool      `json:"insufficient_data"`
	TotalClaims      int       `json:"total_claims"`
	PendingClaims    int       `json:"pending_claims"`
	ApprovedClaims   int       `json:"approved_claims"`
	DeniedClaims     int       `json:"denied_claims"`
	TotalValue       float64   `json:"total_value"`
	LastCalculated   time.Time `json:"last_calculated"`
}

// Stats reports the cache's bookkeeping counters.
type Stats struct {
	CalculatedUsers        int `json:"calculated_users"`
	InsufficientDataUsers  int `json:"insufficient_data_users"`
	CalculationsInProgress int `json:"calculations_in_progress"`
}

// Service computes and caches user risk snapshots.
type Service interface {
	// Get returns the cached snapshot for a user, computing it on a miss.
	Get(ctx context.Context, userID string) (*Snapshot, error)

	// Recalculate recomputes a user's snapshot and persists the resulting
	// score and flag back to the user record. Called after claim submission.
	Recalculate(ctx context.Context, userID string) (*Snapshot, error)

	// WarmUp precomputes snapshots for every known user.
	WarmUp(ctx context.Context) error

	// Stats reports bookkeeping counters.
	Stats() Stats
}

type service struct {
	cache  repositories.CacheRepository
	users  repositories.UserRepository
	claims repositories.ClaimRepository
	fraud  fraud.Service
	logger *slog.Logger

	mu         sync.Mutex
	inProgress map[string]bool
	calculated int
	noData     int
}

// NewService creates a risk cache service.
func NewService(cache repositories.CacheRepository, users repositories.UserRepository,
	claims repositories.ClaimRepository, fraudSvc fraud.Service, logger *slog.Logger) Service {
	return &service{
		cache:      cache,
		users:      users,
		claims:     claims,
		fraud:      fraudSvc,
		logger:     logger,
		inProgress: make(map[string]bool),
	}
}

func (s *service) Get(ctx context.Context, userID string) (*Snapshot, error) {
	var snap Snapshot
	err := s.cache.Get(ctx, keyPrefix+userID, &snap)
	if err == nil {
		return &snap, nil
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		return nil, err
	}
	return s.compute(ctx, userID, false)
}

func (s *service) Recalculate(ctx context.Context, userID string) (*Snapshot, error) {
	return s.compute(ctx, userID, true)
}

func (s *service) WarmUp(ctx context.Context) error {
	const pageSize = 200
	offset := 0
	for {
		users, total, err := s.users.List(offset, pageSize)
		if err != nil {
			return err
		}

		for start := 0; start < len(users); start += warmupBatchSize {
			end := start + warmupBatchSize
			if end > len(users) {
				end = len(users)
			}

			var wg sync.WaitGroup
			for _, user := range users[start:end] {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					if _, err := s.compute(ctx, id, true); err != nil {
						s.logger.Warn("risk warmup failed", "user_id", id, "error", err)
					}
				}(user.ID)
			}
			wg.Wait()

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		offset += len(users)
		if offset >= int(total) || len(users) == 0 {
			break
		}
	}

	s.logger.Info("risk score cache warmed", "users", offset)
	return nil
}

func (s *service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		CalculatedUsers:        s.calculated,
		InsufficientDataUsers:  s.noData,
		CalculationsInProgress: len(s.inProgress),
	}
}

// compute rebuilds a snapshot from the user's claim history. When persist is
// set, the resulting score is also written back to the user record.
func (s *service) compute(ctx context.Context, userID string, persist bool) (*Snapshot, error) {
	s.mu.Lock()
	if s.inProgress[userID] {
		s.mu.Unlock()
		// Another goroutine is already computing; serve whatever lands.
		return s.waitForResult(ctx, userID)
	}
	s.inProgress[userID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inProgress, userID)
		s.mu.Unlock()
	}()

	history, err := s.claims.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	snap := s.buildSnapshot(userID, history)

	if err := s.cache.Set(ctx, keyPrefix+userID, snap, cacheTTL); err != nil {
		s.logger.Warn("risk snapshot cache write failed", "user_id", userID, "error", err)
	}

	if persist && !snap.InsufficientData {
		if err := s.users.UpdateRisk(userID, *snap.RiskScore, snap.IsFlagged); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if snap.InsufficientData {
		s.noData++
	} else {
		s.calculated++
	}
	s.mu.Unlock()

	return snap, nil
}

func (s *service) buildSnapshot(userID string, history []repositories.ClaimRecord) *Snapshot {
	snap := &Snapshot{
		UserID:         userID,
		LastCalculated: time.Now().UTC(),
	}

	if len(history) == 0 {
		snap.InsufficientData = true
		return snap
	}

	var scores []int
	var highRisk int
	for _, rec := range history {
		snap.TotalClaims++
		switch rec.Status {
		case models.ClaimPending:
			snap.PendingClaims++
		case models.ClaimApproved:
			snap.ApprovedClaims++
		case models.ClaimDenied:
			snap.DeniedClaims++
		}
		snap.TotalValue += rec.ClaimData.TotalValue()

		if len(rec.ClaimData) == 0 {
			continue
		}
		analysis, err := s.fraud.Analyze(models.FraudAnalysisRequest{
			UserID:    userID,
			ClaimData: rec.ClaimData,
			StoreID:   rec.StoreID,
		})
		if err != nil {
			s.logger.Warn("claim analysis failed during snapshot", "user_id", userID, "error", err)
			continue
		}
		scores = append(scores, analysis.FraudScore)
		if analysis.FraudScore > highRiskThreshold {
			highRisk++
		}
	}

	if len(scores) == 0 {
		zero := 0
		snap.RiskScore = &zero
		return snap
	}

	var sum int
	for _, score := range scores {
		sum += score
	}
	avg := float64(sum) / float64(len(scores))

	score := int(avg) + penalties(snap, highRisk)
	if score > 100 {
		score = 100
	}
	snap.RiskScore = &score
	snap.IsFlagged = score > flagThreshold
	return snap
}

// penalties adds pattern-based surcharges on top of the average claim score.
func penalties(snap *Snapshot, highRiskClaims int) int {
	var penalty int
	total := float64(snap.TotalClaims)

	denialRate := float64(snap.DeniedClaims) / total
	if denialRate > 0.5 {
		penalty += 20
	} else if denialRate > 0.3 {
		penalty += 10
	}

	avgValue := snap.TotalValue / total
	if avgValue > 500 {
		penalty += 15
	} else if avgValue > 200 {
		penalty += 5
	}

	if snap.TotalClaims > 10 {
		penalty += 10
	} else if snap.TotalClaims > 5 {
		penalty += 5
	}

	highRiskRatio := float64(highRiskClaims) / total
	if highRiskRatio > 0.5 {
		penalty += 25
	} else if highRiskRatio > 0.3 {
		penalty += 15
	}

	return penalty
}

// waitForResult polls the cache while a concurrent computation finishes.
func (s *service) waitForResult(ctx context.Context, userID string) (*Snapshot, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, errors.New("risk calculation timed out")
		case <-ticker.C:
			var snap Snapshot
			err := s.cache.Get(ctx, keyPrefix+userID, &snap)
			if err == nil {
				return &snap, nil
			}
			if !errors.Is(err, repositories.ErrCacheMiss) {
				return nil, err
			}
		}
	}
}
