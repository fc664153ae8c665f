package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bastion/internal/models"
)

func TestFakePaginationInvariant(t *testing.T) {
	f := NewFake(7, 25)
	resp, err := f.UsersList(context.Background(), 3, 10)
	require.NoError(t, err)

	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.Pages)
	assert.Len(t, resp.Users, 5)

	// Out-of-range pages are clamped, never empty-crashed.
	resp, err = f.UsersList(context.Background(), 4, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Len(t, resp.Users, 5)
}

func TestFakeCountersAddUp(t *testing.T) {
	f := NewFake(7, 10)
	resp, err := f.UsersList(context.Background(), 1, 10)
	require.NoError(t, err)
	for _, u := range resp.Users {
		assert.Equal(t, u.TotalDisputes, u.ApprovedDisputes+u.PendingDisputes+u.DeniedDisputes)
	}
}

func TestFakeSubmitAndResolve(t *testing.T) {
	f := NewFake(7, 3)
	ctx := context.Background()

	users, err := f.UsersList(ctx, 1, 10)
	require.NoError(t, err)
	stores, err := f.Stores(ctx)
	require.NoError(t, err)

	sub := models.ClaimSubmission{
		UserID: users.Users[0].ID,
		ClaimContext: models.ClaimContext{
			StoreID:      stores[0].ID,
			EmailAtStore: "alt@example.com",
			ClaimData:    models.ItemList{{ItemName: "Headphones", Category: "electronics", Price: 199, Quantity: 1}},
		},
	}
	resp, err := f.SubmitClaim(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, resp.Status)

	upd, err := f.UpdateClaimStatus(ctx, resp.ClaimID, models.ClaimApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, upd.Status)

	claim, err := f.Claim(ctx, resp.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, claim.Status)
	assert.Equal(t, 199.0, claim.TotalValue)
}

func TestFakeUnknownUserIs404(t *testing.T) {
	f := NewFake(7, 3)
	_, err := f.UserDetails(context.Background(), "nope")
	assert.True(t, IsNotFound(err))

	_, err = f.SubmitClaim(context.Background(), models.ClaimSubmission{UserID: "nope"})
	assert.True(t, IsNotFound(err))
}

func TestFakeSearch(t *testing.T) {
	f := NewFake(7, 20)
	resp, err := f.SearchUsers(context.Background(), "customer001", 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "customer001@example.com", resp.Users[0].KYCEmail)
}

func TestFakeDeterministic(t *testing.T) {
	a := NewFake(42, 10)
	b := NewFake(42, 10)
	ra, err := a.SummaryStats(context.Background(), models.Range1Year)
	require.NoError(t, err)
	rb, err := b.SummaryStats(context.Background(), models.Range1Year)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}

func TestFakeResolvedClaimIsTerminal(t *testing.T) {
	f := NewFake(7, 3)
	ctx := context.Background()

	users, err := f.UsersList(ctx, 1, 10)
	require.NoError(t, err)
	stores, err := f.Stores(ctx)
	require.NoError(t, err)

	resp, err := f.SubmitClaim(ctx, models.ClaimSubmission{
		UserID: users.Users[0].ID,
		ClaimContext: models.ClaimContext{
			StoreID:      stores[0].ID,
			EmailAtStore: "alt@example.com",
			ClaimData:    models.ItemList{{ItemName: "Headphones", Category: "electronics", Price: 199, Quantity: 1}},
		},
	})
	require.NoError(t, err)

	// PENDING is not a valid transition target.
	_, err = f.UpdateClaimStatus(ctx, resp.ClaimID, models.ClaimPending)
	assert.True(t, IsStatus(err, http.StatusBadRequest))

	_, err = f.UpdateClaimStatus(ctx, resp.ClaimID, models.ClaimApproved)
	require.NoError(t, err)

	// A resolved claim cannot be resolved again.
	_, err = f.UpdateClaimStatus(ctx, resp.ClaimID, models.ClaimDenied)
	assert.True(t, IsStatus(err, http.StatusConflict))

	claim, err := f.Claim(ctx, resp.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimApproved, claim.Status)
}

func TestFakeTitleCaseMultibyte(t *testing.T) {
	assert.Equal(t, "Électronique", titleCase("électronique"))
	assert.Equal(t, "Electronics", titleCase("electronics"))
	assert.Equal(t, "", titleCase(""))
}
