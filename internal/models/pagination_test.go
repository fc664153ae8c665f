package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 1, ClampPage(-5, 3))
	assert.Equal(t, 3, ClampPage(4, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 1, ClampPage(7, 0), "empty collection pins the page to 1")
}

func TestClaimStatusLifecycle(t *testing.T) {
	assert.True(t, ClaimPending.Valid())
	assert.False(t, ClaimStatus("REOPENED").Valid())
	assert.False(t, ClaimPending.Resolved())
	assert.True(t, ClaimApproved.Resolved())
	assert.True(t, ClaimDenied.Resolved())
}

func TestItemListTotalValue(t *testing.T) {
	items := ItemList{
		{ItemName: "A", Price: 10, Quantity: 2},
		{ItemName: "B", Price: 5.5, Quantity: 1},
	}
	assert.InDelta(t, 25.5, items.TotalValue(), 1e-9)
}
