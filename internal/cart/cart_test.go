package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pos_terminal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	mu    sync.Mutex
	items map[int64]models.CatalogItem
	calls int
}

func newFakeResolver(items ...models.CatalogItem) *fakeResolver {
	r := &fakeResolver{items: make(map[int64]models.CatalogItem)}
	for _, item := range items {
		r.items[item.ItemID] = item
	}
	return r
}

func (r *fakeResolver) GetItemByItemID(_ context.Context, itemID int64) (*models.CatalogItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	item, ok := r.items[itemID]
	if !ok {
		return nil, errors.New("GET items/item-id: status 404")
	}
	return &item, nil
}

func potato(quantity int) models.CatalogItem {
	return models.CatalogItem{ID: "a1", ItemID: 1000, Name: "Potato", Price: decimal.RequireFromString("1.25"), Quantity: quantity}
}

func TestAddLine_MergesDuplicates(t *testing.T) {
	c := New()
	r := newFakeResolver(potato(100))
	ctx := context.Background()

	for _, qty := range []int{1, 4, 2, 3} {
		_, err := c.AddLine(ctx, r, 1000, qty)
		require.NoError(t, err)
	}

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1000), lines[0].ItemID)
	assert.Equal(t, 10, lines[0].Quantity)
	require.NotNil(t, lines[0].Snapshot)
	assert.Equal(t, "Potato", lines[0].Snapshot.Name)
}

func TestAddLine_PreservesFirstInsertionOrder(t *testing.T) {
	c := New()
	r := newFakeResolver(
		models.CatalogItem{ItemID: 1, Quantity: 10},
		models.CatalogItem{ItemID: 2, Quantity: 10},
		models.CatalogItem{ItemID: 3, Quantity: 10},
	)
	ctx := context.Background()

	for _, id := range []int64{2, 1, 2, 3, 1} {
		_, err := c.AddLine(ctx, r, id, 1)
		require.NoError(t, err)
	}

	var ids []int64
	for _, line := range c.Lines() {
		ids = append(ids, line.ItemID)
	}
	assert.Equal(t, []int64{2, 1, 3}, ids)
}

func TestAddLine_InventoryBoundary(t *testing.T) {
	ctx := context.Background()

	c := New()
	_, err := c.AddLine(ctx, newFakeResolver(potato(5)), 1000, 5)
	require.NoError(t, err, "requesting exactly the available quantity succeeds")

	c = New()
	_, err = c.AddLine(ctx, newFakeResolver(potato(5)), 1000, 6)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Zero(t, c.Len())
}

func TestAddLine_ChecksRequestedQuantityOnly(t *testing.T) {
	c := New()
	r := newFakeResolver(potato(5))
	ctx := context.Background()

	_, err := c.AddLine(ctx, r, 1000, 4)
	require.NoError(t, err)
	line, err := c.AddLine(ctx, r, 1000, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, line.Quantity)
}

func TestAddLine_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		itemID   int64
		quantity int
		wantErr  error
		resolves bool
	}{
		{"unknown item", 9999, 1, ErrItemNotFound, true},
		{"zero quantity", 1000, 0, ErrInvalidQuantity, false},
		{"negative quantity", 1000, -2, ErrInvalidQuantity, false},
		{"too many", 1000, 11, ErrInsufficientInventory, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			r := newFakeResolver(potato(10))
			_, err := c.AddLine(ctx, r, 1000, 1)
			require.NoError(t, err)
			before := c.Lines()

			_, err = c.AddLine(ctx, r, tt.itemID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, c.Lines(), "failed add must not touch the cart")
			if tt.resolves {
				assert.Equal(t, 2, r.calls)
			} else {
				assert.Equal(t, 1, r.calls, "policy failures cost no remote call")
			}
		})
	}
}

func TestRemoveLine(t *testing.T) {
	c := New()
	r := newFakeResolver(potato(10), models.CatalogItem{ItemID: 2, Quantity: 10})
	ctx := context.Background()
	_, _ = c.AddLine(ctx, r, 1000, 1)
	_, _ = c.AddLine(ctx, r, 2, 1)

	before := c.Lines()
	c.RemoveLine(424242)
	assert.Equal(t, before, c.Lines(), "removing an absent line is a no-op")

	c.RemoveLine(1000)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ItemID)
}

func TestLines_ReturnsCopies(t *testing.T) {
	c := New()
	_, err := c.AddLine(context.Background(), newFakeResolver(potato(10)), 1000, 1)
	require.NoError(t, err)

	lines := c.Lines()
	lines[0].Quantity = 99
	lines[0].Snapshot.Name = "changed"

	again := c.Lines()
	assert.Equal(t, 1, again[0].Quantity)
	assert.Equal(t, "Potato", again[0].Snapshot.Name)
}

func TestBeginCommit_GuardsDuplicateSubmit(t *testing.T) {
	c := New()
	_, err := c.AddLine(context.Background(), newFakeResolver(potato(10)), 1000, 2)
	require.NoError(t, err)
	c.SetCoupon("SAVE10")

	snap, err := c.BeginCommit()
	require.NoError(t, err)
	assert.Equal(t, []models.LineItem{{ItemID: 1000, Quantity: 2}}, snap.LineItems())
	assert.Equal(t, "SAVE10", snap.CouponCode)
	assert.True(t, c.InFlight())

	_, err = c.BeginCommit()
	assert.ErrorIs(t, err, ErrCommitInFlight)

	c.FinishCommit(false)
	assert.False(t, c.InFlight())
	assert.Equal(t, 1, c.Len(), "failed commit leaves the cart untouched")
	assert.Equal(t, "SAVE10", c.Coupon())

	_, err = c.BeginCommit()
	require.NoError(t, err)
	c.FinishCommit(true)
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Coupon())
}

func TestBeginCommit_ConcurrentCallersOnlyOneWins(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.BeginCommit(); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestClear_ResetsRentalFields(t *testing.T) {
	c := New()
	c.SetCustomer("5551234", "2026-11-01")
	phone, due := c.Customer()
	assert.Equal(t, "5551234", phone)
	assert.Equal(t, "2026-11-01", due)

	c.Clear()
	phone, due = c.Customer()
	assert.Empty(t, phone)
	assert.Empty(t, due)
}

func TestFinishCommit_KeepsEditsMadeWhileInFlight(t *testing.T) {
	ctx := context.Background()
	onion := models.CatalogItem{ID: "a2", ItemID: 2000, Name: "Onion", Price: decimal.RequireFromString("0.80"), Quantity: 100}
	r := newFakeResolver(potato(100), onion)
	c := New()
	_, err := c.AddLine(ctx, r, 1000, 2)
	require.NoError(t, err)
	c.SetCoupon("SAVE10")

	_, err = c.BeginCommit()
	require.NoError(t, err)

	_, err = c.AddLine(ctx, r, 1000, 3)
	require.NoError(t, err)
	_, err = c.AddLine(ctx, r, 2000, 1)
	require.NoError(t, err)

	c.FinishCommit(true)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1000), lines[0].ItemID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(2000), lines[1].ItemID)
	assert.Empty(t, c.Coupon())
}

func TestFinishCommit_KeepsCouponChangedWhileInFlight(t *testing.T) {
	c := New()
	_, err := c.AddLine(context.Background(), newFakeResolver(potato(10)), 1000, 1)
	require.NoError(t, err)
	c.SetCoupon("OLD")
	c.SetCustomer("555-0100", "2030-01-01")

	_, err = c.BeginCommit()
	require.NoError(t, err)
	c.SetCoupon("NEW")

	c.FinishCommit(true)
	assert.Zero(t, c.Len())
	assert.Equal(t, "NEW", c.Coupon())
	phone, due := c.Customer()
	assert.Empty(t, phone)
	assert.Empty(t, due)
}

func TestPreview_ReadsOneConsistentState(t *testing.T) {
	c := New()
	_, err := c.AddLine(context.Background(), newFakeResolver(potato(10)), 1000, 4)
	require.NoError(t, err)
	prices := priceMap{1000: potato(10)}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				c.SetCoupon("SAVE10")
				c.SetCoupon("")
			}
		}
	}()

	for i := 0; i < 500; i++ {
		view := c.Preview(prices)
		if view.CouponCode == "" {
			assert.True(t, view.Totals.Discount.IsZero(), "discount without coupon")
		} else {
			assert.False(t, view.Totals.Discount.IsZero(), "coupon without discount")
		}
	}
	close(stop)
	wg.Wait()
}
