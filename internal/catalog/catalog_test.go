package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"pos_terminal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	items []models.CatalogItem
	err   error
	calls int
}

func (f *fakeSource) ListItems(context.Context) ([]models.CatalogItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func testItems() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "a1", ItemID: 1000, Name: "Potato", Price: decimal.RequireFromString("1.25"), Quantity: 10},
		{ID: "a2", ItemID: 1001, Name: "Sweet Potato", Price: decimal.RequireFromString("2.00"), Quantity: 3},
		{ID: "a3", ItemID: 2050, Name: "Drill", Price: decimal.RequireFromString("40.00"), Quantity: 1},
	}
}

func TestRefreshAndLookup(t *testing.T) {
	src := &fakeSource{items: testItems()}
	c := New(src, log.New(io.Discard, "", 0))

	_, ok := c.Lookup(1000)
	assert.False(t, ok, "empty before the first refresh")
	assert.True(t, c.RefreshedAt().IsZero())

	c.Refresh(context.Background())

	item, ok := c.Lookup(1001)
	require.True(t, ok)
	assert.Equal(t, "Sweet Potato", item.Name)
	assert.Len(t, c.Items(), 3)
	assert.False(t, c.RefreshedAt().IsZero())
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{items: testItems()}
	c := New(src, log.New(io.Discard, "", 0))
	c.Refresh(context.Background())

	src.err = errors.New("connection refused")
	c.Refresh(context.Background())

	assert.Len(t, c.Items(), 3)
	assert.Equal(t, 2, src.calls)
}

func TestRefresh_FirstFailureLeavesEmptyList(t *testing.T) {
	c := New(&fakeSource{err: errors.New("boom")}, log.New(io.Discard, "", 0))
	c.Refresh(context.Background())
	assert.Empty(t, c.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New(&fakeSource{items: testItems()}, log.New(io.Discard, "", 0))
	c.Refresh(context.Background())

	items := c.Items()
	items[0].Name = "changed"

	item, _ := c.Lookup(1000)
	assert.Equal(t, "Potato", item.Name)
}

func TestFilter(t *testing.T) {
	c := New(&fakeSource{items: testItems()}, log.New(io.Discard, "", 0))
	c.Refresh(context.Background())

	tests := []struct {
		term string
		want []int64
	}{
		{"", []int64{1000, 1001, 2050}},
		{"potato", []int64{1000, 1001}},
		{"SWEET", []int64{1001}},
		{"205", []int64{2050}},
		{"100", []int64{1000, 1001}},
		{"hammer", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := []int64{}
			for _, item := range c.Filter(tt.term) {
				got = append(got, item.ItemID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
