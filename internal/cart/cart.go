// Package cart accumulates the line items of a sale or rental before commit
// and derives the preview totals shown to the cashier.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pos_terminal/internal/models"
)

var (
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrItemNotFound          = errors.New("item not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrCommitInFlight        = errors.New("a commit for this cart is already in progress")
)

// Resolver looks an item up by business id on the remote API.
type Resolver interface {
	GetItemByItemID(ctx context.Context, itemID int64) (*models.CatalogItem, error)
}

type Cart struct {
	mu            sync.Mutex
	lines         []models.CartLine
	couponCode    string
	customerPhone string
	dueDate       string
	inFlight      bool
	pending       Snapshot
}

func New() *Cart {
	return &Cart{}
}

// AddLine resolves itemID and merges quantity into the cart. The stock check
// runs against the resolved record only and is not a reservation: the remote
// API re-validates availability at commit time.
func (c *Cart) AddLine(ctx context.Context, resolver Resolver, itemID int64, quantity int) (models.CartLine, error) {
	if quantity < 1 {
		return models.CartLine{}, ErrInvalidQuantity
	}

	item, err := resolver.GetItemByItemID(ctx, itemID)
	if err != nil {
		return models.CartLine{}, fmt.Errorf("%w: %d: %v", ErrItemNotFound, itemID, err)
	}
	if item == nil {
		return models.CartLine{}, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if item.Quantity < quantity {
		return models.CartLine{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientInventory, quantity, item.Quantity)
	}

	snapshot := &models.ItemSnapshot{Name: item.Name, Price: item.Price}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity += quantity
			c.lines[i].Snapshot = snapshot
			return cloneLine(c.lines[i]), nil
		}
	}

	line := models.CartLine{ItemID: itemID, Quantity: quantity, Snapshot: snapshot}
	c.lines = append(c.lines, line)
	return cloneLine(line), nil
}

func (c *Cart) RemoveLine(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneLines(c.lines)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) SetCoupon(code string) {
	c.mu.Lock()
	c.couponCode = code
	c.mu.Unlock()
}

func (c *Cart) Coupon() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.couponCode
}

func (c *Cart) SetCustomer(phone, dueDate string) {
	c.mu.Lock()
	c.customerPhone = phone
	c.dueDate = dueDate
	c.mu.Unlock()
}

func (c *Cart) Customer() (phone, dueDate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customerPhone, c.dueDate
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
}

func (c *Cart) reset() {
	c.lines = nil
	c.couponCode = ""
	c.customerPhone = ""
	c.dueDate = ""
}

// View is everything a cart screen shows, read under one lock acquisition
// so the totals always agree with the lines and coupon beside them.
type View struct {
	Lines         []models.CartLine
	Totals        Totals
	CouponCode    string
	CustomerPhone string
	DueDate       string
	InFlight      bool
}

func (c *Cart) Preview(prices PriceLookup) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Lines:         cloneLines(c.lines),
		Totals:        ComputeTotals(c.lines, prices, c.couponCode),
		CouponCode:    c.couponCode,
		CustomerPhone: c.customerPhone,
		DueDate:       c.dueDate,
		InFlight:      c.inFlight,
	}
}

type Snapshot struct {
	Lines         []models.CartLine
	CouponCode    string
	CustomerPhone string
	DueDate       string
}

// BeginCommit marks the cart as having a commit outstanding and returns the
// state to commit. Every successful BeginCommit must be paired with
// FinishCommit.
func (c *Cart) BeginCommit() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return Snapshot{}, ErrCommitInFlight
	}
	c.inFlight = true
	c.pending = Snapshot{
		Lines:         cloneLines(c.lines),
		CouponCode:    c.couponCode,
		CustomerPhone: c.customerPhone,
		DueDate:       c.dueDate,
	}
	return c.pending, nil
}

// FinishCommit clears the in-flight mark. When committed is true it removes
// what the commit sent: the snapshot's quantities, and the coupon and
// customer if they are unchanged. Edits made while the commit was
// outstanding stay in the cart.
func (c *Cart) FinishCommit(committed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	sent := c.pending
	c.pending = Snapshot{}
	if !committed {
		return
	}

	kept := make([]models.CartLine, 0, len(c.lines))
	for _, line := range c.lines {
		for _, s := range sent.Lines {
			if s.ItemID == line.ItemID {
				line.Quantity -= s.Quantity
				break
			}
		}
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	c.lines = kept

	if c.couponCode == sent.CouponCode {
		c.couponCode = ""
	}
	if c.customerPhone == sent.CustomerPhone && c.dueDate == sent.DueDate {
		c.customerPhone = ""
		c.dueDate = ""
	}
}

func (c *Cart) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (s Snapshot) LineItems() []models.LineItem {
	items := make([]models.LineItem, len(s.Lines))
	for i, line := range s.Lines {
		items[i] = models.LineItem{ItemID: line.ItemID, Quantity: line.Quantity}
	}
	return items
}

func cloneLine(line models.CartLine) models.CartLine {
	if line.Snapshot != nil {
		snap := *line.Snapshot
		line.Snapshot = &snap
	}
	return line
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	for i, line := range lines {
		out[i] = cloneLine(line)
	}
	return out
}
