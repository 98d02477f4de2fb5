package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCashier Role = "Cashier"
	RoleAdmin   Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleCashier || r == RoleAdmin
}

// UserRecord is the persisted half of a session, stored next to the token.
type UserRecord struct {
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Position   Role   `json:"position"`
}

type Session struct {
	UserRecord
	Token string `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token      string `json:"token"`
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	Position   string `json:"position"`
}

type CatalogItem struct {
	ID       string          `json:"id"`
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ItemSnapshot is the display copy of an item taken when a line was added.
// Pricing never reads it.
type ItemSnapshot struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type CartLine struct {
	ItemID   int64         `json:"itemId"`
	Quantity int           `json:"quantity"`
	Snapshot *ItemSnapshot `json:"snapshot,omitempty"`
}

type LineItem struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

type SaleRequest struct {
	Items      []LineItem `json:"items"`
	CouponCode string     `json:"couponCode,omitempty"`
}

type Sale struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	FinalTotal      decimal.Decimal `json:"finalTotal"`
	CouponCode      string          `json:"couponCode,omitempty"`
	TransactionDate string          `json:"transactionDate"`
}

type RentalRequest struct {
	CustomerPhone string     `json:"customerPhone"`
	DueDate       string     `json:"dueDate"`
	Items         []LineItem `json:"items"`
}

type OutstandingRental struct {
	ID          string `json:"id"`
	ItemID      int64  `json:"itemId"`
	ItemName    string `json:"itemName"`
	Quantity    int    `json:"quantity"`
	DaysOverdue int    `json:"daysOverdue"`
	Returned    bool   `json:"returned"`
}

type ReturnLine struct {
	RentalItemID string `json:"rentalItemId"`
	Quantity     int    `json:"quantity"`
}

type ReturnRequest struct {
	Items []ReturnLine `json:"items"`
}

type Employee struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  Role   `json:"position"`
}

type EmployeeInput struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  Role   `json:"position"`
	Password  string `json:"password,omitempty"`
}

type JournalKind string

const (
	JournalSale   JournalKind = "sale"
	JournalRental JournalKind = "rental"
	JournalReturn JournalKind = "return"
)

type JournalEntry struct {
	ID         int64           `json:"id"`
	Kind       JournalKind     `json:"kind"`
	EmployeeID string          `json:"employeeId"`
	Reference  string          `json:"reference"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
}
