package service

import (
	"errors"

	"pos_terminal/internal/apiclient"
	"pos_terminal/internal/cart"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingCustomerPhone = errors.New("customer phone number is required")
	ErrMissingDueDate       = errors.New("due date is required")
	ErrNothingSelected      = errors.New("no rental lines selected for return")
	ErrInvalidEmployee      = errors.New("invalid employee")
	ErrMissingItemID        = errors.New("item id is required")
	ErrNegativeQuantity     = errors.New("quantity cannot be negative")
	ErrJournalDisabled      = errors.New("transaction journal is not enabled")

	ErrCommitInFlight  = cart.ErrCommitInFlight
	ErrInvalidQuantity = cart.ErrInvalidQuantity
)

const (
	SaleSucceeded   = "Sale processed successfully!"
	RentalSucceeded = "Rental processed successfully!"
	ReturnSucceeded = "Return processed successfully!"

	SaleFailed   = "Failed to process sale"
	RentalFailed = "Failed to process rental"
	ReturnFailed = "Failed to process return"
	LookupFailed = "Failed to lookup rentals"
)

// FailureMessage is the text shown to the cashier for err. A message from
// the remote API is passed through unchanged; local rejections have fixed
// wording; anything else gets fallback.
func FailureMessage(err error, fallback string) string {
	if msg, ok := apiclient.ServerMessage(err); ok {
		return msg
	}
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, ErrMissingCustomerPhone):
		return "Please enter customer phone number"
	case errors.Is(err, ErrMissingDueDate):
		return "Please enter due date"
	case errors.Is(err, ErrNothingSelected):
		return "Please select items to return"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "Please enter item ID and quantity"
	case errors.Is(err, cart.ErrInsufficientInventory):
		return "Insufficient inventory"
	case errors.Is(err, cart.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, ErrMissingItemID):
		return "Please select an item"
	case errors.Is(err, ErrNegativeQuantity):
		return "Quantity cannot be negative"
	case errors.Is(err, ErrCommitInFlight):
		return "A transaction is already being processed"
	case errors.Is(err, ErrInvalidEmployee), errors.Is(err, ErrJournalDisabled):
		return err.Error()
	}
	return fallback
}
