package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pos_terminal/internal/apiclient"
	"pos_terminal/internal/cart"
	"pos_terminal/internal/models"
)

var tracer = otel.Tracer("pos_terminal/internal/service")

// Remote is the slice of the remote API that commits transactions.
type Remote interface {
	CreateSale(ctx context.Context, req models.SaleRequest) (*models.Sale, error)
	CreateRental(ctx context.Context, req models.RentalRequest) error
	OutstandingRentals(ctx context.Context, customerPhone string) ([]models.OutstandingRental, error)
	CreateReturn(ctx context.Context, req models.ReturnRequest) error
}

type Refresher interface {
	Refresh(ctx context.Context)
}

// Journal records committed transactions locally. Optional.
type Journal interface {
	Record(ctx context.Context, entry *models.JournalEntry) error
}

type Outcome struct {
	Message string       `json:"message"`
	Sale    *models.Sale `json:"sale,omitempty"`
}

type TransactionService struct {
	logger   *log.Logger
	remote   Remote
	catalog  Refresher
	journal  Journal
	identity apiclient.CredentialSource
}

// NewTransactionService wires the submitter. journal may be nil.
func NewTransactionService(logger *log.Logger, remote Remote, catalog Refresher, journal Journal, identity apiclient.CredentialSource) *TransactionService {
	return &TransactionService{
		logger:   logger,
		remote:   remote,
		catalog:  catalog,
		journal:  journal,
		identity: identity,
	}
}

func (s *TransactionService) CommitSale(ctx context.Context, c *cart.Cart) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.CommitSale")
	defer span.End()

	snap, err := c.BeginCommit()
	if err != nil {
		return nil, err
	}
	if len(snap.Lines) == 0 {
		c.FinishCommit(false)
		return nil, ErrEmptyCart
	}

	req := models.SaleRequest{Items: snap.LineItems(), CouponCode: snap.CouponCode}
	span.SetAttributes(attribute.Int("pos.lines", len(req.Items)), attribute.Bool("pos.coupon", req.CouponCode != ""))

	sale, err := s.remote.CreateSale(ctx, req)
	if err != nil {
		c.FinishCommit(false)
		failSpan(span, err)
		s.logger.Printf("Sale failed: %v", err)
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	c.FinishCommit(true)

	reference := ""
	if sale != nil {
		reference = sale.ID
		s.logger.Printf("Sale %s committed: %d lines, final total %s", sale.ID, len(req.Items), sale.FinalTotal.StringFixed(2))
	}
	s.afterCommit(ctx, models.JournalSale, reference, req)

	return &Outcome{Message: SaleSucceeded, Sale: sale}, nil
}

// CommitRental validates phone, due date and lines, in that order, before
// anything is sent.
func (s *TransactionService) CommitRental(ctx context.Context, c *cart.Cart) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.CommitRental")
	defer span.End()

	snap, err := c.BeginCommit()
	if err != nil {
		return nil, err
	}

	var invalid error
	switch {
	case snap.CustomerPhone == "":
		invalid = ErrMissingCustomerPhone
	case snap.DueDate == "":
		invalid = ErrMissingDueDate
	case len(snap.Lines) == 0:
		invalid = ErrEmptyCart
	}
	if invalid != nil {
		c.FinishCommit(false)
		return nil, invalid
	}

	req := models.RentalRequest{
		CustomerPhone: snap.CustomerPhone,
		DueDate:       snap.DueDate,
		Items:         snap.LineItems(),
	}
	span.SetAttributes(attribute.Int("pos.lines", len(req.Items)))

	if err := s.remote.CreateRental(ctx, req); err != nil {
		c.FinishCommit(false)
		failSpan(span, err)
		s.logger.Printf("Rental failed: %v", err)
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}
	c.FinishCommit(true)
	s.logger.Printf("Rental committed: %d lines due %s", len(req.Items), req.DueDate)

	s.afterCommit(ctx, models.JournalRental, req.CustomerPhone, req)
	return &Outcome{Message: RentalSucceeded}, nil
}

// LookupOutstanding replaces the selection's rentals with the customer's
// outstanding ones. On failure the list is emptied.
func (s *TransactionService) LookupOutstanding(ctx context.Context, sel *cart.Selection, customerPhone string) error {
	ctx, span := tracer.Start(ctx, "TransactionService.LookupOutstanding")
	defer span.End()

	if customerPhone == "" {
		sel.ClearOutstanding(customerPhone)
		return ErrMissingCustomerPhone
	}

	rentals, err := s.remote.OutstandingRentals(ctx, customerPhone)
	if err != nil {
		sel.ClearOutstanding(customerPhone)
		failSpan(span, err)
		s.logger.Printf("Rental lookup failed: %v", err)
		return fmt.Errorf("failed to lookup rentals: %w", err)
	}
	sel.SetOutstanding(customerPhone, rentals)
	return nil
}

// CommitReturn sends the selected lines and then looks the customer up
// again so the list reflects what is still out.
func (s *TransactionService) CommitReturn(ctx context.Context, sel *cart.Selection) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.CommitReturn")
	defer span.End()

	phone, lines, err := sel.BeginCommit()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		sel.FinishCommit(false)
		return nil, ErrNothingSelected
	}

	req := models.ReturnRequest{Items: lines}
	span.SetAttributes(attribute.Int("pos.lines", len(lines)))

	if err := s.remote.CreateReturn(ctx, req); err != nil {
		sel.FinishCommit(false)
		failSpan(span, err)
		s.logger.Printf("Return failed: %v", err)
		return nil, fmt.Errorf("failed to create return: %w", err)
	}
	sel.FinishCommit(true)
	s.logger.Printf("Return committed: %d lines", len(lines))

	s.afterCommit(ctx, models.JournalReturn, phone, req)

	if phone != "" {
		if err := s.LookupOutstanding(ctx, sel, phone); err != nil {
			s.logger.Printf("Warning: failed to reload outstanding rentals after return: %v", err)
		}
	}
	return &Outcome{Message: ReturnSucceeded}, nil
}

func (s *TransactionService) afterCommit(ctx context.Context, kind models.JournalKind, reference string, payload any) {
	s.catalog.Refresh(ctx)

	if s.journal == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("Warning: failed to encode %s journal payload: %v", kind, err)
		return
	}
	entry := &models.JournalEntry{Kind: kind, Reference: reference, Payload: raw}
	if s.identity != nil {
		if _, employeeID, ok := s.identity.Credentials(); ok {
			entry.EmployeeID = employeeID
		}
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Printf("Warning: failed to journal %s: %v", kind, err)
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
