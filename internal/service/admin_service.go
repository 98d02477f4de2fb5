package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"pos_terminal/internal/models"
)

const (
	InventoryUpdated = "Quantity updated successfully"
	EmployeeCreated  = "Employee created successfully"
	EmployeeUpdated  = "Employee updated successfully"
	EmployeeDeleted  = "Employee deleted successfully"

	InventoryFailed = "Update failed"
	EmployeeFailed  = "Operation failed"
	DeleteFailed    = "Delete failed"
)

type AdminRemote interface {
	UpdateInventoryQuantity(ctx context.Context, id string, quantity int) error
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, input models.EmployeeInput) error
	UpdateEmployee(ctx context.Context, id string, input models.EmployeeInput) error
	DeleteEmployee(ctx context.Context, id string) error
}

type JournalReader interface {
	RecentEntries(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// AdminService backs the inventory and employee screens.
type AdminService struct {
	logger  *log.Logger
	remote  AdminRemote
	catalog Refresher
	journal JournalReader
}

// NewAdminService wires the admin workflows. journal may be nil.
func NewAdminService(logger *log.Logger, remote AdminRemote, catalog Refresher, journal JournalReader) *AdminService {
	return &AdminService{
		logger:  logger,
		remote:  remote,
		catalog: catalog,
		journal: journal,
	}
}

func (s *AdminService) AdjustInventory(ctx context.Context, id string, quantity int) error {
	ctx, span := tracer.Start(ctx, "AdminService.AdjustInventory")
	defer span.End()
	span.SetAttributes(attribute.String("pos.item", id), attribute.Int("pos.quantity", quantity))

	if strings.TrimSpace(id) == "" {
		return ErrMissingItemID
	}
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeQuantity, quantity)
	}
	if err := s.remote.UpdateInventoryQuantity(ctx, id, quantity); err != nil {
		failSpan(span, err)
		s.logger.Printf("Inventory update for %s failed: %v", id, err)
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	s.logger.Printf("Inventory for %s set to %d", id, quantity)
	s.catalog.Refresh(ctx)
	return nil
}

func (s *AdminService) Employees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.remote.ListEmployees(ctx)
	if err != nil {
		s.logger.Printf("Failed to load employees: %v", err)
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func (s *AdminService) CreateEmployee(ctx context.Context, input models.EmployeeInput) error {
	if err := validateEmployee(input, true); err != nil {
		return err
	}
	if err := s.remote.CreateEmployee(ctx, input); err != nil {
		s.logger.Printf("Failed to create employee %s: %v", input.Username, err)
		return fmt.Errorf("failed to create employee: %w", err)
	}
	s.logger.Printf("Employee %s created as %s", input.Username, input.Position)
	return nil
}

// UpdateEmployee leaves the password unchanged when input.Password is empty.
func (s *AdminService) UpdateEmployee(ctx context.Context, id string, input models.EmployeeInput) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidEmployee)
	}
	if err := validateEmployee(input, false); err != nil {
		return err
	}
	if err := s.remote.UpdateEmployee(ctx, id, input); err != nil {
		s.logger.Printf("Failed to update employee %s: %v", id, err)
		return fmt.Errorf("failed to update employee: %w", err)
	}
	s.logger.Printf("Employee %s updated", id)
	return nil
}

func (s *AdminService) DeleteEmployee(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidEmployee)
	}
	if err := s.remote.DeleteEmployee(ctx, id); err != nil {
		s.logger.Printf("Failed to delete employee %s: %v", id, err)
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	s.logger.Printf("Employee %s deleted", id)
	return nil
}

func (s *AdminService) Journal(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	entries, err := s.journal.RecentEntries(ctx, limit)
	if err != nil {
		s.logger.Printf("Failed to read journal: %v", err)
		return nil, err
	}
	return entries, nil
}

func validateEmployee(input models.EmployeeInput, creating bool) error {
	var missing []string
	if creating && strings.TrimSpace(input.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "first name")
	}
	if strings.TrimSpace(input.LastName) == "" {
		missing = append(missing, "last name")
	}
	if creating && input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEmployee, strings.Join(missing, ", "))
	}
	if !input.Position.Valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidEmployee, input.Position)
	}
	return nil
}
