package service

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos_terminal/internal/models"
)

type fakeAdminRemote struct {
	err       error
	inventory map[string]int
	created   []models.EmployeeInput
	updated   map[string]models.EmployeeInput
	deleted   []string
	employees []models.Employee
}

func newFakeAdminRemote() *fakeAdminRemote {
	return &fakeAdminRemote{inventory: map[string]int{}, updated: map[string]models.EmployeeInput{}}
}

func (f *fakeAdminRemote) UpdateInventoryQuantity(_ context.Context, id string, quantity int) error {
	if f.err != nil {
		return f.err
	}
	f.inventory[id] = quantity
	return nil
}

func (f *fakeAdminRemote) ListEmployees(context.Context) ([]models.Employee, error) {
	return f.employees, f.err
}

func (f *fakeAdminRemote) CreateEmployee(_ context.Context, input models.EmployeeInput) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, input)
	return nil
}

func (f *fakeAdminRemote) UpdateEmployee(_ context.Context, id string, input models.EmployeeInput) error {
	if f.err != nil {
		return f.err
	}
	f.updated[id] = input
	return nil
}

func (f *fakeAdminRemote) DeleteEmployee(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeJournalReader struct {
	limit int
}

func (r *fakeJournalReader) RecentEntries(_ context.Context, limit int) ([]models.JournalEntry, error) {
	r.limit = limit
	return []models.JournalEntry{{ID: 1, Kind: models.JournalSale}}, nil
}

func newAdmin(remote AdminRemote, refresher Refresher, journal JournalReader) *AdminService {
	return NewAdminService(log.New(&bytes.Buffer{}, "", 0), remote, refresher, journal)
}

func TestAdjustInventory(t *testing.T) {
	remote := newFakeAdminRemote()
	refresher := &countingRefresher{}
	svc := newAdmin(remote, refresher, nil)

	require.NoError(t, svc.AdjustInventory(context.Background(), "a", 0))
	assert.Equal(t, 0, remote.inventory["a"])
	assert.Equal(t, 1, refresher.Count())

	err := svc.AdjustInventory(context.Background(), "a", -1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
	assert.Equal(t, "Quantity cannot be negative", FailureMessage(err, InventoryFailed))

	err = svc.AdjustInventory(context.Background(), " ", 4)
	assert.ErrorIs(t, err, ErrMissingItemID)
	assert.Equal(t, "Please select an item", FailureMessage(err, InventoryFailed))
	assert.Equal(t, 1, refresher.Count())
}

func TestAdjustInventory_RemoteFailure(t *testing.T) {
	remote := newFakeAdminRemote()
	remote.err = remoteError("Item not found")
	refresher := &countingRefresher{}
	svc := newAdmin(remote, refresher, nil)

	err := svc.AdjustInventory(context.Background(), "zz", 3)

	assert.Equal(t, "Item not found", FailureMessage(err, InventoryFailed))
	assert.Zero(t, refresher.Count())
}

func TestCreateEmployee_Validation(t *testing.T) {
	valid := models.EmployeeInput{Username: "jdoe", FirstName: "J", LastName: "Doe", Position: models.RoleCashier, Password: "pw"}

	tests := []struct {
		name   string
		mutate func(*models.EmployeeInput)
		ok     bool
	}{
		{"valid", func(*models.EmployeeInput) {}, true},
		{"missing username", func(in *models.EmployeeInput) { in.Username = " " }, false},
		{"missing first name", func(in *models.EmployeeInput) { in.FirstName = "" }, false},
		{"missing password", func(in *models.EmployeeInput) { in.Password = "" }, false},
		{"unknown position", func(in *models.EmployeeInput) { in.Position = "Manager" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeAdminRemote()
			svc := newAdmin(remote, &countingRefresher{}, nil)
			input := valid
			tt.mutate(&input)

			err := svc.CreateEmployee(context.Background(), input)
			if tt.ok {
				require.NoError(t, err)
				assert.Len(t, remote.created, 1)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidEmployee)
			assert.Empty(t, remote.created)
		})
	}
}

func TestUpdateEmployee_PasswordOptional(t *testing.T) {
	remote := newFakeAdminRemote()
	svc := newAdmin(remote, &countingRefresher{}, nil)

	err := svc.UpdateEmployee(context.Background(), "e-1", models.EmployeeInput{FirstName: "A", LastName: "B", Position: models.RoleAdmin})
	require.NoError(t, err)
	assert.Contains(t, remote.updated, "e-1")

	err = svc.UpdateEmployee(context.Background(), "", models.EmployeeInput{FirstName: "A", LastName: "B", Position: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidEmployee)
}

func TestDeleteEmployee(t *testing.T) {
	remote := newFakeAdminRemote()
	svc := newAdmin(remote, &countingRefresher{}, nil)

	require.NoError(t, svc.DeleteEmployee(context.Background(), "e-9"))
	assert.Equal(t, []string{"e-9"}, remote.deleted)

	remote.err = remoteError("Cannot delete yourself")
	err := svc.DeleteEmployee(context.Background(), "e-1")
	assert.Equal(t, "Cannot delete yourself", FailureMessage(err, DeleteFailed))
}

func TestEmployees(t *testing.T) {
	remote := newFakeAdminRemote()
	remote.employees = []models.Employee{{ID: "e-1", Username: "a", Position: models.RoleAdmin}}
	svc := newAdmin(remote, &countingRefresher{}, nil)

	employees, err := svc.Employees(context.Background())
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestJournal(t *testing.T) {
	_, err := newAdmin(newFakeAdminRemote(), &countingRefresher{}, nil).Journal(context.Background(), 10)
	assert.ErrorIs(t, err, ErrJournalDisabled)

	reader := &fakeJournalReader{}
	entries, err := newAdmin(newFakeAdminRemote(), &countingRefresher{}, reader).Journal(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 10, reader.limit)
}
