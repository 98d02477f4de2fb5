package cart

import (
	"errors"
	"fmt"
	"sync"

	"pos_terminal/internal/models"
)

var ErrRentalNotFound = errors.New("rental line not found in the last lookup")

// Selection is the returns workflow counterpart of Cart: the outstanding
// rentals of one customer and the lines picked for return.
type Selection struct {
	mu            sync.Mutex
	customerPhone string
	outstanding   []models.OutstandingRental
	selected      []models.ReturnLine
	inFlight      bool
	pending       []models.ReturnLine
}

func NewSelection() *Selection {
	return &Selection{}
}

// SetOutstanding replaces the lookup result. Selected lines that are no
// longer outstanding are dropped.
func (s *Selection) SetOutstanding(customerPhone string, rentals []models.OutstandingRental) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customerPhone = customerPhone
	s.outstanding = append([]models.OutstandingRental(nil), rentals...)

	kept := s.selected[:0]
	for _, line := range s.selected {
		if s.findLocked(line.RentalItemID) >= 0 {
			kept = append(kept, line)
		}
	}
	s.selected = kept
}

// ClearOutstanding empties the lookup result and the selection, keeping the
// phone so the form stays filled in.
func (s *Selection) ClearOutstanding(customerPhone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerPhone = customerPhone
	s.outstanding = nil
	s.selected = nil
}

// Toggle selects the rental line with its full outstanding quantity, or
// deselects it if already selected.
func (s *Selection) Toggle(rentalItemID string) (selected bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.selected {
		if line.RentalItemID == rentalItemID {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return false, nil
		}
	}

	idx := s.findLocked(rentalItemID)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrRentalNotFound, rentalItemID)
	}
	s.selected = append(s.selected, models.ReturnLine{
		RentalItemID: rentalItemID,
		Quantity:     s.outstanding[idx].Quantity,
	})
	return true, nil
}

func (s *Selection) findLocked(rentalItemID string) int {
	for i, rental := range s.outstanding {
		if rental.ID == rentalItemID {
			return i
		}
	}
	return -1
}

type SelectionView struct {
	CustomerPhone string                     `json:"customerPhone"`
	Outstanding   []models.OutstandingRental `json:"outstanding"`
	Selected      []models.ReturnLine        `json:"selected"`
}

func (s *Selection) View() SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SelectionView{
		CustomerPhone: s.customerPhone,
		Outstanding:   append([]models.OutstandingRental{}, s.outstanding...),
		Selected:      append([]models.ReturnLine{}, s.selected...),
	}
}

func (s *Selection) BeginCommit() (string, []models.ReturnLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return "", nil, ErrCommitInFlight
	}
	s.inFlight = true
	s.pending = append([]models.ReturnLine(nil), s.selected...)
	return s.customerPhone, append([]models.ReturnLine(nil), s.pending...), nil
}

// FinishCommit clears the in-flight mark and, on success, deselects the lines
// that were sent. Lines selected meanwhile stay selected.
func (s *Selection) FinishCommit(committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	sent := s.pending
	s.pending = nil
	if !committed {
		return
	}

	kept := make([]models.ReturnLine, 0, len(s.selected))
	for _, line := range s.selected {
		returned := false
		for _, done := range sent {
			if done.RentalItemID == line.RentalItemID {
				returned = true
				break
			}
		}
		if !returned {
			kept = append(kept, line)
		}
	}
	s.selected = kept
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerPhone = ""
	s.outstanding = nil
	s.selected = nil
}
