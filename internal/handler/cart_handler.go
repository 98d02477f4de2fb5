package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"pos_terminal/internal/cart"
	"pos_terminal/internal/models"
	"pos_terminal/internal/service"
	"pos_terminal/internal/workspace"
)

const missingLineInput = "Please enter item ID and quantity"

// CartHandler serves one cart of the workspace: the sales cart or the
// rental cart.
type CartHandler struct {
	logger *log.Logger
	rental bool
}

func NewSalesHandler(logger *log.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

func NewRentalsHandler(logger *log.Logger) *CartHandler {
	return &CartHandler{logger: logger, rental: true}
}

func (h *CartHandler) cart(ws *workspace.Workspace) *cart.Cart {
	if h.rental {
		return ws.Rentals
	}
	return ws.Sales
}

type LinePayload struct {
	ItemID    int64  `json:"itemId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
	LineTotal string `json:"lineTotal,omitempty"`
}

type TotalsPayload struct {
	Subtotal   string  `json:"subtotal"`
	Tax        string  `json:"tax"`
	Discount   string  `json:"discount"`
	Total      string  `json:"total"`
	Unresolved []int64 `json:"unresolved,omitempty"`
}

type CartPayload struct {
	Lines         []LinePayload  `json:"lines"`
	CouponCode    string         `json:"couponCode,omitempty"`
	CustomerPhone string         `json:"customerPhone,omitempty"`
	DueDate       string         `json:"dueDate,omitempty"`
	Totals        *TotalsPayload `json:"totals,omitempty"`
	Processing    bool           `json:"processing"`
}

func (h *CartHandler) view(ws *workspace.Workspace) CartPayload {
	snapshot := h.cart(ws).Preview(ws.Catalog)
	totals := snapshot.Totals
	if len(totals.Unresolved) > 0 {
		h.logger.Printf("Totals for %s skip items missing from the catalog: %v", ws.ID, totals.Unresolved)
	}

	payload := CartPayload{
		Lines:         make([]LinePayload, 0, len(snapshot.Lines)),
		CouponCode:    snapshot.CouponCode,
		CustomerPhone: snapshot.CustomerPhone,
		DueDate:       snapshot.DueDate,
		Processing:    snapshot.InFlight,
	}

	for _, line := range snapshot.Lines {
		lp := LinePayload{ItemID: line.ItemID, Quantity: line.Quantity}
		if line.Snapshot != nil {
			lp.Name = line.Snapshot.Name
		}
		if item, ok := ws.Catalog.Lookup(line.ItemID); ok {
			lp.Name = item.Name
			lp.Price = item.Price.StringFixed(2)
			lp.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))).StringFixed(2)
		}
		payload.Lines = append(payload.Lines, lp)
	}

	if !h.rental {
		payload.Totals = &TotalsPayload{
			Subtotal:   totals.Subtotal.StringFixed(2),
			Tax:        totals.Tax.StringFixed(2),
			Discount:   totals.Discount.StringFixed(2),
			Total:      totals.Total.StringFixed(2),
			Unresolved: totals.Unresolved,
		}
	}
	return payload
}

// Screen opens the cart screen, reloading the catalog it prices against.
func (h *CartHandler) Screen(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.Catalog.Refresh(r.Context())
	writeSuccess(w, h.logger, "", h.view(ws))
}

type addLineRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeBody(w, r, &req); err != nil || req.ItemID == 0 {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: missingLineInput})
		return
	}

	ws := workspaceFrom(r)
	if _, err := h.cart(ws).AddLine(r.Context(), ws.API, req.ItemID, req.Quantity); err != nil {
		h.logger.Printf("Add line %d x%d rejected: %v", req.ItemID, req.Quantity, err)
		writeFailure(w, h.logger, err, "Item not found")
		return
	}
	writeSuccess(w, h.logger, "", h.view(ws))
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("itemId"), 10, 64)
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid item id format"})
		return
	}
	ws := workspaceFrom(r)
	h.cart(ws).RemoveLine(itemID)
	writeSuccess(w, h.logger, "", h.view(ws))
}

type couponRequest struct {
	CouponCode string `json:"couponCode"`
}

func (h *CartHandler) SetCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid request body"})
		return
	}
	ws := workspaceFrom(r)
	h.cart(ws).SetCoupon(req.CouponCode)
	writeSuccess(w, h.logger, "", h.view(ws))
}

type customerRequest struct {
	CustomerPhone string `json:"customerPhone"`
	DueDate       string `json:"dueDate"`
}

func (h *CartHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid request body"})
		return
	}
	ws := workspaceFrom(r)
	h.cart(ws).SetCustomer(req.CustomerPhone, req.DueDate)
	writeSuccess(w, h.logger, "", h.view(ws))
}

func (h *CartHandler) Commit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	var (
		outcome  *service.Outcome
		err      error
		fallback string
	)
	if h.rental {
		outcome, err = ws.Transactions.CommitRental(r.Context(), ws.Rentals)
		fallback = service.RentalFailed
	} else {
		outcome, err = ws.Transactions.CommitSale(r.Context(), ws.Sales)
		fallback = service.SaleFailed
	}
	if err != nil {
		writeFailure(w, h.logger, err, fallback)
		return
	}

	writeSuccess(w, h.logger, outcome.Message, CommitPayload{Cart: h.view(ws), Sale: outcome.Sale})
}

type CommitPayload struct {
	Cart CartPayload  `json:"cart"`
	Sale *models.Sale `json:"sale,omitempty"`
}
