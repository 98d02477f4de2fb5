package handler

import (
	"log"
	"net/http"
	"strconv"

	"pos_terminal/internal/models"
	"pos_terminal/internal/service"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

type AdminHandler struct {
	logger *log.Logger
}

func NewAdminHandler(logger *log.Logger) *AdminHandler {
	return &AdminHandler{logger: logger}
}

type InventoryPayload struct {
	Items []InventoryItemPayload `json:"items"`
}

type InventoryItemPayload struct {
	ID       string `json:"id"`
	ItemID   int64  `json:"itemId"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// Inventory lists the catalog, filtered by the search query parameter.
func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.Catalog.Refresh(r.Context())

	items := ws.Catalog.Filter(r.URL.Query().Get("search"))
	payload := InventoryPayload{Items: make([]InventoryItemPayload, 0, len(items))}
	for _, item := range items {
		payload.Items = append(payload.Items, InventoryItemPayload{
			ID:       item.ID,
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
		})
	}
	writeSuccess(w, h.logger, "", payload)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *AdminHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeBody(w, r, &req); err != nil || req.Quantity == nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Please enter a quantity"})
		return
	}

	ws := workspaceFrom(r)
	if err := ws.Admin.AdjustInventory(r.Context(), r.PathValue("id"), *req.Quantity); err != nil {
		writeFailure(w, h.logger, err, service.InventoryFailed)
		return
	}
	writeSuccess(w, h.logger, service.InventoryUpdated, nil)
}

func (h *AdminHandler) Employees(w http.ResponseWriter, r *http.Request) {
	employees, err := workspaceFrom(r).Admin.Employees(r.Context())
	if err != nil {
		writeFailure(w, h.logger, err, "Failed to load employees")
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	writeSuccess(w, h.logger, "", employees)
}

func (h *AdminHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var input models.EmployeeInput
	if err := decodeBody(w, r, &input); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid request body"})
		return
	}
	if err := workspaceFrom(r).Admin.CreateEmployee(r.Context(), input); err != nil {
		writeFailure(w, h.logger, err, service.EmployeeFailed)
		return
	}
	writeSuccess(w, h.logger, service.EmployeeCreated, nil)
}

func (h *AdminHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var input models.EmployeeInput
	if err := decodeBody(w, r, &input); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid request body"})
		return
	}
	if err := workspaceFrom(r).Admin.UpdateEmployee(r.Context(), r.PathValue("id"), input); err != nil {
		writeFailure(w, h.logger, err, service.EmployeeFailed)
		return
	}
	writeSuccess(w, h.logger, service.EmployeeUpdated, nil)
}

func (h *AdminHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := workspaceFrom(r).Admin.DeleteEmployee(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, h.logger, err, service.DeleteFailed)
		return
	}
	writeSuccess(w, h.logger, service.EmployeeDeleted, nil)
}

func (h *AdminHandler) Journal(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid limit"})
			return
		}
		limit = min(n, maxJournalLimit)
	}

	entries, err := workspaceFrom(r).Admin.Journal(r.Context(), limit)
	if err != nil {
		writeFailure(w, h.logger, err, "Failed to read journal")
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}
	writeSuccess(w, h.logger, "", entries)
}
