package handler

import (
	"log"
	"net/http"

	"pos_terminal/internal/cart"
	"pos_terminal/internal/service"
)

type ReturnsHandler struct {
	logger *log.Logger
}

func NewReturnsHandler(logger *log.Logger) *ReturnsHandler {
	return &ReturnsHandler{logger: logger}
}

func (h *ReturnsHandler) Screen(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.logger, "", workspaceFrom(r).Returns.View())
}

type lookupRequest struct {
	CustomerPhone string `json:"customerPhone"`
}

func (h *ReturnsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, ResponsePayload{Status: statusFailed, Message: "Invalid request body"})
		return
	}

	ws := workspaceFrom(r)
	if err := ws.Transactions.LookupOutstanding(r.Context(), ws.Returns, req.CustomerPhone); err != nil {
		writeFailure(w, h.logger, err, service.LookupFailed)
		return
	}
	writeSuccess(w, h.logger, "", ws.Returns.View())
}

// Toggle selects a looked-up rental line for return, or deselects it.
func (h *ReturnsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if _, err := ws.Returns.Toggle(r.PathValue("rentalItemId")); err != nil {
		writeFailure(w, h.logger, err, "Rental item not found")
		return
	}
	writeSuccess(w, h.logger, "", ws.Returns.View())
}

type ReturnCommitPayload struct {
	Selection cart.SelectionView `json:"selection"`
}

func (h *ReturnsHandler) Commit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	outcome, err := ws.Transactions.CommitReturn(r.Context(), ws.Returns)
	if err != nil {
		writeFailure(w, h.logger, err, service.ReturnFailed)
		return
	}
	writeSuccess(w, h.logger, outcome.Message, ReturnCommitPayload{Selection: ws.Returns.View()})
}
