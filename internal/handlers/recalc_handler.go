package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/services"
	"eventos-backend/pkg/utils"
)

type RecalcHandler struct {
	Service *services.RecalcService
}

func NewRecalcHandler(s *services.RecalcService) *RecalcHandler {
	return &RecalcHandler{Service: s}
}

// BatchRequest selects which events a batch run recalculates. A non-nil AsOf
// computes point-in-time snapshots instead of refreshing the stored ones.
type BatchRequest struct {
	States     []models.AccountingState `json:"states"`
	Limit      int                      `json:"limit"`
	IncludeTax *bool                    `json:"include_tax"`
	AsOf       *time.Time               `json:"as_of"`
}

// RecalculateBatch runs a recalculation over all matching events. Partial
// failures return 207 with the full report; the successes are kept.
func (h *RecalcHandler) RecalculateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	filter := models.EventFilter{States: req.States, Limit: req.Limit}
	if len(filter.States) == 0 {
		// Cancelled events keep their last snapshot; recalculating them is
		// pointless by default.
		filter.States = []models.AccountingState{
			models.StateOpen,
			models.StatePendingReview,
			models.StateAwaitingPayment,
			models.StatePaid,
			models.StateOverdue,
		}
	}

	opts := finance.ReconcileOptions{IncludeTax: true, AsOf: req.AsOf}
	if req.IncludeTax != nil {
		opts.IncludeTax = *req.IncludeTax
	}

	report, err := h.Service.RecalculateAll(r.Context(), filter, opts)
	if err != nil {
		var partial *finance.BatchPartialFailure
		if errors.As(err, &partial) {
			utils.JSON(w, http.StatusMultiStatus, report)
			return
		}
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

// ListOverdue serves the collections view: every unsettled commitment across
// all events past its committed payment date as of an optional cut.
func (h *RecalcHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.Service.FindOverdueAcrossEvents(r.Context(), asOfParam(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if overdue == nil {
		overdue = []finance.OverdueRecord{}
	}
	utils.JSON(w, http.StatusOK, overdue)
}
