package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/services"
	"eventos-backend/internal/timeutil"
	"eventos-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	Events *services.EventService
	Recalc *services.RecalcService
}

func NewEventHandler(events *services.EventService, recalc *services.RecalcService) *EventHandler {
	return &EventHandler{Events: events, Recalc: recalc}
}

// reconcileOptions reads the include_tax and as_of query parameters; amounts
// are tax-inclusive and cut at "now" unless the caller asks otherwise.
func reconcileOptions(r *http.Request) finance.ReconcileOptions {
	opts := finance.ReconcileOptions{IncludeTax: true}
	if v := r.URL.Query().Get("include_tax"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.IncludeTax = b
		}
	}
	if r.URL.Query().Get("as_of") != "" {
		asOf := asOfParam(r)
		opts.AsOf = &asOf
	}
	return opts
}

// asOfParam reads the as_of query parameter as RFC3339 or a plain date in
// Mexico City time. Absent or unparseable values mean "now".
func asOfParam(r *http.Request) time.Time {
	if v := r.URL.Query().Get("as_of"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := timeutil.ParseInMX("2006-01-02", v); err == nil {
			return t
		}
	}
	return timeutil.Now()
}

func eventFilter(r *http.Request) models.EventFilter {
	var filter models.EventFilter
	if states := r.URL.Query().Get("states"); states != "" {
		for _, s := range strings.Split(states, ",") {
			filter.States = append(filter.States, models.AccountingState(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	return filter
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.Events.Create(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, event)
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.List(r.Context(), eventFilter(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Ensure we return empty array instead of null
	if events == nil {
		events = []*models.Event{}
	}
	utils.JSON(w, http.StatusOK, events)
}

func (h *EventHandler) CloseEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	snap, err := h.Events.Close(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, snap)
}

func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	event, err := h.Events.Cancel(r.Context(), id)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, event)
}

// GetSnapshot serves the current financial snapshot, cached when fresh
func (h *EventHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	event, err := h.Events.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	snap, err := h.Recalc.GetSnapshot(r.Context(), event, reconcileOptions(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, snap)
}

// Recalculate forces a full snapshot rebuild for one event
func (h *EventHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	snap, err := h.Recalc.Recalculate(r.Context(), id, reconcileOptions(r))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, snap)
}

// GetOverdue lists the event's overdue commitments as of an optional cut
func (h *EventHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	overdue, err := h.Recalc.FindOverdue(r.Context(), id, asOfParam(r))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}

	if overdue == nil {
		overdue = []finance.OverdueRecord{}
	}
	utils.JSON(w, http.StatusOK, overdue)
}
