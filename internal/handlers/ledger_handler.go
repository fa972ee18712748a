package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"eventos-backend/internal/finance"
	"eventos-backend/internal/models"
	"eventos-backend/internal/services"
	"eventos-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type LedgerHandler struct {
	Service *services.LedgerService
}

func NewLedgerHandler(s *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{Service: s}
}

func (h *LedgerHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLedgerRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if eventID, err := strconv.Atoi(mux.Vars(r)["id"]); err == nil {
		req.EventID = eventID
	}

	rec, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, rec)
}

func (h *LedgerHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, _ := strconv.Atoi(mux.Vars(r)["id"])

	records, err := h.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, finance.ErrMissingEvent) {
			status = http.StatusNotFound
		}
		utils.Error(w, status, err.Error())
		return
	}

	// Ensure we return empty array instead of null
	if records == nil {
		records = []models.LedgerRecord{}
	}
	utils.JSON(w, http.StatusOK, records)
}

func (h *LedgerHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["record_id"])

	var req models.UpdateLedgerRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, rec)
}

func (h *LedgerHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["record_id"])

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ConvertProvision realizes a provision as an actual expense
func (h *LedgerHandler) ConvertProvision(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["record_id"])

	expense, err := h.Service.ConvertProvision(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, expense)
}
