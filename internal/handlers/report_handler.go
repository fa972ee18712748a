package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventos-backend/internal/services"
	"eventos-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// EventReportPDF serves one event's financial report as PDF
func (h *ReportHandler) EventReportPDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, err := h.Service.GetEventReportData(r.Context(), id, reconcileOptions(r))
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	pdfData, err := h.Service.GenerateEventPDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event_%d_report.pdf", id))
	w.Write(pdfData)
}

// EventReportCSV serves one event's financial report as CSV
func (h *ReportHandler) EventReportCSV(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	data, err := h.Service.GetEventReportData(r.Context(), id, reconcileOptions(r))
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	csvData, err := h.Service.GenerateEventCSV(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event_%d_report.csv", id))
	w.Write(csvData)
}

// OverdueCSV serves the cross-event overdue commitments list for collections
func (h *ReportHandler) OverdueCSV(w http.ResponseWriter, r *http.Request) {
	csvData, err := h.Service.GenerateOverdueCSV(r.Context(), asOfParam(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=overdue_commitments.csv")
	w.Write(csvData)
}

// PortfolioCSV serves the one-line-per-event summary across all events
func (h *ReportHandler) PortfolioCSV(w http.ResponseWriter, r *http.Request) {
	csvData, err := h.Service.GeneratePortfolioCSV(r.Context(), eventFilter(r), reconcileOptions(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=events_portfolio.csv")
	w.Write(csvData)
}
