package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventos-backend/internal/handlers"
)

func NewRouter(
	eventHandler *handlers.EventHandler,
	ledgerHandler *handlers.LedgerHandler,
	recalcHandler *handlers.RecalcHandler,
	categoryHandler *handlers.CategoryHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	// Events
	eventsAPI := r.PathPrefix("/api/events").Subrouter()
	eventsAPI.HandleFunc("", eventHandler.ListEvents).Methods("GET")
	eventsAPI.HandleFunc("", eventHandler.CreateEvent).Methods("POST")
	eventsAPI.HandleFunc("/recalculate-batch", recalcHandler.RecalculateBatch).Methods("POST")
	eventsAPI.HandleFunc("/{id}", eventHandler.GetEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}/close", eventHandler.CloseEvent).Methods("POST")
	eventsAPI.HandleFunc("/{id}/cancel", eventHandler.CancelEvent).Methods("POST")
	eventsAPI.HandleFunc("/{id}/snapshot", eventHandler.GetSnapshot).Methods("GET")
	eventsAPI.HandleFunc("/{id}/recalculate", eventHandler.Recalculate).Methods("POST")
	eventsAPI.HandleFunc("/{id}/overdue", eventHandler.GetOverdue).Methods("GET")

	// Cross-event collections view
	r.HandleFunc("/api/overdue", recalcHandler.ListOverdue).Methods("GET")

	// Ledger records, nested under their event for create/list
	eventsAPI.HandleFunc("/{id}/ledger", ledgerHandler.ListByEvent).Methods("GET")
	eventsAPI.HandleFunc("/{id}/ledger", ledgerHandler.CreateRecord).Methods("POST")

	ledgerAPI := r.PathPrefix("/api/ledger").Subrouter()
	ledgerAPI.HandleFunc("/{record_id}", ledgerHandler.UpdateRecord).Methods("PUT")
	ledgerAPI.HandleFunc("/{record_id}", ledgerHandler.DeleteRecord).Methods("DELETE")
	ledgerAPI.HandleFunc("/{record_id}/convert", ledgerHandler.ConvertProvision).Methods("POST")

	// Categories and alias table
	categoriesAPI := r.PathPrefix("/api/categories").Subrouter()
	categoriesAPI.HandleFunc("", categoryHandler.ListCategories).Methods("GET")
	categoriesAPI.HandleFunc("/aliases", categoryHandler.ListAliases).Methods("GET")
	categoriesAPI.HandleFunc("/aliases", categoryHandler.CreateAlias).Methods("POST")

	// Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.HandleFunc("/events/{id}/pdf", reportHandler.EventReportPDF).Methods("GET")
	reportsAPI.HandleFunc("/events/{id}/csv", reportHandler.EventReportCSV).Methods("GET")
	reportsAPI.HandleFunc("/portfolio/csv", reportHandler.PortfolioCSV).Methods("GET")
	reportsAPI.HandleFunc("/overdue/csv", reportHandler.OverdueCSV).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
