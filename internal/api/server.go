// Package api exposes the settlement core over HTTP as a JSON API.
// Requester identity comes from a Bearer JWT; the errs taxonomy maps onto
// status codes (403/404/400).
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finsoc/splitledger/internal/auth"
	"github.com/finsoc/splitledger/internal/middleware"
	"github.com/finsoc/splitledger/internal/service"
)

// Server routes HTTP requests to the settlement core services.
type Server struct {
	match      *service.MatchService
	bills      *service.BillService
	settlement *service.SettlementService
	router     *mux.Router
}

// NewServer wires the services into a routed handler. jwtManager may be nil
// in tests, in which case the auth middleware is skipped and handlers read
// the user ID straight from the request context.
func NewServer(match *service.MatchService, bills *service.BillService, settlement *service.SettlementService, jwtManager *auth.JWTManager) *Server {
	s := &Server{
		match:      match,
		bills:      bills,
		settlement: settlement,
		router:     mux.NewRouter(),
	}

	// Unauthenticated operational endpoints.
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.Metrics, middleware.Logging)
	if jwtManager != nil {
		apiRouter.Use(middleware.RequireAuth(jwtManager))
	}

	apiRouter.HandleFunc("/transactions/{id}/suggestions", s.handleSuggestCounterparties).Methods(http.MethodGet)
	apiRouter.HandleFunc("/transactions/{id}/counterparty", s.handleAssociateCounterparty).Methods(http.MethodPost)
	apiRouter.HandleFunc("/bills", s.handleCreateBill).Methods(http.MethodPost)
	apiRouter.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	apiRouter.HandleFunc("/bills/{id}", s.handleGetBill).Methods(http.MethodGet)
	apiRouter.HandleFunc("/bills/{id}", s.handleDeleteBill).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/bills/{id}/payments", s.handleApplyTransaction).Methods(http.MethodPost)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
