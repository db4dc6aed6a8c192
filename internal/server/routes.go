package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Products
	mux.HandleFunc("/api/products/generate-description", s.requireUser(s.handleProductGenerateDescription))
	mux.HandleFunc("/api/products/", s.requireUser(s.routeProducts))
	mux.HandleFunc("/api/products", s.requireUser(s.handleProductsRoot))

	// Investments
	mux.HandleFunc("/api/investments/", s.requireUser(s.routeInvestments))
	mux.HandleFunc("/api/investments", s.requireUser(s.handleInvestmentsRoot))

	// Portfolio & dashboard
	mux.HandleFunc("/api/portfolio/chart", s.requireUser(s.handlePortfolioChart))
	mux.HandleFunc("/api/portfolio", s.requireUser(s.handlePortfolioDetails))
	mux.HandleFunc("/api/dashboard/summary", s.requireUser(s.handleDashboardSummary))

	// Audit trail
	mux.HandleFunc("/api/transactions", s.requireUser(s.handleTransactionLogs))

	// Profile & assistant
	mux.HandleFunc("/api/profile/recommendations", s.requireUser(s.handleProfileRecommendations))
	mux.HandleFunc("/api/profile", s.requireUser(s.handleProfile))
	mux.HandleFunc("/api/ai/chat", s.requireUser(s.handleChat))
}

// routeProducts dispatches /api/products/{id}[/analysis].
func (s *Server) routeProducts(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	path := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if path == "" {
		s.handleProductsRoot(w, r, uc)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleProduct(w, r, uc, id)
	case "analysis":
		s.handleProductAnalysis(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeInvestments dispatches /api/investments/{id}[/cancel].
func (s *Server) routeInvestments(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	path := strings.TrimPrefix(r.URL.Path, "/api/investments/")
	if path == "" {
		s.handleInvestmentsRoot(w, r, uc)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleInvestmentGet(w, r, uc, id)
	case "cancel":
		s.handleInvestmentCancel(w, r, uc, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}
