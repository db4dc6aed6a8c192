package server

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/gripinvest/internal/common"
)

func (s *Server) handlePortfolioDetails(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snapshot, err := s.app.PortfolioService.GetPortfolioDetails(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioChart serves the 1Y performance series as a PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.PortfolioService.GetPerformanceChart(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := s.app.DashboardService.FetchDashboardSummary(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTransactionLogs(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	report, err := s.app.TransactionService.GetTransactionLogs(r.Context(), uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
