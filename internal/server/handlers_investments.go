package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// handleInvestmentsRoot handles GET (list) and POST (create) on /api/investments.
func (s *Server) handleInvestmentsRoot(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	switch r.Method {
	case http.MethodGet:
		s.handleInvestmentList(w, r, uc)
	case http.MethodPost:
		s.handleInvestmentCreate(w, r, uc)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleInvestmentCreate(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	var req createInvestmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	inv, err := s.app.InvestmentService.CreateInvestment(r.Context(), uc.UserID, req.ProductID, req.Amount)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inv)
}

// handleInvestmentList lists the caller's investments, optionally ?status=active.
func (s *Server) handleInvestmentList(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	status := models.InvestmentStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))

	list, err := s.app.InvestmentService.ListInvestments(r.Context(), uc.UserID, status)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	if list == nil {
		list = []*models.Investment{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleInvestmentGet(w http.ResponseWriter, r *http.Request, uc *common.UserContext, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	inv, err := s.app.InvestmentService.GetInvestment(r.Context(), id, uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, inv)
}

func (s *Server) handleInvestmentCancel(w http.ResponseWriter, r *http.Request, uc *common.UserContext, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	inv, err := s.app.InvestmentService.CancelInvestment(r.Context(), id, uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, inv)
}
