package server

import (
	"net/http"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// handleProfile handles GET, POST (first sign-in) and PUT/PATCH on /api/profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		user, err := s.app.ProfileService.GetProfile(ctx, uc.UserID)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)

	case http.MethodPost:
		var req profileCreateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		user, err := s.app.ProfileService.CreateProfile(ctx, models.User{
			ID:           uc.UserID,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Role:         uc.Role,
			RiskAppetite: req.RiskAppetite,
		})
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusCreated, user)

	case http.MethodPut, http.MethodPatch:
		var req profilePatchRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		user, err := s.app.ProfileService.UpdateProfile(ctx, uc.UserID, req.toPatch())
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch)
	}
}

// handleProfileRecommendations suggests products for the caller's risk appetite.
func (s *Server) handleProfileRecommendations(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	user, err := s.app.ProfileService.GetProfile(ctx, uc.UserID)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}

	rec, err := s.app.AdvisorService.Recommendations(ctx, user.RiskAppetite)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	reply, err := s.app.AdvisorService.Chat(r.Context(), uc.UserID, req.History, req.Message, req.Path)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, reply)
}
