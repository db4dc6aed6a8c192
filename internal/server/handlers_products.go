package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/models"
)

// handleProductsRoot handles GET (list) and POST (create) on /api/products.
func (s *Server) handleProductsRoot(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	switch r.Method {
	case http.MethodGet:
		s.handleProductList(w, r)
	case http.MethodPost:
		s.handleProductCreate(w, r, uc)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleProductList lists the catalog. ?type=bond narrows by investment type,
// ?risk=low,moderate by one or more risk levels.
func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		InvestmentType: models.InvestmentType(strings.ToLower(strings.TrimSpace(q.Get("type")))),
	}
	for _, v := range q["risk"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				filter.RiskLevels = append(filter.RiskLevels, models.RiskLevel(part))
			}
		}
	}

	products, err := s.app.CatalogService.ListProducts(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	WriteJSON(w, http.StatusOK, products)
}

func (s *Server) handleProductCreate(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !requireAdmin(w, uc) {
		return
	}
	var req productRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	product, err := s.app.CatalogService.CreateProduct(r.Context(), req.toProduct())
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, product)
}

// handleProduct handles GET, PUT/PATCH and DELETE on /api/products/{id}.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request, uc *common.UserContext, id string) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		product, err := s.app.CatalogService.GetProduct(ctx, id)
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, product)

	case http.MethodPut, http.MethodPatch:
		if !requireAdmin(w, uc) {
			return
		}
		var req productPatchRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		product, err := s.app.CatalogService.UpdateProduct(ctx, id, req.toPatch())
		if err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, product)

	case http.MethodDelete:
		if !requireAdmin(w, uc) {
			return
		}
		if err := s.app.CatalogService.DeleteProduct(ctx, id); err != nil {
			WriteServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

func (s *Server) handleProductAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	analysis, err := s.app.CatalogService.GetProductAnalysis(r.Context(), id)
	if err != nil {
		WriteServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}

// handleProductGenerateDescription drafts a description for an unsaved product.
func (s *Server) handleProductGenerateDescription(w http.ResponseWriter, r *http.Request, uc *common.UserContext) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if !requireAdmin(w, uc) {
		return
	}
	var req productRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	description := s.app.CatalogService.GenerateDescription(r.Context(), req.toProduct())
	WriteJSON(w, http.StatusOK, map[string]string{"description": description})
}
