package handlers

import (
	"encoding/json"
	"net/http"

	"eventos-backend/internal/models"
	"eventos-backend/internal/services"
	"eventos-backend/pkg/utils"
)

type CategoryHandler struct {
	Service *services.CategoryService
}

func NewCategoryHandler(s *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{Service: s}
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Service.Categories())
}

func (h *CategoryHandler) ListAliases(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.Service.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Ensure we return empty array instead of null
	if aliases == nil {
		aliases = []models.CategoryAlias{}
	}
	utils.JSON(w, http.StatusOK, aliases)
}

func (h *CategoryHandler) CreateAlias(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alias, err := h.Service.RegisterAlias(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, alias)
}
