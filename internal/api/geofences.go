package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geotrack/asset-tracker/internal/domain"
	"github.com/geotrack/asset-tracker/internal/service"
)

type GeoFenceHandler struct {
	fences *service.GeoFenceService
	assets *service.AssetService
}

func NewGeoFenceHandler(fences *service.GeoFenceService, assets *service.AssetService) *GeoFenceHandler {
	return &GeoFenceHandler{fences: fences, assets: assets}
}

func (h *GeoFenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateGeoFenceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.fences.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, fence)
}

func (h *GeoFenceHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	fences, err := h.fences.List(r.Context(), activeOnly)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fences)
}

func (h *GeoFenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	fence, err := h.fences.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fence)
}

func (h *GeoFenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateGeoFenceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fence, err := h.fences.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fence)
}

func (h *GeoFenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.fences.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *GeoFenceHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	fence, err := h.fences.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fence)
}

// Assets lists the assets currently inside the fence boundary.
func (h *GeoFenceHandler) Assets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assets.ListWithinGeoFence(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}
