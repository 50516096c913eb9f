package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geotrack/asset-tracker/internal/domain"
	"github.com/geotrack/asset-tracker/internal/service"
)

type AssetHandler struct {
	assets *service.AssetService
}

func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CreateAssetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.assets.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

// List serves the bulk fetch, plus the filtered variants when a status,
// type or search query parameter is present.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		assets []domain.Asset
		err    error
	)
	switch {
	case q.Get("status") != "":
		assets, err = h.assets.ListByStatus(r.Context(), q.Get("status"))
	case q.Get("type") != "":
		assets, err = h.assets.ListByType(r.Context(), q.Get("type"))
	case q.Get("search") != "":
		assets, err = h.assets.Search(r.Context(), q.Get("search"))
	default:
		assets, err = h.assets.List(r.Context())
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateAssetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.assets.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateLocationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in.ID = chi.URLParam(r, "id")

	asset, err := h.assets.UpdateLocation(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.assets.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.assets.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h *AssetHandler) BulkUpdateLocations(w http.ResponseWriter, r *http.Request) {
	var inputs []domain.UpdateLocationInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.assets.BulkUpdateLocations(r.Context(), inputs)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AssetHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	meters, distErr := strconv.ParseFloat(q.Get("distance"), 64)
	if latErr != nil || lngErr != nil || distErr != nil {
		respondError(w, http.StatusBadRequest, "lat, lng and distance query parameters are required")
		return
	}

	assets, err := h.assets.ListNearby(r.Context(), lat, lng, meters)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

// WithinBoundary finds assets inside an arbitrary polygon supplied in the
// request body.
func (h *AssetHandler) WithinBoundary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coordinates []domain.Coordinate `json:"coordinates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assets, err := h.assets.ListWithinBoundary(r.Context(), req.Coordinates)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (h *AssetHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.assets.ListTypes(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, types)
}
