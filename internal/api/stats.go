package api

import (
	"net/http"

	"github.com/geotrack/asset-tracker/internal/bus"
	"github.com/geotrack/asset-tracker/internal/domain"
	"github.com/geotrack/asset-tracker/internal/service"
	ws "github.com/geotrack/asset-tracker/internal/websocket"
)

type StatsHandler struct {
	assets  *service.AssetService
	fences  *service.GeoFenceService
	bus     *bus.Bus
	gateway *ws.Gateway
}

func NewStatsHandler(assets *service.AssetService, fences *service.GeoFenceService, b *bus.Bus, gateway *ws.Gateway) *StatsHandler {
	return &StatsHandler{assets: assets, fences: fences, bus: b, gateway: gateway}
}

type statsResponse struct {
	AssetsByStatus   map[domain.AssetStatus]int `json:"assets_by_status"`
	GeoFences        int                        `json:"geofences"`
	WebSocketClients int                        `json:"websocket_clients"`
	Subscribers      map[string]int             `json:"subscribers_by_topic"`
}

// Stats returns aggregated system counts for dashboards.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	byStatus, err := h.assets.CountByStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count assets")
		return
	}

	fenceCount, err := h.fences.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count geofences")
		return
	}

	subscribers := make(map[string]int, len(ws.BaseTopics))
	for _, topic := range ws.BaseTopics {
		subscribers[topic] = h.bus.SubscriberCount(topic)
	}

	respondJSON(w, http.StatusOK, statsResponse{
		AssetsByStatus:   byStatus,
		GeoFences:        fenceCount,
		WebSocketClients: h.gateway.ClientCount(),
		Subscribers:      subscribers,
	})
}
