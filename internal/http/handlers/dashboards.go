package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/outboundhq/salesops-platform/internal/clients"
	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

// DashboardHandler serves the three role-based dashboard payloads.
type DashboardHandler struct {
	service *dashboard.Service
	logger  *logging.Logger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service *dashboard.Service, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{service: service, logger: logger}
}

// SDRDashboard returns one SDR's monthly dashboard.
// GET /api/sdrs/{sdrID}/dashboard?month=YYYY-MM
func (h *DashboardHandler) SDRDashboard(w http.ResponseWriter, r *http.Request) {
	sdrID := strings.TrimSpace(chi.URLParam(r, "sdrID"))
	if sdrID == "" {
		jsonError(w, "missing sdrID", http.StatusBadRequest)
		return
	}

	payload, err := h.service.SDRDashboard(r.Context(), sdrID, r.URL.Query().Get("month"))
	if errors.Is(err, sdrs.ErrSDRNotFound) {
		jsonError(w, "sdr not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to build sdr dashboard", "sdr_id", sdrID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// ManagerDashboard returns the agency-wide rollup.
// GET /api/manager/dashboard?month=YYYY-MM
func (h *DashboardHandler) ManagerDashboard(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.ManagerDashboard(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.logger.Error("failed to build manager dashboard", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// ClientDashboard returns one client's monthly view.
// GET /api/clients/{clientID}/dashboard?month=YYYY-MM
func (h *DashboardHandler) ClientDashboard(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientID"))
	if clientID == "" {
		jsonError(w, "missing clientID", http.StatusBadRequest)
		return
	}

	payload, err := h.service.ClientDashboard(r.Context(), clientID, r.URL.Query().Get("month"))
	if errors.Is(err, clients.ErrClientNotFound) {
		jsonError(w, "client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to build client dashboard", "client_id", clientID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
