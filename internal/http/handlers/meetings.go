package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/outboundhq/salesops-platform/internal/cache"
	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/export"
	"github.com/outboundhq/salesops-platform/internal/meetings"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

// MeetingStore is the subset of the meeting repository the handler needs.
type MeetingStore interface {
	GetByID(ctx context.Context, id string) (*meetings.Meeting, error)
	Create(ctx context.Context, p *meetings.CreateMeetingParams) (*meetings.Meeting, error)
	Update(ctx context.Context, id string, p *meetings.UpdateMeetingParams) error
}

// SDRStore resolves SDR names for export labeling.
type SDRStore interface {
	GetByID(ctx context.Context, id string) (*sdrs.SDR, error)
}

// MeetingsHandler serves meeting lists, mutations, and the CSV
// export/import surface.
type MeetingsHandler struct {
	store   MeetingStore
	sdrs    SDRStore
	service *dashboard.Service
	cache   *cache.DashboardCache
	logger  *logging.Logger
}

// NewMeetingsHandler creates a meetings handler. dashCache may be nil.
func NewMeetingsHandler(store MeetingStore, sdrStore SDRStore, service *dashboard.Service, dashCache *cache.DashboardCache, logger *logging.Logger) *MeetingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MeetingsHandler{
		store:   store,
		sdrs:    sdrStore,
		service: service,
		cache:   dashCache,
		logger:  logger,
	}
}

// List returns an SDR's classified meetings.
// GET /api/sdrs/{sdrID}/meetings?month=YYYY-MM&bucket=held
func (h *MeetingsHandler) List(w http.ResponseWriter, r *http.Request) {
	sdrID := strings.TrimSpace(chi.URLParam(r, "sdrID"))
	if sdrID == "" {
		jsonError(w, "missing sdrID", http.StatusBadRequest)
		return
	}

	bucket, err := bucketParam(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.service.MeetingsForSDR(r.Context(), sdrID, r.URL.Query().Get("month"), bucket)
	if err != nil {
		h.logger.Error("failed to list meetings", "sdr_id", sdrID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meetings": list,
		"total":    len(list),
	})
}

// Create books a meeting for an SDR.
// POST /api/sdrs/{sdrID}/meetings
func (h *MeetingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	sdrID := strings.TrimSpace(chi.URLParam(r, "sdrID"))
	if sdrID == "" {
		jsonError(w, "missing sdrID", http.StatusBadRequest)
		return
	}

	var params meetings.CreateMeetingParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	params.SDRID = sdrID

	created, err := h.store.Create(r.Context(), &params)
	if err != nil {
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid") {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create meeting", "sdr_id", sdrID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.invalidate(r, sdrID, created.ClientID)
	writeJSON(w, http.StatusCreated, created)
}

// Update applies a partial meeting update (drag-and-drop status changes,
// held/no-show marking, ICP review outcomes).
// PATCH /api/meetings/{meetingID}
func (h *MeetingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	meetingID := strings.TrimSpace(chi.URLParam(r, "meetingID"))
	if meetingID == "" {
		jsonError(w, "missing meetingID", http.StatusBadRequest)
		return
	}

	var params meetings.UpdateMeetingParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if params.Status != nil {
		switch *params.Status {
		case meetings.StatusPending, meetings.StatusConfirmed:
		default:
			jsonError(w, fmt.Sprintf("invalid status %q", *params.Status), http.StatusBadRequest)
			return
		}
	}

	existing, err := h.store.GetByID(r.Context(), meetingID)
	if errors.Is(err, meetings.ErrMeetingNotFound) {
		jsonError(w, "meeting not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load meeting", "meeting_id", meetingID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.store.Update(r.Context(), meetingID, &params); err != nil {
		if errors.Is(err, meetings.ErrMeetingNotFound) {
			jsonError(w, "meeting not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update meeting", "meeting_id", meetingID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.invalidate(r, existing.SDRID, existing.ClientID)

	updated, err := h.store.GetByID(r.Context(), meetingID)
	if err != nil {
		h.logger.Error("failed to reload meeting", "meeting_id", meetingID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Export streams the classified, filtered list as CSV.
// GET /api/sdrs/{sdrID}/meetings/export?month=&bucket=&columns=
func (h *MeetingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	sdrID := strings.TrimSpace(chi.URLParam(r, "sdrID"))
	if sdrID == "" {
		jsonError(w, "missing sdrID", http.StatusBadRequest)
		return
	}

	cols, err := export.ParseColumns(r.URL.Query().Get("columns"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	bucket, err := bucketParam(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sdr, err := h.sdrs.GetByID(r.Context(), sdrID)
	if errors.Is(err, sdrs.ErrSDRNotFound) {
		jsonError(w, "sdr not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load sdr", "sdr_id", sdrID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	list, err := h.service.MeetingsForSDR(r.Context(), sdrID, r.URL.Query().Get("month"), bucket)
	if err != nil {
		h.logger.Error("failed to list meetings for export", "sdr_id", sdrID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.csv"`)
	if err := export.WriteMeetings(w, sdr.FullName, list, cols); err != nil {
		h.logger.Error("failed to write csv", "sdr_id", sdrID, "error", err)
	}
}

// Import books meetings from an uploaded CSV using the export column set.
// Rows with malformed dates import with a NULL scheduled_date rather than
// failing the batch.
// POST /api/sdrs/{sdrID}/meetings/import?client_id=...
func (h *MeetingsHandler) Import(w http.ResponseWriter, r *http.Request) {
	sdrID := strings.TrimSpace(chi.URLParam(r, "sdrID"))
	if sdrID == "" {
		jsonError(w, "missing sdrID", http.StatusBadRequest)
		return
	}
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		jsonError(w, "missing client_id", http.StatusBadRequest)
		return
	}
	timezone := strings.TrimSpace(r.URL.Query().Get("timezone"))

	rows, err := export.ParseMeetings(r.Body)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported := 0
	for _, row := range rows {
		params := &meetings.CreateMeetingParams{
			SDRID:           sdrID,
			ClientID:        clientID,
			ScheduledDate:   row.ScheduledDate(timezone),
			Timezone:        timezone,
			Status:          row.Status(),
			ContactFullName: row[export.ColContactName],
			ContactEmail:    row[export.ColContactEmail],
			ContactPhone:    row[export.ColContactPhone],
			Company:         row[export.ColCompany],
			Title:           row[export.ColTitle],
			Notes:           row[export.ColNotes],
		}
		if _, err := h.store.Create(r.Context(), params); err != nil {
			h.logger.Error("failed to import row", "sdr_id", sdrID, "error", err)
			jsonError(w, fmt.Sprintf("import failed after %d rows", imported), http.StatusInternalServerError)
			return
		}
		imported++
	}

	h.invalidate(r, sdrID, clientID)
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (h *MeetingsHandler) invalidate(r *http.Request, sdrID, clientID string) {
	if err := h.cache.Invalidate(r.Context(), sdrID, clientID); err != nil {
		h.logger.Warn("cache invalidation failed", "sdr_id", sdrID, "client_id", clientID, "error", err)
	}
}

func bucketParam(r *http.Request) (*meetings.Bucket, error) {
	raw := r.URL.Query().Get("bucket")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	b, ok := meetings.ParseBucket(raw)
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", raw)
	}
	return &b, nil
}
