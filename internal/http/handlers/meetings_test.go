package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outboundhq/salesops-platform/internal/meetings"
)

func TestListMeetings_BucketFilter(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sdrs/sdr-1/meetings?bucket=held", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Meetings []struct {
			ID     string `json:"id"`
			Bucket string `json:"bucket"`
		} `json:"meetings"`
		Total int `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "m-held", resp.Meetings[0].ID)
	assert.Equal(t, "held", resp.Meetings[0].Bucket)
}

func TestListMeetings_UnknownBucket(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sdrs/sdr-1/meetings?bucket=finished", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMeeting(t *testing.T) {
	f := newFixture(t)

	body := `{"client_id":"cl-1","contact_full_name":"New Contact","status":"confirmed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sdrs/sdr-1/meetings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created meetings.Meeting
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "sdr-1", created.SDRID, "sdr id comes from the URL, not the body")
	assert.Equal(t, meetings.StatusConfirmed, created.Status)
	require.Len(t, f.meetings.created, 1)
}

func TestCreateMeeting_MissingClient(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sdrs/sdr-1/meetings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMeeting_MarksNoShow(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/meetings/m-held", strings.NewReader(`{"no_show":true}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated meetings.Meeting
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.True(t, updated.NoShow)
	// held_at remains set; classification precedence decides the bucket.
	assert.NotNil(t, updated.HeldAt)
}

func TestUpdateMeeting_RefreshesClientDashboard(t *testing.T) {
	f := newCachedFixture(t)

	heldCount := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/clients/cl-1/dashboard?month=2025-10", nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Summary struct {
				MeetingsHeld int `json:"meetings_held"`
			} `json:"summary"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp.Summary.MeetingsHeld
	}

	require.Equal(t, 1, heldCount())

	req := httptest.NewRequest(http.MethodPatch, "/api/meetings/m-pending", strings.NewReader(`{"held_at":"2025-10-21T10:00:00Z"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	heldAt := time.Date(2025, 10, 21, 10, 0, 0, 0, time.UTC)
	f.meetings.bySDR["sdr-1"][1].HeldAt = &heldAt

	// The mutation drops the cached client payload, so the next read
	// rebuilds instead of serving the stale count.
	assert.Equal(t, 2, heldCount())
}

func TestUpdateMeeting_NotFound(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/meetings/m-404", strings.NewReader(`{"no_show":true}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeeting_InvalidStatus(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/meetings/m-held", strings.NewReader(`{"status":"held"}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportMeetings_CSV(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sdrs/sdr-1/meetings/export?columns=contact_name,status", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "contact_name,status", lines[0])
	assert.Contains(t, rec.Body.String(), "Jane Doe,held")
	assert.Contains(t, rec.Body.String(), "Bob Smith,pending")
}

func TestExportMeetings_UnknownColumn(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sdrs/sdr-1/meetings/export?columns=shoe_size", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportMeetings(t *testing.T) {
	f := newFixture(t)

	csvBody := "contact_name,contact_email,date,status\n" +
		`"Doe, Jane",jane@acme.test,2025-11-03 14:00,confirmed` + "\n" +
		"Bob Smith,bob@acme.test,not-a-date,pending\n"

	req := httptest.NewRequest(http.MethodPost, "/api/sdrs/sdr-1/meetings/import?client_id=cl-1", strings.NewReader(csvBody))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp["imported"])

	require.Len(t, f.meetings.created, 2)
	assert.Equal(t, "Doe, Jane", f.meetings.created[0].ContactFullName)
	require.NotNil(t, f.meetings.created[0].ScheduledDate)
	// Malformed date degrades to a NULL scheduled_date, not a failed batch.
	assert.Nil(t, f.meetings.created[1].ScheduledDate)
}

func TestImportMeetings_MissingClientID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sdrs/sdr-1/meetings/import", strings.NewReader(""))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
