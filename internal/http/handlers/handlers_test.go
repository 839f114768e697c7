package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/outboundhq/salesops-platform/internal/assignments"
	"github.com/outboundhq/salesops-platform/internal/cache"
	"github.com/outboundhq/salesops-platform/internal/clients"
	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/meetings"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
)

// Shared in-memory fakes backing handler tests.

type stubMeetings struct {
	bySDR    map[string][]meetings.Meeting
	byID     map[string]*meetings.Meeting
	created  []*meetings.CreateMeetingParams
	updated  map[string]*meetings.UpdateMeetingParams
	failNext error
}

func newStubMeetings() *stubMeetings {
	return &stubMeetings{
		bySDR:   map[string][]meetings.Meeting{},
		byID:    map[string]*meetings.Meeting{},
		updated: map[string]*meetings.UpdateMeetingParams{},
	}
}

func (s *stubMeetings) ListBySDR(_ context.Context, sdrID string) ([]meetings.Meeting, error) {
	if s.failNext != nil {
		return nil, s.failNext
	}
	return s.bySDR[sdrID], nil
}

func (s *stubMeetings) ListByClient(_ context.Context, clientID string) ([]meetings.Meeting, error) {
	var out []meetings.Meeting
	for _, list := range s.bySDR {
		for _, m := range list {
			if m.ClientID == clientID {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *stubMeetings) ListAll(_ context.Context) ([]meetings.Meeting, error) {
	var out []meetings.Meeting
	for _, list := range s.bySDR {
		out = append(out, list...)
	}
	return out, nil
}

func (s *stubMeetings) GetByID(_ context.Context, id string) (*meetings.Meeting, error) {
	m, ok := s.byID[id]
	if !ok {
		return nil, meetings.ErrMeetingNotFound
	}
	return m, nil
}

func (s *stubMeetings) Create(_ context.Context, p *meetings.CreateMeetingParams) (*meetings.Meeting, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("meetings: create: %w", err)
	}
	s.created = append(s.created, p)
	now := time.Now().UTC()
	m := &meetings.Meeting{
		ID:        fmt.Sprintf("m-%d", len(s.created)),
		SDRID:     p.SDRID,
		ClientID:  p.ClientID,
		Status:    meetings.StatusPending,
		CreatedAt: &now,
	}
	if p.Status != "" {
		m.Status = p.Status
	}
	s.byID[m.ID] = m
	return m, nil
}

func (s *stubMeetings) Update(_ context.Context, id string, p *meetings.UpdateMeetingParams) error {
	if _, ok := s.byID[id]; !ok {
		return meetings.ErrMeetingNotFound
	}
	s.updated[id] = p
	if p.NoShow != nil {
		s.byID[id].NoShow = *p.NoShow
	}
	if p.HeldAt != nil {
		s.byID[id].HeldAt = p.HeldAt
	}
	if p.Status != nil {
		s.byID[id].Status = *p.Status
	}
	return nil
}

type stubClients struct {
	byID map[string]*clients.Client
}

func (s *stubClients) ListBySDR(_ context.Context, sdrID string) ([]clients.Client, error) {
	var out []clients.Client
	for _, c := range s.byID {
		if c.SDRID == sdrID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubClients) GetByID(_ context.Context, id string) (*clients.Client, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, clients.ErrClientNotFound
	}
	return c, nil
}

type stubAssignments struct{}

func (stubAssignments) ListForSDRMonth(context.Context, string, string) ([]assignments.Assignment, error) {
	return nil, nil
}

func (stubAssignments) ListForMonth(context.Context, string) ([]assignments.Assignment, error) {
	return nil, nil
}

type stubSDRs struct {
	byID map[string]*sdrs.SDR
}

func (s *stubSDRs) ListActive(_ context.Context) ([]sdrs.SDR, error) {
	var out []sdrs.SDR
	for _, sdr := range s.byID {
		out = append(out, *sdr)
	}
	return out, nil
}

func (s *stubSDRs) GetByID(_ context.Context, id string) (*sdrs.SDR, error) {
	sdr, ok := s.byID[id]
	if !ok {
		return nil, sdrs.ErrSDRNotFound
	}
	return sdr, nil
}

var handlerNow = time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	meetings *stubMeetings
	clients  *stubClients
	sdrs     *stubSDRs
	service  *dashboard.Service
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, nil)
}

// newCachedFixture backs the dashboard service and meeting mutations with
// a real Redis cache.
func newCachedFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	dashCache := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	return buildFixture(t, dashCache)
}

func buildFixture(t *testing.T, dashCache *cache.DashboardCache) *fixture {
	t.Helper()

	held := time.Date(2025, 10, 10, 10, 30, 0, 0, time.UTC)
	created := time.Date(2025, 10, 5, 9, 0, 0, 0, time.UTC)
	future := handlerNow.Add(96 * time.Hour)

	sm := newStubMeetings()
	sm.bySDR["sdr-1"] = []meetings.Meeting{
		{ID: "m-held", SDRID: "sdr-1", ClientID: "cl-1", Status: meetings.StatusConfirmed, CreatedAt: &created, ScheduledDate: &created, HeldAt: &held, ContactFullName: "Jane Doe"},
		{ID: "m-pending", SDRID: "sdr-1", ClientID: "cl-1", Status: meetings.StatusPending, CreatedAt: &created, ScheduledDate: &future, ContactFullName: "Bob Smith"},
	}
	for i := range sm.bySDR["sdr-1"] {
		m := sm.bySDR["sdr-1"][i]
		sm.byID[m.ID] = &m
	}

	sc := &stubClients{byID: map[string]*clients.Client{
		"cl-1": {ID: "cl-1", SDRID: "sdr-1", Name: "Acme", MonthlySetTarget: 12, MonthlyHoldTarget: 10},
	}}
	ss := &stubSDRs{byID: map[string]*sdrs.SDR{
		"sdr-1": {ID: "sdr-1", FullName: "Riley Ortiz", Active: true},
	}}

	service := dashboard.NewService(sm, sc, stubAssignments{}, ss, dashCache, nil, nil).
		WithNow(func() time.Time { return handlerNow })

	dashHandler := NewDashboardHandler(service, nil)
	meetHandler := NewMeetingsHandler(sm, ss, service, dashCache, nil)

	r := chi.NewRouter()
	r.Get("/api/sdrs/{sdrID}/dashboard", dashHandler.SDRDashboard)
	r.Get("/api/manager/dashboard", dashHandler.ManagerDashboard)
	r.Get("/api/clients/{clientID}/dashboard", dashHandler.ClientDashboard)
	r.Get("/api/sdrs/{sdrID}/meetings", meetHandler.List)
	r.Post("/api/sdrs/{sdrID}/meetings", meetHandler.Create)
	r.Patch("/api/meetings/{meetingID}", meetHandler.Update)
	r.Get("/api/sdrs/{sdrID}/meetings/export", meetHandler.Export)
	r.Post("/api/sdrs/{sdrID}/meetings/import", meetHandler.Import)

	return &fixture{meetings: sm, clients: sc, sdrs: ss, service: service, router: r}
}
