// Package dashboard derives role-based dashboard payloads from meeting,
// client, and assignment snapshots. Every derivation is a pure reduction
// over already-fetched data; the only I/O here is fetching the snapshots
// and the optional Redis cache.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/outboundhq/salesops-platform/internal/assignments"
	"github.com/outboundhq/salesops-platform/internal/cache"
	"github.com/outboundhq/salesops-platform/internal/clients"
	"github.com/outboundhq/salesops-platform/internal/meetings"
	"github.com/outboundhq/salesops-platform/internal/observability/metrics"
	"github.com/outboundhq/salesops-platform/internal/sdrs"
	"github.com/outboundhq/salesops-platform/pkg/logging"
)

var tracer = otel.Tracer("salesops/dashboard")

// BonusTiers are the agency's standard hold-target bonus tiers, as
// percentages of a client's monthly hold target.
var BonusTiers = []float64{50, 75, 100}

// MeetingSource supplies meeting snapshots.
type MeetingSource interface {
	ListBySDR(ctx context.Context, sdrID string) ([]meetings.Meeting, error)
	ListByClient(ctx context.Context, clientID string) ([]meetings.Meeting, error)
	ListAll(ctx context.Context) ([]meetings.Meeting, error)
}

// ClientSource supplies client records.
type ClientSource interface {
	ListBySDR(ctx context.Context, sdrID string) ([]clients.Client, error)
	GetByID(ctx context.Context, id string) (*clients.Client, error)
}

// AssignmentSource supplies per-month target assignments.
type AssignmentSource interface {
	ListForSDRMonth(ctx context.Context, sdrID, month string) ([]assignments.Assignment, error)
	ListForMonth(ctx context.Context, month string) ([]assignments.Assignment, error)
}

// SDRSource supplies the SDR roster.
type SDRSource interface {
	ListActive(ctx context.Context) ([]sdrs.SDR, error)
	GetByID(ctx context.Context, id string) (*sdrs.SDR, error)
}

// ClassifiedMeeting pairs a meeting with its display bucket.
type ClassifiedMeeting struct {
	meetings.Meeting
	Bucket meetings.Bucket `json:"bucket"`
}

// TierProgress reports distance to one bonus tier.
type TierProgress struct {
	TierPercent    float64 `json:"tier_percent"`
	TargetMeetings int     `json:"target_meetings"`
	MeetingsNeeded int     `json:"meetings_needed"`
}

// SDRDashboard is the payload behind an SDR's own dashboard view.
type SDRDashboard struct {
	SDRID    string              `json:"sdr_id"`
	SDRName  string              `json:"sdr_name"`
	Month    string              `json:"month"`
	Summary  meetings.Summary    `json:"summary"`
	Tiers    []TierProgress      `json:"tiers"`
	Meetings []ClassifiedMeeting `json:"meetings"`
}

// SDRRollup is one SDR's row on the manager dashboard.
type SDRRollup struct {
	SDRID   string           `json:"sdr_id"`
	SDRName string           `json:"sdr_name"`
	Summary meetings.Summary `json:"summary"`
}

// ManagerDashboard is the agency-wide payload.
type ManagerDashboard struct {
	Month  string           `json:"month"`
	Totals meetings.Summary `json:"totals"`
	SDRs   []SDRRollup      `json:"sdrs"`
}

// ClientDashboard is the payload a client account sees. Targets come from
// the client record itself: this view has no assignment data, so it falls
// back to the client's standing defaults.
type ClientDashboard struct {
	ClientID   string              `json:"client_id"`
	ClientName string              `json:"client_name"`
	Month      string              `json:"month"`
	Summary    meetings.Summary    `json:"summary"`
	Tiers      []TierProgress      `json:"tiers"`
	Meetings   []ClassifiedMeeting `json:"meetings"`
}

// Service builds dashboards. Now is injectable for tests and defaults to
// time.Now.
type Service struct {
	meetings    MeetingSource
	clients     ClientSource
	assignments AssignmentSource
	sdrs        SDRSource
	cache       *cache.DashboardCache
	metrics     *metrics.DashboardMetrics
	logger      *logging.Logger
	now         func() time.Time
}

// NewService wires a dashboard service. cache and m may be nil.
func NewService(
	meetingSrc MeetingSource,
	clientSrc ClientSource,
	assignmentSrc AssignmentSource,
	sdrSrc SDRSource,
	dashCache *cache.DashboardCache,
	m *metrics.DashboardMetrics,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		meetings:    meetingSrc,
		clients:     clientSrc,
		assignments: assignmentSrc,
		sdrs:        sdrSrc,
		cache:       dashCache,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the clock, for tests and the cache warmer.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// SDRDashboard builds (or serves from cache) one SDR's dashboard for the
// requested "YYYY-MM" month; an empty month means the current month.
func (s *Service) SDRDashboard(ctx context.Context, sdrID, month string) (*SDRDashboard, error) {
	now := s.now().UTC()
	monthStart, monthEnd := meetings.MonthWindow(now, month)
	effectiveMonth := monthStart.Format("2006-01")

	var cached SDRDashboard
	if err := s.cache.Get(ctx, "sdr", sdrID, effectiveMonth, &cached); err == nil {
		s.metrics.ObserveCache("sdr", true)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("dashboard cache read failed", "sdr_id", sdrID, "error", err)
	}
	s.metrics.ObserveCache("sdr", false)

	ctx, span := tracer.Start(ctx, "dashboard.sdr")
	defer span.End()
	span.SetAttributes(attribute.String("sdr.id", sdrID), attribute.String("month", effectiveMonth))
	start := time.Now()

	sdr, err := s.sdrs.GetByID(ctx, sdrID)
	if err != nil {
		s.metrics.ObserveBuild("sdr", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load sdr: %w", err)
	}

	records, err := s.meetings.ListBySDR(ctx, sdrID)
	if err != nil {
		s.metrics.ObserveBuild("sdr", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load meetings: %w", err)
	}

	targets, err := s.sdrTargets(ctx, sdrID, effectiveMonth)
	if err != nil {
		s.metrics.ObserveBuild("sdr", "error", time.Since(start).Seconds())
		return nil, err
	}

	summary := meetings.Aggregate(records, targets, monthStart, monthEnd, now)
	payload := &SDRDashboard{
		SDRID:    sdrID,
		SDRName:  sdr.FullName,
		Month:    effectiveMonth,
		Summary:  summary,
		Tiers:    tierProgress(targets.HeldTarget, summary.MeetingsHeld),
		Meetings: s.classifyAll(records, now),
	}

	if err := s.cache.Set(ctx, "sdr", sdrID, effectiveMonth, payload); err != nil {
		s.logger.Warn("dashboard cache write failed", "sdr_id", sdrID, "error", err)
	}
	s.metrics.ObserveBuild("sdr", "ok", time.Since(start).Seconds())
	return payload, nil
}

// ManagerDashboard builds the agency rollup: per-SDR summaries plus
// combined totals for the month.
func (s *Service) ManagerDashboard(ctx context.Context, month string) (*ManagerDashboard, error) {
	now := s.now().UTC()
	monthStart, monthEnd := meetings.MonthWindow(now, month)
	effectiveMonth := monthStart.Format("2006-01")

	var cached ManagerDashboard
	if err := s.cache.Get(ctx, "manager", "agency", effectiveMonth, &cached); err == nil {
		s.metrics.ObserveCache("manager", true)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("dashboard cache read failed", "role", "manager", "error", err)
	}
	s.metrics.ObserveCache("manager", false)

	ctx, span := tracer.Start(ctx, "dashboard.manager")
	defer span.End()
	span.SetAttributes(attribute.String("month", effectiveMonth))
	start := time.Now()

	roster, err := s.sdrs.ListActive(ctx)
	if err != nil {
		s.metrics.ObserveBuild("manager", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load roster: %w", err)
	}

	// One meetings query for the whole roster, grouped in memory.
	allMeetings, err := s.meetings.ListAll(ctx)
	if err != nil {
		s.metrics.ObserveBuild("manager", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load meetings: %w", err)
	}
	meetingsBySDR := map[string][]meetings.Meeting{}
	for _, m := range allMeetings {
		meetingsBySDR[m.SDRID] = append(meetingsBySDR[m.SDRID], m)
	}

	monthAssignments, err := s.assignments.ListForMonth(ctx, effectiveMonth)
	if err != nil {
		s.metrics.ObserveBuild("manager", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load assignments: %w", err)
	}
	bySDR := map[string][]assignments.Assignment{}
	for _, a := range monthAssignments {
		bySDR[a.SDRID] = append(bySDR[a.SDRID], a)
	}

	payload := &ManagerDashboard{Month: effectiveMonth}
	for _, sdr := range roster {
		records := meetingsBySDR[sdr.ID]

		targets, err := s.resolveTargets(ctx, sdr.ID, bySDR[sdr.ID])
		if err != nil {
			s.metrics.ObserveBuild("manager", "error", time.Since(start).Seconds())
			return nil, err
		}

		summary := meetings.Aggregate(records, targets, monthStart, monthEnd, now)
		payload.SDRs = append(payload.SDRs, SDRRollup{
			SDRID:   sdr.ID,
			SDRName: sdr.FullName,
			Summary: summary,
		})

		payload.Totals.MeetingsSet += summary.MeetingsSet
		payload.Totals.MeetingsHeld += summary.MeetingsHeld
		payload.Totals.Pending += summary.Pending
		payload.Totals.PastDue += summary.PastDue
		payload.Totals.Confirmed += summary.Confirmed
		payload.Totals.NoShow += summary.NoShow
		payload.Totals.TotalSetTarget += summary.TotalSetTarget
		payload.Totals.TotalHeldTarget += summary.TotalHeldTarget
	}

	payload.Totals.MonthStart = monthStart
	payload.Totals.MonthEnd = monthEnd
	payload.Totals.SetPercentToGoal = meetings.PercentToGoal(payload.Totals.MeetingsSet, payload.Totals.TotalSetTarget)
	payload.Totals.HeldPercentToGoal = meetings.PercentToGoal(payload.Totals.MeetingsHeld, payload.Totals.TotalHeldTarget)
	payload.Totals.ShowRate = meetings.ShowRate(payload.Totals.MeetingsHeld, payload.Totals.NoShow)

	if err := s.cache.Set(ctx, "manager", "agency", effectiveMonth, payload); err != nil {
		s.logger.Warn("dashboard cache write failed", "role", "manager", "error", err)
	}
	s.metrics.ObserveBuild("manager", "ok", time.Since(start).Seconds())
	return payload, nil
}

// ClientDashboard builds one client's view using the client's standing
// default targets.
func (s *Service) ClientDashboard(ctx context.Context, clientID, month string) (*ClientDashboard, error) {
	now := s.now().UTC()
	monthStart, monthEnd := meetings.MonthWindow(now, month)
	effectiveMonth := monthStart.Format("2006-01")

	var cached ClientDashboard
	if err := s.cache.Get(ctx, "client", clientID, effectiveMonth, &cached); err == nil {
		s.metrics.ObserveCache("client", true)
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("dashboard cache read failed", "client_id", clientID, "error", err)
	}
	s.metrics.ObserveCache("client", false)

	ctx, span := tracer.Start(ctx, "dashboard.client")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID), attribute.String("month", effectiveMonth))
	start := time.Now()

	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		s.metrics.ObserveBuild("client", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load client: %w", err)
	}

	records, err := s.meetings.ListByClient(ctx, clientID)
	if err != nil {
		s.metrics.ObserveBuild("client", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("dashboard: load meetings: %w", err)
	}

	targets := meetings.Targets{
		SetTarget:  client.MonthlySetTarget,
		HeldTarget: client.MonthlyHoldTarget,
	}
	summary := meetings.Aggregate(records, targets, monthStart, monthEnd, now)

	payload := &ClientDashboard{
		ClientID:   clientID,
		ClientName: client.Name,
		Month:      effectiveMonth,
		Summary:    summary,
		Tiers:      tierProgress(targets.HeldTarget, summary.MeetingsHeld),
		Meetings:   s.classifyAll(records, now),
	}

	if err := s.cache.Set(ctx, "client", clientID, effectiveMonth, payload); err != nil {
		s.logger.Warn("dashboard cache write failed", "client_id", clientID, "error", err)
	}
	s.metrics.ObserveBuild("client", "ok", time.Since(start).Seconds())
	return payload, nil
}

// MeetingsForSDR returns an SDR's classified meeting list, optionally
// restricted to one bucket and one month window (by created_at, matching
// the "meetings set" convention for list views).
func (s *Service) MeetingsForSDR(ctx context.Context, sdrID, month string, bucket *meetings.Bucket) ([]ClassifiedMeeting, error) {
	now := s.now().UTC()
	records, err := s.meetings.ListBySDR(ctx, sdrID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load meetings: %w", err)
	}

	var windowed []meetings.Meeting
	if month != "" {
		monthStart, monthEnd := meetings.MonthWindow(now, month)
		for _, m := range records {
			if meetings.InWindow(m.CreatedAt, monthStart, monthEnd) {
				windowed = append(windowed, m)
			}
		}
	} else {
		windowed = records
	}

	var out []ClassifiedMeeting
	for _, m := range windowed {
		b := meetings.Classify(m, now)
		if bucket != nil && b != *bucket {
			continue
		}
		out = append(out, ClassifiedMeeting{Meeting: m, Bucket: b})
	}
	return out, nil
}

// sdrTargets resolves the SDR's monthly targets: assignments when present,
// the client defaults otherwise.
func (s *Service) sdrTargets(ctx context.Context, sdrID, month string) (meetings.Targets, error) {
	list, err := s.assignments.ListForSDRMonth(ctx, sdrID, month)
	if err != nil {
		return meetings.Targets{}, fmt.Errorf("dashboard: load assignments: %w", err)
	}
	return s.resolveTargets(ctx, sdrID, list)
}

func (s *Service) resolveTargets(ctx context.Context, sdrID string, list []assignments.Assignment) (meetings.Targets, error) {
	if len(list) > 0 {
		setT, holdT := assignments.SumTargets(list)
		return meetings.Targets{SetTarget: setT, HeldTarget: holdT}, nil
	}
	// No explicit assignments for the month: fall back to the standing
	// defaults on the SDR's client list.
	clientList, err := s.clients.ListBySDR(ctx, sdrID)
	if err != nil {
		return meetings.Targets{}, fmt.Errorf("dashboard: load clients: %w", err)
	}
	var t meetings.Targets
	for _, c := range clientList {
		t.SetTarget += c.MonthlySetTarget
		t.HeldTarget += c.MonthlyHoldTarget
	}
	return t, nil
}

func (s *Service) classifyAll(records []meetings.Meeting, now time.Time) []ClassifiedMeeting {
	out := make([]ClassifiedMeeting, 0, len(records))
	perBucket := map[meetings.Bucket]int{}
	for _, m := range records {
		b := meetings.Classify(m, now)
		perBucket[b]++
		out = append(out, ClassifiedMeeting{Meeting: m, Bucket: b})
	}
	for b, n := range perBucket {
		s.metrics.ObserveClassified(string(b), n)
	}
	return out
}

func tierProgress(holdTarget, held int) []TierProgress {
	out := make([]TierProgress, 0, len(BonusTiers))
	for _, tier := range BonusTiers {
		out = append(out, TierProgress{
			TierPercent:    tier,
			TargetMeetings: meetings.TierTarget(tier, holdTarget),
			MeetingsNeeded: meetings.MeetingsNeededForTier(tier, holdTarget, held),
		})
	}
	return out
}
