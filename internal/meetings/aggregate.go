package meetings

import (
	"math"
	"time"
)

// Targets holds the monthly quota a summary is measured against, summed
// over the active client set (from assignments or client defaults).
type Targets struct {
	SetTarget  int `json:"set_target"`
	HeldTarget int `json:"held_target"`
}

// Summary is the reduced monthly view of a meeting collection.
//
// MeetingsSet counts bookings by created_at (when the SDR did the work);
// MeetingsHeld counts held meetings by scheduled_date (which month's quota
// the meeting fills). The two windows are independent on purpose: a meeting
// created in October and held in November counts toward October's set
// number and November's held number.
type Summary struct {
	MonthStart time.Time `json:"month_start"`
	MonthEnd   time.Time `json:"month_end"`

	MeetingsSet  int `json:"meetings_set"`
	MeetingsHeld int `json:"meetings_held"`
	Pending      int `json:"pending"`
	PastDue      int `json:"past_due"`
	Confirmed    int `json:"confirmed"`
	NoShow       int `json:"no_show"`

	TotalSetTarget  int `json:"total_set_target"`
	TotalHeldTarget int `json:"total_held_target"`

	SetPercentToGoal  float64 `json:"set_percent_to_goal"`
	HeldPercentToGoal float64 `json:"held_percent_to_goal"`
	ShowRate          float64 `json:"show_rate"`
}

// Aggregate reduces a meeting snapshot into a Summary for the window
// [monthStart, monthEnd). Classification runs against now, windowing
// against the record's own instants:
//
//   - MeetingsSet: created_at in window, not ICP-disqualified.
//   - MeetingsHeld: scheduled_date in window, classified Held.
//   - Pending/PastDue/Confirmed/NoShow: bucket counts within MeetingsSet.
//
// Records with a nil created_at never enter MeetingsSet; records with a
// nil scheduled_date never enter MeetingsHeld.
func Aggregate(records []Meeting, targets Targets, monthStart, monthEnd, now time.Time) Summary {
	s := Summary{
		MonthStart:      monthStart,
		MonthEnd:        monthEnd,
		TotalSetTarget:  targets.SetTarget,
		TotalHeldTarget: targets.HeldTarget,
	}

	for _, m := range records {
		bucket := Classify(m, now)
		if bucket == BucketNotICPQualified {
			continue
		}
		if bucket == BucketHeld && InWindow(m.ScheduledDate, monthStart, monthEnd) {
			s.MeetingsHeld++
		}
		if !InWindow(m.CreatedAt, monthStart, monthEnd) {
			continue
		}
		s.MeetingsSet++
		switch bucket {
		case BucketPending:
			s.Pending++
		case BucketPastDuePending:
			s.PastDue++
		case BucketConfirmed:
			s.Confirmed++
		case BucketNoShow:
			s.NoShow++
		}
	}

	s.SetPercentToGoal = PercentToGoal(s.MeetingsSet, s.TotalSetTarget)
	s.HeldPercentToGoal = PercentToGoal(s.MeetingsHeld, s.TotalHeldTarget)
	s.ShowRate = ShowRate(s.MeetingsHeld, s.NoShow)
	return s
}

// FilterBucket returns the records that classify into bucket at now.
func FilterBucket(records []Meeting, bucket Bucket, now time.Time) []Meeting {
	var out []Meeting
	for _, m := range records {
		if Classify(m, now) == bucket {
			out = append(out, m)
		}
	}
	return out
}

// PercentToGoal returns actual/target as a percentage, 0 when target is 0
// or negative. Never NaN or Inf.
func PercentToGoal(actual, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(actual) / float64(target) * 100
}

// ShowRate returns held/(held+noShow) as a percentage, 0 when the
// denominator is 0.
func ShowRate(held, noShow int) float64 {
	total := held + noShow
	if total <= 0 {
		return 0
	}
	return float64(held) / float64(total) * 100
}

// TierTarget returns the held-meeting count a bonus tier requires:
// ceil(tierPercent/100 * holdTarget).
func TierTarget(tierPercent float64, holdTarget int) int {
	if tierPercent <= 0 || holdTarget <= 0 {
		return 0
	}
	return int(math.Ceil(tierPercent / 100 * float64(holdTarget)))
}

// MeetingsNeededForTier returns how many more held meetings reach the tier,
// floored at 0 once the tier is met.
func MeetingsNeededForTier(tierPercent float64, holdTarget, held int) int {
	needed := TierTarget(tierPercent, holdTarget) - held
	if needed < 0 {
		return 0
	}
	return needed
}
