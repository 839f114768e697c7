package meetings

import "time"

// Classify assigns a meeting to exactly one display bucket.
//
// Rules are evaluated top to bottom and the first match wins; a record can
// satisfy several boolean flags at once (a no-show can also have held_at
// set, a denied contact can also be marked no-show), so the ordering is the
// contract, not a convenience:
//
//  1. disqualifying icp_status
//  2. no_longer_interested
//  3. no_show
//  4. held_at set
//  5. scheduled time elapsed without being held or no-showed
//  6. confirmed, upcoming
//  7. pending, upcoming
//
// A nil ScheduledDate never counts as past due: the record stays in its
// status bucket until someone fixes the date or resolves the meeting.
func Classify(m Meeting, now time.Time) Bucket {
	switch {
	case m.ICPDisqualified():
		return BucketNotICPQualified
	case m.NoLongerInterested:
		return BucketNoLongerInterested
	case m.NoShow:
		return BucketNoShow
	case m.HeldAt != nil:
		return BucketHeld
	}
	if m.ScheduledDate != nil && m.ScheduledDate.Before(now) {
		return BucketPastDuePending
	}
	if m.Status == StatusConfirmed {
		return BucketConfirmed
	}
	return BucketPending
}
