package meetings

import (
	"strings"
	"time"
)

// Status is the scheduling status an SDR sets when booking a meeting.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// Bucket is the single display classification of a meeting at an instant.
type Bucket string

const (
	BucketNotICPQualified    Bucket = "not_icp_qualified"
	BucketNoLongerInterested Bucket = "no_longer_interested"
	BucketNoShow             Bucket = "no_show"
	BucketHeld               Bucket = "held"
	BucketPastDuePending     Bucket = "past_due_pending"
	BucketConfirmed          Bucket = "confirmed"
	BucketPending            Bucket = "pending"
)

// Buckets lists every classification bucket in precedence order.
var Buckets = []Bucket{
	BucketNotICPQualified,
	BucketNoLongerInterested,
	BucketNoShow,
	BucketHeld,
	BucketPastDuePending,
	BucketConfirmed,
	BucketPending,
}

// ParseBucket validates a bucket string from a query parameter.
func ParseBucket(s string) (Bucket, bool) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Buckets {
		if b == known {
			return b, true
		}
	}
	return "", false
}

// Meeting is a snapshot of a booked meeting as returned by the data store.
// ScheduledDate and CreatedAt are nullable: rows imported from spreadsheets
// can carry unparseable dates, which the store surfaces as NULL.
type Meeting struct {
	ID                 string     `json:"id"`
	SDRID              string     `json:"sdr_id"`
	ClientID           string     `json:"client_id"`
	ClientName         *string    `json:"client_name,omitempty"`
	ScheduledDate      *time.Time `json:"scheduled_date,omitempty"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
	Timezone           string     `json:"timezone,omitempty"`
	Status             Status     `json:"status"`
	HeldAt             *time.Time `json:"held_at,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	NoShow             bool       `json:"no_show"`
	NoLongerInterested bool       `json:"no_longer_interested"`
	ICPStatus          *string    `json:"icp_status,omitempty"`
	ContactFullName    string     `json:"contact_full_name,omitempty"`
	ContactEmail       string     `json:"contact_email,omitempty"`
	ContactPhone       string     `json:"contact_phone,omitempty"`
	Company            string     `json:"company,omitempty"`
	Title              string     `json:"title,omitempty"`
	LinkedinPage       string     `json:"linkedin_page,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// icpDisqualified reports whether icp_status carries one of the known
// disqualifying values. Unknown values count as qualified: disqualification
// is an explicit allow-list, so unrecognized statuses fail open.
func icpDisqualified(status *string) bool {
	if status == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case "not_qualified", "rejected", "denied":
		return true
	}
	return false
}

// ICPDisqualified reports whether the meeting's contact failed ICP review.
func (m Meeting) ICPDisqualified() bool {
	return icpDisqualified(m.ICPStatus)
}
