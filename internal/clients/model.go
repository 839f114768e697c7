package clients

import "time"

// Client is an agency account an SDR books meetings for. The monthly_*
// fields are the client's standing default targets; month-specific quotas
// live on assignments and take precedence where present.
type Client struct {
	ID                string    `json:"id"`
	SDRID             string    `json:"sdr_id"`
	Name              string    `json:"name"`
	MonthlySetTarget  int       `json:"monthly_set_target"`
	MonthlyHoldTarget int       `json:"monthly_hold_target"`
	CreatedAt         time.Time `json:"created_at"`
}
