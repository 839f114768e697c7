package meetings

import "time"

// monthLayout is the selector format used by dashboard month dropdowns.
const monthLayout = "2006-01"

// MonthWindow resolves the half-open UTC aggregation window
// [monthStart, nextMonthStart) for a dashboard month.
//
// yearMonth selects an explicit "YYYY-MM" month; when empty or unparseable
// the window falls back to the month containing now. All boundaries are
// midnight UTC on the 1st.
func MonthWindow(now time.Time, yearMonth string) (time.Time, time.Time) {
	ref := now.UTC()
	year, month := ref.Year(), ref.Month()
	if yearMonth != "" {
		if t, err := time.Parse(monthLayout, yearMonth); err == nil {
			year, month = t.Year(), t.Month()
		}
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// InWindow reports whether t falls inside the half-open window [start, end).
// A nil instant is never inside any window.
func InWindow(t *time.Time, start, end time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(start) && t.Before(end)
}
