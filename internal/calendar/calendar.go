package calendar

import "time"

type CalendarDay struct {
	Date           time.Time `json:"date" db:"date"`
	CheckedIn      bool      `json:"checked_in"`
	WellbeingScore *int      `json:"wellbeing_score,omitempty"`
	IsToday        bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
