package models

import "time"

// HourlyTideSample is one hourly sea-level reading for a calendar day.
// Keyed by (date, hour) in the tide-heights table.
type HourlyTideSample struct {
	Date    time.Time `json:"date" db:"date"`
	Hour    int       `json:"hour" db:"hour"`
	HeightM float64   `json:"height_m" db:"height_m"`
}

// ExtremeType marks a tide extreme as a high or a low.
type ExtremeType string

const (
	ExtremeHigh ExtremeType = "High"
	ExtremeLow  ExtremeType = "Low"
)

// TideExtreme is one high or low water event within a calendar day.
// Extremes have no natural unique key beyond (date, time, type); they are
// replaced wholesale per date.
type TideExtreme struct {
	Date    time.Time   `json:"date" db:"date"`
	Time    time.Time   `json:"time" db:"extreme_time"`
	HeightM float64     `json:"height_m" db:"height_m"`
	Type    ExtremeType `json:"type" db:"extreme_type"`
}

// CachedTideDay is a complete cached calendar day: exactly 24 hourly
// samples plus zero or more extremes. A day with fewer than 24 distinct
// hours is never returned from cache; it counts as a miss.
type CachedTideDay struct {
	Date     time.Time          `json:"date"`
	Hourly   []HourlyTideSample `json:"hourly"`
	Extremes []TideExtreme      `json:"extremes"`
}

// Complete reports whether the day satisfies the 24-hour completeness
// invariant.
func (d *CachedTideDay) Complete() bool {
	if len(d.Hourly) != 24 {
		return false
	}
	seen := make(map[int]bool, 24)
	for _, s := range d.Hourly {
		if s.Hour < 0 || s.Hour > 23 || seen[s.Hour] {
			return false
		}
		seen[s.Hour] = true
	}
	return true
}

// HeightAt returns the hourly height for the given hour, if present.
func (d *CachedTideDay) HeightAt(hour int) (float64, bool) {
	for _, s := range d.Hourly {
		if s.Hour == hour {
			return s.HeightM, true
		}
	}
	return 0, false
}

// FetchLogEntry records one successful bulk tide fetch. One row per
// calendar day a fetch was performed, keyed by FetchDate; written only
// after every day in the range persisted.
type FetchLogEntry struct {
	FetchDate   time.Time `json:"fetch_date" db:"fetch_date"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"`
	DaysFetched int       `json:"days_fetched" db:"days_fetched"`
}
