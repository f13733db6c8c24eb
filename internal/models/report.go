package models

import "time"

// Verdict is the go/no-go call of a narrative report.
type Verdict string

const (
	VerdictGo          Verdict = "GO"
	VerdictConditional Verdict = "CONDITIONAL"
	VerdictNoGo        Verdict = "NO-GO"
)

// ReportPayload is the parsed body of an LLM-generated report before it
// is persisted or served.
type ReportPayload struct {
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Verdict Verdict `json:"verdict"`
}

// CachedReport is a persisted narrative report keyed by (spot, locale).
// ConditionsHash and ExpiresAt jointly gate regeneration.
type CachedReport struct {
	SpotName       string    `json:"spot_name" db:"spot_name"`
	Locale         string    `json:"locale" db:"locale"`
	Title          string    `json:"title" db:"title"`
	Summary        string    `json:"summary" db:"summary"`
	Verdict        Verdict   `json:"verdict" db:"verdict"`
	ConditionsHash string    `json:"conditions_hash" db:"conditions_hash"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
}

// ReportSource tells the consumer how the served report was obtained.
type ReportSource string

const (
	ReportSourceFresh    ReportSource = "fresh"
	ReportSourceCached   ReportSource = "cached"
	ReportSourceFallback ReportSource = "fallback"
)

// ReportResponse is the best-effort object the report endpoint always
// returns: a report body plus the source flag distinguishing a freshly
// generated report from a cache hit or a degraded fallback.
type ReportResponse struct {
	SpotName  string       `json:"spot_name"`
	Locale    string       `json:"locale"`
	Title     string       `json:"title"`
	Summary   string       `json:"summary"`
	Verdict   Verdict      `json:"verdict"`
	Source    ReportSource `json:"source"`
	UpdatedAt time.Time    `json:"updated_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}
