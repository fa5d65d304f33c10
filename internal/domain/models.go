package domain

import "time"

// Project is one mirrored P6 project in the portfolio.
type Project struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Client         string     `json:"client,omitempty"`
	Active         bool       `json:"active"`
	LastMirroredAt *time.Time `json:"lastMirroredAt,omitempty"`
}

// SAPMapping links a WBS node to its SAP PS element. Confidence is the match
// score assigned during onboarding (1.0 for exact posid matches).
type SAPMapping struct {
	Posid      string  `json:"posid"`
	Confidence float64 `json:"confidenceScore"`
}

// MirrorRun records one execution of the P6/SAP mirror job.
type MirrorRun struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
	Status         string     `json:"status"` // running, ok, partial, failed
	ProjectsTotal  int        `json:"projectsTotal"`
	ProjectsFailed int        `json:"projectsFailed"`
	Detail         string     `json:"detail,omitempty"`
}

// Mirror run statuses.
const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)
