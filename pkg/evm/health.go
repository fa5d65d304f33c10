package evm

// HealthStatus classifies schedule/cost performance into the traffic-light
// states used across the dashboards.
type HealthStatus string

const (
	StatusOnTrack  HealthStatus = "on_track"
	StatusAtRisk   HealthStatus = "at_risk"
	StatusCritical HealthStatus = "critical"
	StatusNoData   HealthStatus = "no_data"
)

// Classification thresholds. Every caller (project, phase bucket, portfolio)
// must use these same constants so status coloring stays consistent across
// pages.
const (
	// OnTrackThreshold is the minimum SPI and CPI for on_track.
	OnTrackThreshold = 0.95
	// CriticalThreshold is the SPI or CPI floor below which a project is
	// critical regardless of the other index.
	CriticalThreshold = 0.85
)

// Classify maps an SPI/CPI pair to a health status.
//
// A nil index means the underlying ratio is undefined (no planned work or no
// cost incurred yet), so there is nothing to classify: the result is
// StatusNoData, never a substituted on_track or critical.
func Classify(spi, cpi *float64) HealthStatus {
	if spi == nil || cpi == nil {
		return StatusNoData
	}

	switch {
	case *spi >= OnTrackThreshold && *cpi >= OnTrackThreshold:
		return StatusOnTrack
	case *spi < CriticalThreshold || *cpi < CriticalThreshold:
		return StatusCritical
	default:
		return StatusAtRisk
	}
}
