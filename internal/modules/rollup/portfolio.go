package rollup

import (
	"gonum.org/v1/gonum/stat"

	"github.com/orionpms/orion/pkg/evm"
)

// Aggregate combines project rollups into the portfolio summary.
//
// The SPI/CPI averages are unweighted arithmetic means over projects with a
// defined index. This differs from a budget-weighted rollup and can mask
// risk in large projects; it reproduces the established dashboard semantics
// and must not be silently "fixed" (see DESIGN.md).
//
// Projects with no_data status are counted in TotalProjects but excluded
// from the status partition and the means. An empty portfolio yields nil
// averages, distinguishing "no data" from a perfectly on-budget 1.0.
func Aggregate(projects []ProjectRollup) PortfolioSummary {
	summary := PortfolioSummary{TotalProjects: len(projects)}

	var spis, cpis []float64
	for _, p := range projects {
		switch p.Status {
		case evm.StatusOnTrack:
			summary.OnTrackCount++
		case evm.StatusAtRisk:
			summary.AtRiskCount++
		case evm.StatusCritical:
			summary.CriticalCount++
		}

		if p.Derived.SPI != nil {
			spis = append(spis, *p.Derived.SPI)
		}
		if p.Derived.CPI != nil {
			cpis = append(cpis, *p.Derived.CPI)
		}
	}

	if len(spis) > 0 {
		avg := stat.Mean(spis, nil)
		summary.AvgSPI = &avg
	}
	if len(cpis) > 0 {
		avg := stat.Mean(cpis, nil)
		summary.AvgCPI = &avg
	}

	return summary
}
