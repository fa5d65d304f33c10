package evm

import "math"

// BaseSnapshot holds the raw cost/schedule inputs for one WBS node, project
// or phase bucket, in a single currency at a single as-of date. Snapshots are
// produced by the mirror layer and never mutated; every derived figure is
// recomputed from these four values on demand.
type BaseSnapshot struct {
	PV  float64 `json:"pv"`  // Planned Value (BCWS)
	EV  float64 `json:"ev"`  // Earned Value (BCWP)
	AC  float64 `json:"ac"`  // Actual Cost (ACWP)
	BAC float64 `json:"bac"` // Budget at Completion
}

// Add returns the component-wise sum of two snapshots. Rollups sum base
// values and re-derive ratios at each level; they never average child ratios.
func (b BaseSnapshot) Add(o BaseSnapshot) BaseSnapshot {
	return BaseSnapshot{
		PV:  b.PV + o.PV,
		EV:  b.EV + o.EV,
		AC:  b.AC + o.AC,
		BAC: b.BAC + o.BAC,
	}
}

// IsZero reports whether all four components are zero.
func (b BaseSnapshot) IsZero() bool {
	return b.PV == 0 && b.EV == 0 && b.AC == 0 && b.BAC == 0
}

// DerivedMetrics is the full EVM metric set computed from a BaseSnapshot.
//
// SPI, CPI and TCPI are pointers because they are undefined (not zero) when
// their denominator is zero: SPI with no planned work, CPI with no cost
// incurred, TCPI with no remaining budget. Nil propagates to JSON null and is
// never coerced to 0 or 1.
type DerivedMetrics struct {
	SPI             *float64 `json:"spi"`
	CPI             *float64 `json:"cpi"`
	SV              float64  `json:"sv"`
	CV              float64  `json:"cv"`
	EAC             float64  `json:"eac"`
	ETC             float64  `json:"etc"`
	VAC             float64  `json:"vac"`
	TCPI            *float64 `json:"tcpi"`
	PercentComplete int      `json:"percentComplete"`
}

// ComputeDerived computes the EVM metric set from a base snapshot.
//
// Formulas:
//
//	SPI  = EV / PV                (nil when PV = 0)
//	CPI  = EV / AC                (nil when AC = 0)
//	SV   = EV - PV
//	CV   = EV - AC
//	EAC  = BAC / CPI              (BAC when CPI is nil or <= 0)
//	ETC  = EAC - AC
//	VAC  = BAC - EAC
//	TCPI = (BAC - EV) / (BAC - AC) (nil when BAC = AC)
//
// When CPI is unusable there is no cost-performance basis to forecast from,
// so EAC falls back to the budget as the conservative estimate.
//
// Values are kept at full float64 precision; rounding happens only at the
// serialization boundary so multi-level rollups do not accumulate rounding
// error. The single exception is PercentComplete, which is an integer
// percentage by contract.
func ComputeDerived(base BaseSnapshot) DerivedMetrics {
	m := DerivedMetrics{
		SV: base.EV - base.PV,
		CV: base.EV - base.AC,
	}

	if base.PV > 0 {
		spi := base.EV / base.PV
		m.SPI = &spi
	}

	if base.AC > 0 {
		cpi := base.EV / base.AC
		m.CPI = &cpi
	}

	m.EAC = base.BAC
	if m.CPI != nil && *m.CPI > 0 {
		m.EAC = base.BAC / *m.CPI
	}
	m.ETC = m.EAC - base.AC
	m.VAC = base.BAC - m.EAC

	if remaining := base.BAC - base.AC; remaining != 0 {
		tcpi := (base.BAC - base.EV) / remaining
		m.TCPI = &tcpi
	}

	if base.BAC > 0 {
		m.PercentComplete = int(math.Round(base.EV / base.BAC * 100))
	}

	return m
}
