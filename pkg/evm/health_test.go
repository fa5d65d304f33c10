package evm

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		spi  *float64
		cpi  *float64
		want HealthStatus
	}{
		{"both at on-track boundary", ptr(0.95), ptr(0.95), StatusOnTrack},
		{"both healthy", ptr(1.1), ptr(1.02), StatusOnTrack},
		{"spi just under on-track", ptr(0.94), ptr(0.95), StatusAtRisk},
		{"cpi just under on-track", ptr(1.0), ptr(0.94), StatusAtRisk},
		{"both at critical boundary", ptr(0.85), ptr(0.85), StatusAtRisk},
		{"spi below critical", ptr(0.84), ptr(1.0), StatusCritical},
		{"cpi below critical", ptr(1.2), ptr(0.80), StatusCritical},
		{"both below critical", ptr(0.5), ptr(0.5), StatusCritical},
		{"nil spi", nil, ptr(0.9), StatusNoData},
		{"nil cpi", ptr(0.9), nil, StatusNoData},
		{"both nil", nil, nil, StatusNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.spi, tt.cpi); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.spi, tt.cpi, got, tt.want)
			}
		})
	}
}

func TestClassifyMatchesComputeDerived(t *testing.T) {
	// Empty snapshot produces nil indices, which must classify as no_data.
	m := ComputeDerived(BaseSnapshot{})
	if got := Classify(m.SPI, m.CPI); got != StatusNoData {
		t.Errorf("empty snapshot classified as %v, want %v", got, StatusNoData)
	}
}
