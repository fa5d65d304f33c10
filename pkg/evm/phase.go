package evm

import "strings"

// Phase is one of the five EPCIC project phases.
type Phase string

const (
	PhaseEngineering   Phase = "engineering"
	PhaseProcurement   Phase = "procurement"
	PhaseConstruction  Phase = "construction"
	PhaseInstallation  Phase = "installation"
	PhaseCommissioning Phase = "commissioning"
)

// Phases returns the five phases in canonical EPCIC order.
func Phases() []Phase {
	return []Phase{
		PhaseEngineering,
		PhaseProcurement,
		PhaseConstruction,
		PhaseInstallation,
		PhaseCommissioning,
	}
}

// ClassifyPhase maps a WBS code to its EPCIC phase by the first character of
// the code, upper-cased: E, P, C, I and M (commissioning uses M for
// "mechanical completion" in the source codes). Anything else falls back to
// construction rather than being dropped.
//
// The single-character prefix rule is deliberately crude but it is the rule
// the mirrored P6 coding convention uses; changing it changes every phase
// bucket downstream, so treat any refinement as a breaking behavior change.
func ClassifyPhase(wbsCode string) Phase {
	if wbsCode == "" {
		return PhaseConstruction
	}

	switch strings.ToUpper(wbsCode[:1]) {
	case "E":
		return PhaseEngineering
	case "P":
		return PhaseProcurement
	case "C":
		return PhaseConstruction
	case "I":
		return PhaseInstallation
	case "M":
		return PhaseCommissioning
	default:
		return PhaseConstruction
	}
}
