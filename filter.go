package agvd

import (
	"fmt"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// Values written to the AGVDCUTOFF output column. PASS/FAIL/NOT_FOUND come
// from the threshold comparison; ERROR marks rows whose batch exhausted its
// retries; INVALID marks rows whose identifier never parsed.
const (
	VerdictPass     = "PASS"
	VerdictFail     = "FAIL"
	VerdictNotFound = "NOT_FOUND"
	VerdictError    = "ERROR"
	VerdictInvalid  = "INVALID"
)

// Direction selects which side of the MAF threshold passes: below keeps rare
// variants, above keeps common ones.
type Direction int

const (
	DirectionBelow Direction = iota
	DirectionAbove
)

func (d Direction) String() string {
	if d == DirectionAbove {
		return "above"
	}
	return "below"
}

// ParseDirection maps the command line spelling to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "below":
		return DirectionBelow, nil
	case "above":
		return DirectionAbove, nil
	}

	return 0, fmt.Errorf("direction must be %q or %q, got %q", DirectionBelow, DirectionAbove, s)
}

// Cutoff computes the AGVDCUTOFF verdict for one variant's African MAF
// against the requested threshold. A missing MAF is NOT_FOUND. A variant
// sitting exactly on the threshold fails in either direction.
func Cutoff(maf null.Float, threshold float64, direction Direction) string {
	if !maf.Valid {
		return VerdictNotFound
	}

	switch direction {
	case DirectionAbove:
		if maf.Float64 > threshold {
			return VerdictPass
		}
	default:
		if maf.Float64 < threshold {
			return VerdictPass
		}
	}

	return VerdictFail
}
