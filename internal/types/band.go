package types

import "strings"

// RoutingBand is the canonical difficulty band a request is routed under.
type RoutingBand string

const (
	BandLow    RoutingBand = "low"
	BandMedium RoutingBand = "medium"
	BandHigh   RoutingBand = "high"
)

// bandAliases maps upstream band spellings to canonical values.
var bandAliases = map[string]RoutingBand{
	"simple":       BandLow,
	"low":          BandLow,
	"moderate":     BandMedium,
	"medium":       BandMedium,
	"complex":      BandHigh,
	"high":         BandHigh,
	"long_context": BandHigh,
}

// NormalizeBand resolves any band spelling to a canonical RoutingBand.
// It is total: empty or unrecognized input resolves to medium, never an error,
// and normalizing an already-canonical value returns it unchanged.
func NormalizeBand(band string) RoutingBand {
	if band == "" {
		return BandMedium
	}
	if b, ok := bandAliases[strings.ToLower(band)]; ok {
		return b
	}
	return BandMedium
}

// Level returns a numeric severity for comparison. Higher means harder.
func (b RoutingBand) Level() int {
	switch b {
	case BandLow:
		return 0
	case BandMedium:
		return 1
	case BandHigh:
		return 2
	default:
		return 1
	}
}
