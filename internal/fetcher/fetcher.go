package fetcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoObservations indicates the data source answered but carried no usable
// photometry for the requested window.
var ErrNoObservations = errors.New("no observations returned")

// Observation is the most recent photometric point for a target.
type Observation struct {
	TargetID  string
	JD        decimal.Decimal
	Timestamp time.Time
	Magnitude decimal.Decimal
	Band      string
	ObsType   string
	Source    string
}

// PhotometryFetcher retrieves the latest observation for a configured target.
type PhotometryFetcher interface {
	FetchLatest(ctx context.Context) (Observation, error)
}

// pickColumn returns the index of the first matching header name, or -1.
func pickColumn(header []string, names ...string) int {
	for _, name := range names {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), name) {
				return i
			}
		}
	}
	return -1
}

// matchesBand reports whether the reported band names the wanted filter as a
// whole word ("V" matches "V" and "Johnson V" but not "Vis.").
func matchesBand(reported, wanted string) bool {
	wanted = strings.ToUpper(strings.TrimSpace(wanted))
	if wanted == "" {
		return true
	}
	for _, word := range strings.Fields(strings.ToUpper(reported)) {
		if word == wanted {
			return true
		}
	}
	return false
}

func matchesObsType(reported, wanted string) bool {
	if wanted == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(reported), strings.ToUpper(wanted))
}
