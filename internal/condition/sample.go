package condition

import (
	"math/big"
	"time"

	"gitlab.com/distributed_lab/logan/v3/errors"
)

var (
	ErrIndexInactive = errors.New("index is deactivated, last value is stale-but-available")
	ErrStaleValue    = errors.New("index value is older than the freshness window")
)

// Sample is a single oracle observation of an index.
type Sample struct {
	Value     *big.Int
	Timestamp time.Time
	Active    bool
}

// EvaluateSample applies the condition to a live oracle sample. It refuses to
// produce a silent verdict from known-stale data: a deactivated index or a
// value older than freshFor yields a typed error alongside the comparison
// result, so callers may still display the stale verdict explicitly.
func EvaluateSample(c Condition, s Sample, freshFor time.Duration, now time.Time) (bool, error) {
	ok := Evaluate(c, s.Value)
	if !s.Active {
		return ok, ErrIndexInactive
	}
	if freshFor > 0 && now.Sub(s.Timestamp) > freshFor {
		return ok, ErrStaleValue
	}
	return ok, nil
}
