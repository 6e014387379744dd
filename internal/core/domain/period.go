package domain

import (
	"math"
	"time"
)

// Period is a half-open booking interval: StartDate inclusive, EndDate
// exclusive. EndDate must be strictly after StartDate.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
}

func (p Period) Validate() error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() || !p.EndDate.After(p.StartDate) {
		return ErrInvalidPeriod
	}
	return nil
}

// Days counts billable days, rounding any partial day up.
func (p Period) Days() int {
	hours := p.EndDate.Sub(p.StartDate).Hours()
	return int(math.Ceil(hours / 24))
}

func (p Period) EndedBy(now time.Time) bool {
	return !p.EndDate.After(now)
}
