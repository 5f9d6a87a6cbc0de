// Package timeperiod resolves named relative periods to calendar date ranges.
package timeperiod

import (
	"fmt"
	"time"
)

// Period is a named relative time period.
type Period string

// Supported periods.
const (
	Last7Days   Period = "last7Days"
	Last30Days  Period = "last30Days"
	Last90Days  Period = "last90Days"
	Last365Days Period = "last365Days"
)

var periodDays = map[Period]int{
	Last7Days:   7,
	Last30Days:  30,
	Last90Days:  90,
	Last365Days: 365,
}

// Periods returns the supported periods, shortest first.
func Periods() []Period {
	return []Period{Last7Days, Last30Days, Last90Days, Last365Days}
}

// IsValid checks if the period is supported.
func (p Period) IsValid() bool {
	_, ok := periodDays[p]
	return ok
}

// Resolve returns the inclusive [start, end] dates (YYYY-MM-DD) of the period
// ending today, where "today" is now in loc.
func Resolve(p Period, now time.Time, loc *time.Location) (start, end string, err error) {
	days, ok := periodDays[p]
	if !ok {
		return "", "", fmt.Errorf("unknown time period %q", p)
	}
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	return today.AddDate(0, 0, -days).Format(time.DateOnly), today.Format(time.DateOnly), nil
}
