// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package astronomy

import (
	"time"

	"cloudeng.io/datetime"
	"cloudeng.io/errors"
	"github.com/amshager/taiyangshi/solarterm"
)

// TermStart returns the instant, in UTC, at which the given term begins
// in the given calendar year.
func TermStart(year int, term solarterm.Term) (time.Time, error) {
	windowStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	when, err := Sun{}.SearchLongitudeCrossing(term.Longitude, windowStart, 366)
	if err != nil {
		return time.Time{}, err
	}
	return when.UTC(), nil
}

// TermStarts returns the start instants of all 24 terms in the given
// calendar year, in term-table order (立春 first). The terms are not
// chronological within a calendar year: the table begins in February and
// wraps past the year boundary.
func TermStarts(year int) ([]time.Time, error) {
	starts := make([]time.Time, solarterm.TermCount)
	var errs errors.M
	for i, term := range solarterm.Terms() {
		when, err := TermStart(year, term)
		if err != nil {
			errs.Append(err)
			continue
		}
		starts[i] = when
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return starts, nil
}

func calendarDate(t time.Time) datetime.CalendarDate {
	y, m, d := t.UTC().Date()
	return datetime.NewCalendarDate(y, datetime.Month(m), d)
}

// TermDate implements datetime.DynamicDateRange for the start date of a
// solar term, evaluated once per year like the solstice and equinox
// ranges.
type TermDate struct {
	Term solarterm.Term
}

func (d TermDate) Name() string {
	return d.Term.Name
}

func (d TermDate) Evaluate(year int) datetime.CalendarDateRange {
	when, err := TermStart(year, d.Term)
	if err != nil {
		// DynamicDateRange has no error path; the search only fails
		// outside the ephemeris span.
		return datetime.CalendarDateRange(0)
	}
	cd := calendarDate(when)
	return datetime.NewCalendarDateRange(cd, cd)
}

// TermDates returns DynamicDateRanges for all 24 terms, suitable for
// driving annual schedules.
func TermDates() datetime.DynamicDateRangeList {
	out := make(datetime.DynamicDateRangeList, solarterm.TermCount)
	for i, term := range solarterm.Terms() {
		out[i] = TermDate{Term: term}
	}
	return out
}
