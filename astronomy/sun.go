// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package astronomy supplies solar ephemeris data from the Meeus series
// and calendar dates for solar term boundaries.
package astronomy

import (
	"fmt"
	"time"

	"github.com/amshager/taiyangshi/solarterm"
	"github.com/mooncaker816/learnmeeus/v3/base"
	"github.com/mooncaker816/learnmeeus/v3/julian"
	"github.com/mooncaker816/learnmeeus/v3/solar"
)

// Sun implements solarterm.Ephemeris on the Meeus apparent-longitude
// series. The zero value is ready to use and safe for concurrent use.
type Sun struct{}

var _ solarterm.Ephemeris = Sun{}

// ApparentLongitude returns the Sun's apparent ecliptic longitude at t in
// degrees [0,360).
func (Sun) ApparentLongitude(t time.Time) (float64, error) {
	if err := validSpan(t); err != nil {
		return 0, err
	}
	return apparentLongitude(t), nil
}

func apparentLongitude(t time.Time) float64 {
	jd := julian.TimeToJD(t.UTC())
	return solar.ApparentLongitude(base.J2000Century(jd)).Mod1().Deg()
}

// SearchLongitudeCrossing returns the earliest instant at or after
// windowStart, and within windowDays of it, at which the Sun's apparent
// longitude crosses target degrees. The longitude advances roughly one
// degree per day and never retrogrades, so a crossing is bracketed by
// scanning daily samples of the signed offset and then narrowed by
// bisection.
func (Sun) SearchLongitudeCrossing(target float64, windowStart time.Time, windowDays int) (time.Time, error) {
	if err := validSpan(windowStart); err != nil {
		return time.Time{}, err
	}
	if windowDays <= 0 {
		return time.Time{}, fmt.Errorf("%w: non-positive window of %v days", solarterm.ErrNoCrossing, windowDays)
	}
	target = solarterm.NormalizeDegrees(target)
	lo := windowStart
	dlo := longitudeOffset(lo, target)
	if dlo == 0 {
		return lo, nil
	}
	for day := 1; day <= windowDays; day++ {
		hi := windowStart.AddDate(0, 0, day)
		dhi := longitudeOffset(hi, target)
		if dlo < 0 && dhi >= 0 {
			return bisect(lo, hi, target), nil
		}
		lo, dlo = hi, dhi
	}
	return time.Time{}, fmt.Errorf("%w: longitude %v from %v over %v days",
		solarterm.ErrNoCrossing, target, windowStart.Format(time.RFC3339), windowDays)
}

// longitudeOffset returns the signed separation in degrees, in
// (-180, 180], between the Sun's longitude at t and target. Negative
// values mean the Sun has yet to reach target.
func longitudeOffset(t time.Time, target float64) float64 {
	d := solarterm.NormalizeDegrees(apparentLongitude(t) - target)
	if d > 180 {
		d -= 360
	}
	return d
}

// bisect narrows a bracketing interval around a longitude crossing to
// below a second, two orders finer than the minute resolution exposed by
// the resolver. The offset is monotonic over any interval this short.
func bisect(lo, hi time.Time, target float64) time.Time {
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2)
		if longitudeOffset(mid, target) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// The polynomial series behind solar.ApparentLongitude degrades far from
// J2000; a millennium either side stays well within its useful range.
func validSpan(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: zero instant", solarterm.ErrInvalidInstant)
	}
	if y := t.UTC().Year(); y < solarterm.MinYear || y > solarterm.MaxYear {
		return fmt.Errorf("%w: year %v outside ephemeris span [%v, %v]",
			solarterm.ErrInvalidInstant, y, solarterm.MinYear, solarterm.MaxYear)
	}
	return nil
}
