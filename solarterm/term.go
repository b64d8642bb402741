// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package solarterm resolves the 24 traditional solar terms, the 15°-spaced
// divisions of the Sun's apparent ecliptic longitude, against an external
// ephemeris.
package solarterm

import "math"

const (
	// TermCount is the number of solar terms in one tropical year.
	TermCount = 24

	// DegreesPerTerm is the longitude swept between consecutive term
	// boundaries.
	DegreesPerTerm = 15.0

	// baseLongitude is the apparent solar longitude at which the first
	// term, 立春, begins.
	baseLongitude = 315.0
)

// Term is one of the 24 traditional divisions of the tropical year. A term
// begins when the Sun's apparent ecliptic longitude reaches the term's
// defining longitude.
type Term struct {
	Index     int // position in the 315°-based table, 0..23
	Name      string
	Longitude float64 // degrees, [0,360)
}

var termNames = [TermCount]string{
	"立春", "雨水", "惊蛰", "春分", "清明", "谷雨",
	"立夏", "小满", "芒种", "夏至", "小暑", "大暑",
	"立秋", "处暑", "白露", "秋分", "寒露", "霜降",
	"立冬", "小雪", "大雪", "冬至", "小寒", "大寒",
}

var terms = func() [TermCount]Term {
	var all [TermCount]Term
	for i := range all {
		all[i] = Term{
			Index:     i,
			Name:      termNames[i],
			Longitude: NormalizeDegrees(baseLongitude + DegreesPerTerm*float64(i)),
		}
	}
	return all
}()

// Terms returns a copy of the full term table in boundary order, starting
// with 立春 at 315°.
func Terms() []Term {
	out := make([]Term, TermCount)
	copy(out, terms[:])
	return out
}

// TermAt returns the term with the given index, wrapping modulo 24 so that
// adjacent-term arithmetic never goes out of range.
func TermAt(i int) Term {
	i %= TermCount
	if i < 0 {
		i += TermCount
	}
	return terms[i]
}

// NormalizeDegrees reduces x to the range [0, 360).
func NormalizeDegrees(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	if x == 360 { // -1e-17 + 360 rounds to 360
		return 0
	}
	return x
}

// IndexForLongitude maps an apparent solar longitude in degrees to the
// index of the term whose span contains it. The circle is re-based so that
// 315°, the start of the first term, maps to index 0.
func IndexForLongitude(elon float64) int {
	return int(math.Floor(NormalizeDegrees(elon-baseLongitude) / DegreesPerTerm))
}
