// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package solarterm

import (
	"context"
	"fmt"
	"time"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/sync/errgroup"
)

// Search windows, in days. Consecutive term boundaries are ~15.2 days
// apart, so a window opening 40 days before the query instant always
// contains the boundary of the current term and of both its neighbours.
// The fallback window covers ephemeris edge cases near the primary
// window's limits.
const (
	primaryLookbackDays  = 40
	primaryWindowDays    = 80
	fallbackLookbackDays = 200
	fallbackWindowDays   = 400
)

// Instants outside this span are rejected before the ephemeris is
// consulted.
const (
	MinYear = 1000
	MaxYear = 3000
)

var (
	// ErrInvalidInstant indicates a query instant the resolver rejects
	// up front: the zero time or a year outside [MinYear, MaxYear].
	ErrInvalidInstant = errors.New("invalid query instant")

	// ErrEphemerisUnavailable indicates a resolver constructed without
	// an ephemeris.
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")

	// ErrNoCrossing is returned by Ephemeris implementations when a
	// search window contains no crossing of the target longitude.
	ErrNoCrossing = errors.New("no longitude crossing in search window")
)

// ResolutionError reports a term boundary that could not be located even
// after widening the search window.
type ResolutionError struct {
	Target float64 // degrees
	Around time.Time
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("boundary not found for target longitude %v around %v: %v",
		e.Target, e.Around.Format(time.RFC3339), e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Ephemeris is the astronomical capability the resolver consumes.
// Implementations must be safe for concurrent use; the astronomy package
// provides one backed by the Meeus series.
type Ephemeris interface {
	// ApparentLongitude returns the Sun's apparent ecliptic longitude
	// in degrees [0,360) at t. It fails only for instants outside the
	// ephemeris' validity span.
	ApparentLongitude(t time.Time) (float64, error)

	// SearchLongitudeCrossing returns the earliest instant at or after
	// windowStart, and within windowDays of it, at which the Sun's
	// apparent longitude crosses target degrees. It returns an error
	// satisfying errors.Is(err, ErrNoCrossing) when the window contains
	// no crossing, never a silently wrong instant.
	SearchLongitudeCrossing(target float64, windowStart time.Time, windowDays int) (time.Time, error)
}

// Window describes the solar term in effect at a query instant together
// with the boundary instants of the adjacent terms. Every instant is
// floored to the whole minute.
type Window struct {
	Current  Term
	Previous Term
	Next     Term

	CurrentStart  time.Time
	CurrentEnd    time.Time // equal to NextStart
	PreviousStart time.Time
	NextStart     time.Time

	// RawLongitude is the undiscretized apparent longitude at the query
	// instant. ResolvedAt is the wall-clock instant the resolution ran,
	// recorded for staleness audits, not the query instant.
	RawLongitude float64
	ResolvedAt   time.Time
}

// Resolver determines the active solar term for any instant. It is
// stateless and may be used concurrently.
type Resolver struct {
	eph Ephemeris
}

// New returns a Resolver that consults the supplied ephemeris.
func New(eph Ephemeris) *Resolver {
	return &Resolver{eph: eph}
}

// Resolve returns the term window containing t. A query exactly at a term
// boundary belongs to the term that has just begun. Each resolution is
// independent; a failed boundary search surfaces as a *ResolutionError
// and never as a partially populated Window.
func (r *Resolver) Resolve(ctx context.Context, t time.Time) (Window, error) {
	if r.eph == nil {
		return Window{}, ErrEphemerisUnavailable
	}
	if t.IsZero() {
		return Window{}, fmt.Errorf("%w: zero instant", ErrInvalidInstant)
	}
	if y := t.Year(); y < MinYear || y > MaxYear {
		return Window{}, fmt.Errorf("%w: year %v outside [%v, %v]", ErrInvalidInstant, y, MinYear, MaxYear)
	}

	elon, err := r.eph.ApparentLongitude(t)
	if err != nil {
		return Window{}, err
	}
	elon = NormalizeDegrees(elon)
	idx := IndexForLongitude(elon)

	start, err := r.boundary(TermAt(idx).Longitude, t)
	if err != nil {
		return Window{}, err
	}
	if start.After(t) {
		// The sampled longitude discretized into the term just ahead
		// of t. Stepping back one term is always sufficient: the
		// mapping error cannot exceed one term width.
		ctxlog.Logger(ctx).Debug("term index overshot boundary, stepping back",
			"instant", t, "longitude", elon, "index", idx)
		idx--
		start, err = r.boundary(TermAt(idx).Longitude, t)
		if err != nil {
			return Window{}, err
		}
		if start.After(t) {
			return Window{}, &ResolutionError{
				Target: TermAt(idx).Longitude,
				Around: t,
				Err:    fmt.Errorf("boundary %v still after query instant after one correction", start),
			}
		}
	}

	// The previous and next boundary searches are independent of each
	// other and of the corrected current boundary.
	var prevStart, nextStart time.Time
	g := &errgroup.T{}
	g.Go(func() error {
		var err error
		prevStart, err = r.boundary(TermAt(idx-1).Longitude, t)
		return err
	})
	g.Go(func() error {
		var err error
		nextStart, err = r.boundary(TermAt(idx+1).Longitude, t)
		return err
	})
	if err := g.Wait(); err != nil {
		return Window{}, err
	}

	w := Window{
		Current:       TermAt(idx),
		Previous:      TermAt(idx - 1),
		Next:          TermAt(idx + 1),
		CurrentStart:  floorToMinute(start),
		PreviousStart: floorToMinute(prevStart),
		NextStart:     floorToMinute(nextStart),
		RawLongitude:  elon,
		ResolvedAt:    floorToMinute(time.Now()),
	}
	w.CurrentEnd = w.NextStart
	return w, nil
}

// boundary locates the instant at which the Sun reaches target degrees
// near t, searching forward from 40 days before t. If the ephemeris
// reports no crossing the search is retried once over a 400 day window
// before failing; the failure is not retried further.
func (r *Resolver) boundary(target float64, t time.Time) (time.Time, error) {
	when, err := r.eph.SearchLongitudeCrossing(target, t.AddDate(0, 0, -primaryLookbackDays), primaryWindowDays)
	if err == nil {
		return when, nil
	}
	if !errors.Is(err, ErrNoCrossing) {
		return time.Time{}, err
	}
	when, err = r.eph.SearchLongitudeCrossing(target, t.AddDate(0, 0, -fallbackLookbackDays), fallbackWindowDays)
	if err == nil {
		return when, nil
	}
	if !errors.Is(err, ErrNoCrossing) {
		return time.Time{}, err
	}
	return time.Time{}, &ResolutionError{Target: target, Around: t, Err: err}
}

// floorToMinute discards seconds and sub-second components. Truncate
// rounds toward the zero time, which is a floor for any supported
// instant.
func floorToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
