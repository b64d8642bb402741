// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command taiyangshi reports the solar term in effect at an instant and
// the term calendar for a year.
package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/logging/ctxlog"

	"github.com/amshager/taiyangshi/astronomy"
	"github.com/amshager/taiyangshi/solarterm"
)

var cmdSet *subcmd.CommandSet

type resolveFlags struct {
	Zone    string `subcmd:"zone,Local,IANA timezone used for display only"`
	Verbose bool   `subcmd:"verbose,false,log resolution steps as JSON to stderr"`
}

type yearFlags struct {
	Zone string `subcmd:"zone,Local,IANA timezone used for display only"`
}

func init() {
	resolveFlagSet := subcmd.NewFlagSet()
	resolveFlagSet.MustRegisterFlagStruct(&resolveFlags{}, nil, nil)
	yearFlagSet := subcmd.NewFlagSet()
	yearFlagSet.MustRegisterFlagStruct(&yearFlags{}, nil, nil)

	resolveCmd := subcmd.NewCommand("resolve", resolveFlagSet, resolve, subcmd.OptionalSingleArgument())
	resolveCmd.Document("resolve the solar term in effect now, or at the supplied RFC3339 instant", "[<instant>]")

	yearCmd := subcmd.NewCommand("year", yearFlagSet, listYear, subcmd.ExactlyNumArguments(1))
	yearCmd.Document("list the start instants of all 24 solar terms in a year", "<year>")

	cmdSet = subcmd.NewCommandSet(resolveCmd, yearCmd)
}

func main() {
	ctx := context.Background()
	if err := cmdSet.Dispatch(ctx); err != nil {
		cmdutil.Exit("%v", err)
	}
}

const displayFormat = "2006-01-02 15:04 MST"

func resolve(ctx context.Context, values interface{}, args []string) error {
	fv := values.(*resolveFlags)
	loc, err := time.LoadLocation(fv.Zone)
	if err != nil {
		return err
	}
	when := time.Now()
	if len(args) == 1 {
		when, err = time.Parse(time.RFC3339, args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", solarterm.ErrInvalidInstant, err)
		}
	}
	if fv.Verbose {
		ctx = ctxlog.NewJSONLogger(ctx, os.Stderr, nil)
	}
	w, err := solarterm.New(astronomy.Sun{}).Resolve(ctx, when)
	if err != nil {
		return err
	}
	fmt.Printf("%v %6.2f°  began  %v\n",
		w.Previous.Name, w.Previous.Longitude, w.PreviousStart.In(loc).Format(displayFormat))
	fmt.Printf("%v %6.2f°  began  %v  ends %v  <- current\n",
		w.Current.Name, w.Current.Longitude,
		w.CurrentStart.In(loc).Format(displayFormat), w.CurrentEnd.In(loc).Format(displayFormat))
	fmt.Printf("%v %6.2f°  begins %v\n",
		w.Next.Name, w.Next.Longitude, w.NextStart.In(loc).Format(displayFormat))
	fmt.Printf("sun at %.4f°, resolved at %v\n",
		w.RawLongitude, w.ResolvedAt.In(loc).Format(displayFormat))
	return nil
}

func listYear(_ context.Context, values interface{}, args []string) error {
	fv := values.(*yearFlags)
	loc, err := time.LoadLocation(fv.Zone)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("not a year: %q", args[0])
	}
	starts, err := astronomy.TermStarts(year)
	if err != nil {
		return err
	}
	type entry struct {
		term  solarterm.Term
		start time.Time
	}
	entries := make([]entry, len(starts))
	for i, start := range starts {
		entries[i] = entry{solarterm.TermAt(i), start}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return a.start.Compare(b.start)
	})
	for _, e := range entries {
		fmt.Printf("%v %6.2f°  %v\n", e.term.Name, e.term.Longitude, e.start.In(loc).Format(displayFormat))
	}
	return nil
}
