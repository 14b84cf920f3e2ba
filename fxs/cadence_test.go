// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fxs

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (clk *fakeClock) now() time.Time {
	clk.mu.Lock()
	defer clk.mu.Unlock()
	return clk.t
}

func (clk *fakeClock) add(d time.Duration) {
	clk.mu.Lock()
	defer clk.mu.Unlock()
	clk.t = clk.t.Add(d)
}

func TestParsePattern(t *testing.T) {
	ms := time.Millisecond
	for _, tc := range []struct {
		str    string
		total  time.Duration
		phases []time.Duration
		pairs  [][2]time.Duration
		err    bool
	}{
		{
			str:    "60(2/4)",
			total:  60 * time.Second,
			phases: []time.Duration{2 * time.Second, 4 * time.Second},
			pairs:  [][2]time.Duration{{2 * time.Second, 4 * time.Second}},
		},
		{
			str:    "30(0.4/0.2/0.4/2)",
			total:  30 * time.Second,
			phases: []time.Duration{400 * ms, 200 * ms, 400 * ms, 2000 * ms},
			pairs:  [][2]time.Duration{{400 * ms, 200 * ms}, {400 * ms, 2000 * ms}},
		},
		{
			str:    "2(0/0.5)",
			total:  2 * time.Second,
			phases: []time.Duration{0, 500 * ms},
			pairs:  [][2]time.Duration{{0, 500 * ms}},
		},
		{str: "", err: true},
		{str: "60", err: true},
		{str: "60()", err: true},
		{str: "(1/2)", err: true},
		{str: "x(1/2)", err: true},
		{str: "60(1/2/3)", err: true},
		{str: "60(0/0)", err: true},
		{str: "60(1//2)", err: true},
		{str: "60(1.2.3/1)", err: true},
		{str: "60(1/2) ring", err: true},
	} {
		t.Run(tc.str, func(t *testing.T) {
			p, err := ParsePattern(tc.str)
			switch {
			case err != nil && tc.err:
				if !errors.Is(err, ErrPattern) {
					t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrPattern)
				}
				return
			case err != nil && !tc.err:
				t.Fatalf("could not parse pattern: %+v", err)
			case err == nil && tc.err:
				t.Fatalf("expected an error")
			}

			if got, want := p.Total, tc.total; got != want {
				t.Fatalf("invalid total: got=%v, want=%v", got, want)
			}
			if got, want := p.Phases, tc.phases; !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid phases:\ngot= %v\nwant=%v", got, want)
			}
			if got, want := p.Pairs(), tc.pairs; !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid pairs:\ngot= %v\nwant=%v", got, want)
			}
			if got, want := p.String(), tc.str; got != want {
				t.Fatalf("invalid string: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestPatternString(t *testing.T) {
	p := Pattern{
		Total:  30 * time.Second,
		Phases: []time.Duration{400 * time.Millisecond, 2 * time.Second},
	}
	if got, want := p.String(), "30(0.4/2)"; got != want {
		t.Fatalf("invalid string: got=%q, want=%q", got, want)
	}
}

func TestCadence(t *testing.T) {
	ms := time.Millisecond
	for _, tc := range []struct {
		pattern string
		want    []time.Duration
	}{
		{
			pattern: "2(0.5/0.5)",
			want:    []time.Duration{500 * ms, 500 * ms, 500 * ms, 500 * ms},
		},
		{
			pattern: "1(0.4/0.4)",
			want:    []time.Duration{400 * ms, 400 * ms, 200 * ms},
		},
		{
			pattern: "3(2/0.5)",
			want:    []time.Duration{2000 * ms, 500 * ms, 500 * ms},
		},
		{
			pattern: "0(1/1)",
			want:    nil,
		},
	} {
		t.Run(tc.pattern, func(t *testing.T) {
			p := MustParsePattern(tc.pattern)
			clk := newFakeClock()

			// a pattern can be replayed any number of times.
			for i := 0; i < 2; i++ {
				var (
					got []time.Duration
					sum time.Duration
					cad = p.start(clk.now)
				)
				for {
					d, ok := cad.Next()
					if !ok {
						break
					}
					got = append(got, d)
					sum += d
					clk.add(d)
				}
				if !reflect.DeepEqual(got, tc.want) {
					t.Fatalf("run %d: invalid phases:\ngot= %v\nwant=%v", i, got, tc.want)
				}
				if sum > p.Total {
					t.Fatalf("run %d: cadence overshoots: got=%v, want<=%v", i, sum, p.Total)
				}
			}
		})
	}
}

func TestCadenceMidPhase(t *testing.T) {
	clk := newFakeClock()
	cad := MustParsePattern("2(0.5/0.5)").start(clk.now)

	clk.add(1800 * time.Millisecond)
	d, ok := cad.Next()
	if !ok {
		t.Fatalf("cadence ended too early")
	}
	if got, want := d, 200*time.Millisecond; got != want {
		t.Fatalf("invalid truncated phase: got=%v, want=%v", got, want)
	}

	clk.add(d)
	if _, ok := cad.Next(); ok {
		t.Fatalf("cadence should be exhausted")
	}
}

func TestMustParsePattern(t *testing.T) {
	defer func() {
		e := recover()
		if e == nil {
			t.Fatalf("expected a panic")
		}
	}()
	_ = MustParsePattern("60(1)")
}
