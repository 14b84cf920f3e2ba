// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fxs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var rePattern = regexp.MustCompile(`^(\d+)\(([\d./]+)\)$`)

// Pattern is a ring cadence: a total ringing duration and a list of
// alternating ON/OFF phase durations, repeated until the total elapses.
type Pattern struct {
	Total  time.Duration
	Phases []time.Duration

	src string
}

// ParsePattern parses a cadence of the form "total(on/off/on/off...)",
// where total is in whole seconds and phases in (fractional) seconds.
//
//	60(2/4)            ring 2s, pause 4s, for one minute
//	30(0.4/0.2/0.4/2)  double ring, for 30s
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	m := rePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return p, fmt.Errorf("fxs: invalid ring pattern %q: %w", s, ErrPattern)
	}

	total, err := strconv.Atoi(m[1])
	if err != nil {
		return p, fmt.Errorf("fxs: invalid ring pattern duration %q: %w", m[1], ErrPattern)
	}

	var sum time.Duration
	for _, tok := range strings.Split(m[2], "/") {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v < 0 {
			return p, fmt.Errorf("fxs: invalid ring pattern phase %q: %w", tok, ErrPattern)
		}
		d := time.Duration(v * float64(time.Second))
		sum += d
		p.Phases = append(p.Phases, d)
	}

	switch {
	case len(p.Phases)%2 != 0:
		return p, fmt.Errorf("fxs: ring pattern %q phases must alternate ON/OFF: %w", s, ErrPattern)
	case sum <= 0:
		return p, fmt.Errorf("fxs: ring pattern %q cycle duration must be positive: %w", s, ErrPattern)
	}

	p.Total = time.Duration(total) * time.Second
	p.src = m[0]
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string {
	if p.src != "" {
		return p.src
	}
	o := new(strings.Builder)
	fmt.Fprintf(o, "%d(", int(p.Total/time.Second))
	for i, d := range p.Phases {
		if i > 0 {
			o.WriteString("/")
		}
		o.WriteString(strconv.FormatFloat(d.Seconds(), 'g', -1, 64))
	}
	o.WriteString(")")
	return o.String()
}

// Pairs returns the (on, off) pairs of the pattern.
func (p Pattern) Pairs() [][2]time.Duration {
	out := make([][2]time.Duration, 0, len(p.Phases)/2)
	for i := 0; i+1 < len(p.Phases); i += 2 {
		out = append(out, [2]time.Duration{p.Phases[i], p.Phases[i+1]})
	}
	return out
}

// Start returns a new cadence whose clock starts now.
func (p Pattern) Start() *Cadence {
	return p.start(time.Now)
}

func (p Pattern) start(now func() time.Time) *Cadence {
	return &Cadence{
		total:  p.Total,
		phases: p.Phases,
		now:    now,
		beg:    now(),
	}
}

// Cadence iterates over the phases of a pattern.
// A cadence is finite: it ends once the total duration of the pattern
// has elapsed since it was started.
type Cadence struct {
	total  time.Duration
	phases []time.Duration
	now    func() time.Time
	beg    time.Time
	i      int
}

// Next returns the duration of the next phase, truncated to the time
// remaining. It returns false once the pattern is exhausted.
func (c *Cadence) Next() (time.Duration, bool) {
	elapsed := c.now().Sub(c.beg)
	if elapsed >= c.total || len(c.phases) == 0 {
		return 0, false
	}
	d := c.phases[c.i]
	if rem := c.total - elapsed; d > rem {
		d = rem
	}
	c.i = (c.i + 1) % len(c.phases)
	return d, true
}
