// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress reports long-running stage progress and user-facing
// messages on a terminal. Cancellation is not part of the reporter: stages
// observe it through their context.
package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Reporter receives progress for one stage at a time. Start begins a new
// stage, Update sets the absolute position within it, and Done closes it.
type Reporter interface {
	Start(label string, max int)
	Update(value int)
	Done()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Update(int)        {}
func (Nop) Done()             {}

// OrNop returns r, or a Nop reporter when r is nil.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

const barWidth = 40

// Bar renders a single-line progress bar to w. The line is redrawn only
// when the whole percentage changes, so per-byte updates stay cheap.
type Bar struct {
	w       io.Writer
	model   progress.Model
	label   string
	max     int
	percent int
	active  bool
}

// NewBar creates a Bar that writes to w.
func NewBar(w io.Writer) *Bar {
	m := progress.New(progress.WithDefaultGradient())
	m.Width = barWidth
	return &Bar{w: w, model: m}
}

// Start begins a new stage. A max of zero or less renders as complete.
func (b *Bar) Start(label string, max int) {
	if b.active {
		b.Done()
	}
	b.label = label
	b.max = max
	b.percent = -1
	b.active = true
	b.Update(0)
}

// Update moves the bar to value.
func (b *Bar) Update(value int) {
	if !b.active {
		return
	}
	pct := 100
	if b.max > 0 {
		pct = value * 100 / b.max
		if pct > 100 {
			pct = 100
		}
	}
	if pct == b.percent {
		return
	}
	b.percent = pct
	fmt.Fprintf(b.w, "\r%-22s %s", b.label, b.model.ViewAs(float64(pct)/100))
}

// Done completes the current stage and ends the line.
func (b *Bar) Done() {
	if !b.active {
		return
	}
	b.Update(b.max)
	fmt.Fprintln(b.w)
	b.active = false
}
