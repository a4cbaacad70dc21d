// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package monosim parses monosim plain-text contact exports.
//
// A monosim export lists one value per line: a name line followed by a
// phone line. Name lines accumulate into an open record and a phone line
// closes it. Records are tagged as they are read, so no sanitizer pass is
// needed.
package monosim

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

const maxLineSize = 1 << 20

// Options controls parsing.
type Options struct {
	// FlushAtEOF commits a record that is still open at end of stream. By
	// default such a record is discarded: only a phone line commits.
	FlushAtEOF bool
}

// accumulator is the fold state carried from line to line.
type accumulator struct {
	open    types.Record
	records types.RecordSet
}

// step folds one trimmed, non-empty line into the accumulator.
func (a accumulator) step(line string) accumulator {
	if types.IsPhone(line) {
		a.open = append(a.open, types.Field{Kind: types.KindPhone, Type: "CELL", Value: line})
		a.records = append(a.records, a.open)
		a.open = nil
		return a
	}
	a.open = append(a.open, types.NameFields(line)...)
	return a
}

// finish applies the end-of-stream policy.
func (a accumulator) finish(opts Options) types.RecordSet {
	if opts.FlushAtEOF && len(a.open) > 0 {
		return append(a.records, a.open)
	}
	return a.records
}

// Parse reads a monosim export from r. size is the stream length used for
// progress reporting and may be zero when unknown.
//
// Cancellation is checked after every line. A cancelled parse returns the
// records committed so far together with ctx.Err().
func Parse(ctx context.Context, r io.Reader, size int64, rep progress.Reporter, opts Options) (types.RecordSet, error) {
	rep = progress.OrNop(rep)
	rep.Start("Importing contacts", int(size))
	defer rep.Done()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var acc accumulator
	consumed := 0
	for sc.Scan() {
		raw := sc.Text()
		consumed += len(raw) + 1
		rep.Update(consumed)
		if err := ctx.Err(); err != nil {
			return acc.records, err
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		acc = acc.step(line)
	}
	if err := sc.Err(); err != nil {
		return acc.records, fmt.Errorf("reading monosim stream: %w", err)
	}
	return acc.finish(opts), nil
}
