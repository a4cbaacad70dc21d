// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pbb decodes PBB phonebook backups into raw contact records.
//
// A PBB file is a stream of text lines separated by runs of zero bytes.
// The layout is undocumented; record boundaries are recovered from short
// separator lines whose first byte equals the running record index
// (01 01 02, 02 01 02, ...). The decoder is a finite-state machine driven
// one byte at a time by the length of the current zero run:
//
//	state        byte      condition                          action
//	-----        ----      ---------                          ------
//	Scanning     00        -                                  -> ZeroRunOne
//	ZeroRunOne   00        -                                  -> ZeroRunTwo
//	ZeroRunTwo   00        -                                  stay (saturated)
//	Scanning     b != 00   -                                  append b
//	ZeroRunOne   b != 00   -                                  append b, -> Scanning
//	ZeroRunTwo   b != 00   header pending                     total = b, line = [b], -> Scanning
//	ZeroRunTwo   b != 00   line is a separator marker         commit record, line = [b], -> Scanning
//	ZeroRunTwo   b != 00   line non-empty                     emit field, line = [b], -> Scanning
//	ZeroRunTwo   b != 00   line empty                         line = [b], -> Scanning
//
// The header is pending while no total has been captured and nothing has
// been decoded yet. A line is a separator marker when it is shorter than
// four bytes, its first byte equals the record index, and either the index
// is past two or the line has more than one byte. The index advances only
// once at least one record has been committed.
package pbb

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

type state int

const (
	stateScanning state = iota
	stateZeroRunOne
	stateZeroRunTwo
)

func (s state) String() string {
	switch s {
	case stateScanning:
		return "Scanning"
	case stateZeroRunOne:
		return "ZeroRunOne"
	case stateZeroRunTwo:
		return "ZeroRunTwo"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// onZero returns the state after reading a zero byte.
func (s state) onZero() state {
	if s == stateScanning {
		return stateZeroRunOne
	}
	return stateZeroRunTwo
}

const (
	// TotalUnset is the declared total before the header byte is seen.
	TotalUnset = -1

	firstRecordIndex = 1

	// maxMarkerLen bounds separator lines: markers are at most three bytes.
	maxMarkerLen = 4

	// singleByteMarkerIndex is the last record index for which a one-byte
	// line is not accepted as a separator.
	singleByteMarkerIndex = 2

	// maxReclaimedNames is how many trailing fields of a finished record may
	// be moved to the next record as its name.
	maxReclaimedNames = 2
)

// Result is the outcome of decoding a PBB stream.
type Result struct {
	// Records holds the decoded raw records in file order.
	Records types.RecordSet

	// TotalExpected is the record count declared in the header, or
	// TotalUnset if no header byte was found. A single byte cannot represent
	// more than 255, so the value is advisory.
	TotalExpected int
}

// CountMismatch reports whether the declared total differs from the number
// of decoded records. It is a diagnostic only.
func (r Result) CountMismatch() bool {
	return r.TotalExpected != len(r.Records)
}

// Decoder is the byte-level state machine. The zero value is not ready for
// use; create one with NewDecoder.
type Decoder struct {
	state       state
	line        []byte
	recordIndex int
	total       int
	current     types.Record
	records     types.RecordSet
}

// NewDecoder returns a decoder positioned at the start of a stream.
func NewDecoder() *Decoder {
	return &Decoder{
		recordIndex: firstRecordIndex,
		total:       TotalUnset,
	}
}

// Feed advances the machine by one byte.
func (d *Decoder) Feed(b byte) {
	if b == 0 {
		d.state = d.state.onZero()
		return
	}
	if d.state != stateZeroRunTwo {
		d.line = append(d.line, b)
		d.state = stateScanning
		return
	}

	switch {
	case d.headerPending():
		d.total = int(b)
	case d.atMarker():
		d.commitRecord()
	case len(d.line) > 0:
		d.current = append(d.current, rawField(d.line))
	}
	d.line = append(d.line[:0], b)
	d.state = stateScanning
}

// Committed returns the records committed so far, excluding the record in
// progress and any pending line.
func (d *Decoder) Committed() Result {
	return Result{Records: d.records, TotalExpected: d.total}
}

// Finish flushes the pending line and record and returns the result.
func (d *Decoder) Finish() Result {
	if len(d.line) > 0 {
		d.current = append(d.current, rawField(d.line))
		d.line = d.line[:0]
	}
	if len(d.current) > 0 {
		d.records = append(d.records, d.current)
		d.current = nil
	}
	return d.Committed()
}

func (d *Decoder) headerPending() bool {
	return d.total == TotalUnset && len(d.records) == 0 && len(d.current) == 0
}

func (d *Decoder) atMarker() bool {
	n := len(d.line)
	if n == 0 || n >= maxMarkerLen {
		return false
	}
	if int(d.line[0]) != d.recordIndex {
		return false
	}
	return d.recordIndex > singleByteMarkerIndex || n > 1
}

// commitRecord closes the record in progress at a separator. The last
// fields of the finished record usually belong to the next contact's name,
// so up to maxReclaimedNames trailing fields that do not look like a phone,
// email, or URL are carried over to start the next record.
func (d *Decoder) commitRecord() {
	keep := len(d.current)
	for keep > 0 && len(d.current)-keep < maxReclaimedNames {
		if types.IsContactDetail(d.current[keep-1].Value) {
			break
		}
		keep--
	}

	var name types.Record
	if keep < len(d.current) {
		name = d.current[keep:].Clone()
	}

	if keep > 0 {
		d.records = append(d.records, d.current[:keep:keep])
	}
	d.current = name

	if len(d.records) > 0 {
		d.recordIndex++
	}
}

func rawField(line []byte) types.Field {
	return types.Field{Kind: types.KindRaw, Value: string(line)}
}

// Decode reads a PBB stream from r. size is the stream length used for
// progress reporting and may be zero when unknown.
//
// Cancellation is checked after every byte. A cancelled decode returns the
// records committed so far together with ctx.Err(); the record in progress
// is dropped.
func Decode(ctx context.Context, r io.Reader, size int64, rep progress.Reporter) (Result, error) {
	rep = progress.OrNop(rep)
	rep.Start("Importing contacts", int(size))
	defer rep.Done()

	d := NewDecoder()
	br := bufio.NewReader(r)
	for pos := 1; ; pos++ {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.Committed(), fmt.Errorf("reading pbb stream at byte %d: %w", pos, err)
		}
		d.Feed(b)
		rep.Update(pos)
		if err := ctx.Err(); err != nil {
			return d.Committed(), err
		}
	}
	return d.Finish(), nil
}
