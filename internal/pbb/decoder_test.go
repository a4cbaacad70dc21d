// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pbb

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/versacard/pkg/types"
)

// pbbStream joins lines with the two-zero-byte line separator, starting
// with a separator as real backups do.
func pbbStream(lines ...string) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write([]byte{0, 0})
		buf.WriteString(l)
	}
	return buf.Bytes()
}

func raw(values ...string) types.Record {
	rec := make(types.Record, len(values))
	for i, v := range values {
		rec[i] = types.Field{Kind: types.KindRaw, Value: v}
	}
	return rec
}

func decodeBytes(t *testing.T, data []byte) Result {
	t.Helper()
	res, err := Decode(context.Background(), bytes.NewReader(data), int64(len(data)), nil)
	require.NoError(t, err)
	return res
}

func TestDecodeTwoRecords(t *testing.T) {
	data := pbbStream(
		"\x02",
		"John Smith",
		"5551234",
		"Jane",
		"Doe",
		"\x01\x01\x02",
		"5559876",
		"jane@example.com",
	)

	res := decodeBytes(t, data)

	assert.Equal(t, 2, res.TotalExpected)
	assert.False(t, res.CountMismatch())
	assert.Equal(t, types.RecordSet{
		raw("\x02", "John Smith", "5551234"),
		raw("Jane", "Doe", "5559876", "jane@example.com"),
	}, res.Records)
}

func TestDecodeCountMismatchIsDiagnostic(t *testing.T) {
	data := pbbStream(
		"\x05",
		"John Smith",
		"5551234",
		"Jane",
		"Doe",
		"\x01\x01\x02",
		"5559876",
	)

	res := decodeBytes(t, data)

	assert.Equal(t, 5, res.TotalExpected)
	assert.Len(t, res.Records, 2)
	assert.True(t, res.CountMismatch())
}

func TestDecodeSeparatorLineIsConsumed(t *testing.T) {
	data := []byte{0, 0, 5, 0, 0, 1, 'A', 0, 0, 2, 'B'}

	res := decodeBytes(t, data)

	assert.Equal(t, 5, res.TotalExpected)
	require.Len(t, res.Records, 1)
	for _, f := range res.Records[0] {
		assert.NotContains(t, f.Value, "A", "separator line must not become a field")
	}
	assert.Equal(t, raw("\x05", "\x02B"), res.Records[0])
}

func TestDecodeSingleZeroDoesNotSplit(t *testing.T) {
	res := decodeBytes(t, []byte{'a', 'b', 0, 'c', 'd'})

	assert.Equal(t, TotalUnset, res.TotalExpected)
	assert.Equal(t, types.RecordSet{raw("abcd")}, res.Records)
	assert.True(t, res.CountMismatch())
}

func TestDecodeZeroRunSaturates(t *testing.T) {
	// Three zeros behave like two: the first non-zero byte after them is
	// taken as the header total and the preceding junk is discarded.
	res := decodeBytes(t, []byte{'a', 'b', 0, 0, 0, 'c', 'd'})

	assert.Equal(t, int('c'), res.TotalExpected)
	assert.Equal(t, types.RecordSet{raw("cd")}, res.Records)
}

func TestDecodeSingleByteLineIsNotMarkerForLowIndex(t *testing.T) {
	data := pbbStream("\x09", "x", "\x01", "y")

	res := decodeBytes(t, data)

	assert.Equal(t, types.RecordSet{raw("\x09", "x", "\x01", "y")}, res.Records)
}

func TestDecodeLongLineIsNotMarker(t *testing.T) {
	data := pbbStream("\x02", "Ann", "\x01\x01\x02\x03", "Bee")

	res := decodeBytes(t, data)

	assert.Equal(t, types.RecordSet{raw("\x02", "Ann", "\x01\x01\x02\x03", "Bee")}, res.Records)
}

func TestSingleByteMarkerAcceptedPastIndexTwo(t *testing.T) {
	d := NewDecoder()
	d.total = 3
	d.recordIndex = 3
	d.records = types.RecordSet{raw("earlier")}
	d.current = raw("Ann", "5551234")

	for _, b := range []byte{0, 0, 3, 0, 0, 'z'} {
		d.Feed(b)
	}
	res := d.Finish()

	assert.Equal(t, types.RecordSet{
		raw("earlier"),
		raw("Ann", "5551234"),
		raw("z"),
	}, res.Records)
	assert.Equal(t, 4, d.recordIndex)
}

func TestReclaimStopsAtContactDetails(t *testing.T) {
	tests := []struct {
		name     string
		current  types.Record
		wantDone types.Record
		wantNext types.Record
	}{
		{
			name:     "two trailing names move to next record",
			current:  raw("Ann", "5551234", "Bob", "Stone"),
			wantDone: raw("Ann", "5551234"),
			wantNext: raw("Bob", "Stone"),
		},
		{
			name:     "at most two fields are reclaimed",
			current:  raw("Ann", "a note", "Bob", "Stone"),
			wantDone: raw("Ann", "a note"),
			wantNext: raw("Bob", "Stone"),
		},
		{
			name:     "email stops reclaim",
			current:  raw("Ann", "ann@example.com"),
			wantDone: raw("Ann", "ann@example.com"),
		},
		{
			name:     "url stops reclaim after one name",
			current:  raw("Ann", "http://ann.example", "Bob"),
			wantDone: raw("Ann", "http://ann.example"),
			wantNext: raw("Bob"),
		},
		{
			name:     "phone with plus prefix stops reclaim",
			current:  raw("Ann", "+15551234"),
			wantDone: raw("Ann", "+15551234"),
		},
		{
			name:     "whole record reclaimed commits nothing",
			current:  raw("Bob"),
			wantNext: raw("Bob"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			d.total = 1
			d.current = tt.current.Clone()

			d.commitRecord()

			if tt.wantDone == nil {
				assert.Empty(t, d.records)
				assert.Equal(t, firstRecordIndex, d.recordIndex)
			} else {
				assert.Equal(t, types.RecordSet{tt.wantDone}, d.records)
				assert.Equal(t, firstRecordIndex+1, d.recordIndex)
			}
			if tt.wantNext == nil {
				assert.Empty(t, d.current)
			} else {
				assert.Equal(t, tt.wantNext, d.current)
			}
		})
	}
}

func TestStateTransitions(t *testing.T) {
	assert.Equal(t, stateZeroRunOne, stateScanning.onZero())
	assert.Equal(t, stateZeroRunTwo, stateZeroRunOne.onZero())
	assert.Equal(t, stateZeroRunTwo, stateZeroRunTwo.onZero())
	assert.Equal(t, "ZeroRunTwo", stateZeroRunTwo.String())
}

func TestDecodeEmptyStream(t *testing.T) {
	res := decodeBytes(t, nil)

	assert.Empty(t, res.Records)
	assert.Equal(t, TotalUnset, res.TotalExpected)
}

func TestDecodeCancelledKeepsCommittedRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := pbbStream("\x02", "John", "5551234")
	res, err := Decode(ctx, bytes.NewReader(data), int64(len(data)), nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Records)
}

func TestDecodeReadError(t *testing.T) {
	boom := errors.New("disk gone")

	_, err := Decode(context.Background(), iotest.ErrReader(boom), 0, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
