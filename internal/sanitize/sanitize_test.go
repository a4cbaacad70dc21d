// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sanitize

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/versacard/pkg/types"
)

func raw(values ...string) types.Record {
	rec := make(types.Record, len(values))
	for i, v := range values {
		rec[i] = types.Field{Kind: types.KindRaw, Value: v}
	}
	return rec
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"J@hn!! Smith##", "J@hn Smith##"},
		{"\x02John", "John"},
		{"  --Jane Doe..  ", "Jane Doe"},
		{"+1 (555) 123", "+1 555 123"},
		{"#31#", "#31#"},
		{"caf\xc3\xa9", "caf"},
		{"\x01\x01\x02", ""},
		{"...", ""},
		{"http://example.com/", "http://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestRecordClassification(t *testing.T) {
	got := Record(raw(
		"\x02",
		"John",
		"Smith",
		"5551234",
		"john@example.com",
		"http://john.example",
		"12 Main Street",
		"met at conference",
	))

	want := types.Record{
		{Kind: types.KindFirstName, Value: "John"},
		{Kind: types.KindLastName, Value: "Smith"},
		{Kind: types.KindPhone, Type: "CELL", Value: "5551234"},
		{Kind: types.KindEmail, Type: "HOME", Value: "john@example.com"},
		{Kind: types.KindURL, Value: "http://john.example"},
		{Kind: types.KindAddress, Value: "12 Main Street"},
		{Kind: types.KindNote, Value: "met at conference"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Record() mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstFieldIsAlwaysFirstName(t *testing.T) {
	for _, v := range []string{"5551234", "a@b.c", "http://x.y", "12 Main St"} {
		got := Record(raw(v))
		require.Len(t, got, 1)
		assert.Equal(t, types.KindFirstName, got[0].Kind, v)
	}
}

func TestSecondFieldNeedsNameShape(t *testing.T) {
	got := Record(raw("John", "5551234"))

	require.Len(t, got, 2)
	assert.Equal(t, types.KindPhone, got[1].Kind)

	got = Record(raw("John", "van der Berg"))
	assert.Equal(t, types.KindLastName, got[1].Kind)

	// Third field never becomes a last name.
	got = Record(raw("John", "5551234", "Smith"))
	assert.Equal(t, types.KindNote, got[2].Kind)
}

func TestSubtypeCyclesSaturate(t *testing.T) {
	got := Record(raw("Ann", "111", "222", "333", "444", "555", "a@x", "b@x", "c@x", "d@x"))

	var phones, emails []string
	for _, f := range got {
		switch f.Kind {
		case types.KindPhone:
			phones = append(phones, f.Type)
		case types.KindEmail:
			emails = append(emails, f.Type)
		}
	}
	assert.Equal(t, []string{"CELL", "HOME", "WORK", "OTHER", "OTHER"}, phones)
	assert.Equal(t, []string{"HOME", "WORK", "OTHER", "OTHER"}, emails)
}

func TestSubtypeCyclesResetPerRecord(t *testing.T) {
	rs, err := Records(context.Background(), types.RecordSet{
		raw("Ann", "111", "222"),
		raw("Bob", "333"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "HOME", rs[0][2].Type)
	assert.Equal(t, "CELL", rs[1][1].Type)
}

func TestEmptyFieldsShiftPositions(t *testing.T) {
	// Adjacent empty fields are dropped and positions are counted among
	// survivors, so "Smith" lands at index 1 and is a last name.
	got := Record(raw("!!", "??", "John", "\x01", "  ", "Smith", "5551234"))

	want := types.Record{
		{Kind: types.KindFirstName, Value: "John"},
		{Kind: types.KindLastName, Value: "Smith"},
		{Kind: types.KindPhone, Type: "CELL", Value: "5551234"},
	}
	assert.Equal(t, want, got)
}

func TestRecordAllEmpty(t *testing.T) {
	assert.Empty(t, Record(raw("\x01", "!!")))
}

func TestRecordsDoesNotMutateInput(t *testing.T) {
	in := types.RecordSet{raw("\x02John", "5551234")}
	before := in.Clone()

	_, err := Records(context.Background(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, before, in)
}

func TestRecordsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := types.RecordSet{raw("John"), raw("Jane")}
	out, err := Records(ctx, in, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

// cancelAfter cancels its context once n records have been reported.
type cancelAfter struct {
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) Start(string, int) {}
func (c *cancelAfter) Done()             {}
func (c *cancelAfter) Update(v int) {
	if v >= c.n {
		c.cancel()
	}
}

func TestRecordsCancelledMidwayKeepsSanitizedPrefix(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := types.RecordSet{raw("John!!", "5551234"), raw("Jane"), raw("Bob")}
	out, err := Records(ctx, in, &cancelAfter{n: 1, cancel: cancel})

	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, out, 1)
	assert.Equal(t, types.Record{
		{Kind: types.KindFirstName, Value: "John"},
		{Kind: types.KindPhone, Type: "CELL", Value: "5551234"},
	}, out[0])
}
