// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package monosim

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/versacard/pkg/types"
)

func parseString(t *testing.T, input string, opts Options) types.RecordSet {
	t.Helper()
	rs, err := Parse(context.Background(), strings.NewReader(input), int64(len(input)), nil, opts)
	require.NoError(t, err)
	return rs
}

func first(v string) types.Field { return types.Field{Kind: types.KindFirstName, Value: v} }
func last(v string) types.Field  { return types.Field{Kind: types.KindLastName, Value: v} }
func cell(v string) types.Field  { return types.Field{Kind: types.KindPhone, Type: "CELL", Value: v} }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  types.RecordSet
	}{
		{
			name:  "name then phone commits one record",
			input: "Jane Doe\n5551234\n",
			want:  types.RecordSet{{first("Jane"), last("Doe"), cell("5551234")}},
		},
		{
			name:  "trailing name without phone is not committed",
			input: "Jane Doe\n5551234\nBob\n",
			want:  types.RecordSet{{first("Jane"), last("Doe"), cell("5551234")}},
		},
		{
			name:  "trailing name is committed with flush at EOF",
			input: "Jane Doe\n5551234\nBob\n",
			opts:  Options{FlushAtEOF: true},
			want: types.RecordSet{
				{first("Jane"), last("Doe"), cell("5551234")},
				{first("Bob")},
			},
		},
		{
			name:  "consecutive name lines accumulate in one record",
			input: "Jane Doe\nBob\n5551234\n",
			want:  types.RecordSet{{first("Jane"), last("Doe"), first("Bob"), cell("5551234")}},
		},
		{
			name:  "multi-token last name joined with single spaces",
			input: "  Ana   de   la Cruz  \n+345551234\n",
			want:  types.RecordSet{{first("Ana"), last("de la Cruz"), cell("+345551234")}},
		},
		{
			name:  "phone without name commits a phone-only record",
			input: "5551234\n\n#31\n",
			want:  types.RecordSet{{cell("5551234")}, {cell("#31")}},
		},
		{
			name:  "twelve digits is not a phone",
			input: "123456789012\n5551234\n",
			want:  types.RecordSet{{first("123456789012"), cell("5551234")}},
		},
		{
			name:  "blank and whitespace lines skipped, CRLF tolerated",
			input: "\r\n   \r\nJane\r\n5551234\r\n",
			want:  types.RecordSet{{first("Jane"), cell("5551234")}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseString(t, tt.input, tt.opts))
		})
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rs, err := Parse(ctx, strings.NewReader("Jane\n5551234\n"), 0, nil, Options{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rs)
}

func TestParseLineTooLong(t *testing.T) {
	input := strings.Repeat("x", maxLineSize+1)

	_, err := Parse(context.Background(), strings.NewReader(input), 0, nil, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading monosim stream")
}
