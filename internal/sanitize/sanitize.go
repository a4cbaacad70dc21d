// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize cleans raw PBB fields and classifies them as names,
// phones, emails, URLs, addresses, or notes.
//
// Classification is positional and heuristic. The first surviving field of
// a record is always the first name; the second is the last name when it
// looks like one. Remaining fields are matched against phone, email, URL,
// and address patterns in that order, falling back to a note. The input is
// expected to be raw decoder output; already tagged fields are re-cleaned
// and re-classified like any other value.
package sanitize

import (
	"context"
	"regexp"

	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

var (
	disallowed     = regexp.MustCompile(`[^A-Za-z0-9_.+ #@,:/-]`)
	leadingJunk    = regexp.MustCompile(`^[^A-Za-z0-9_+#]+`)
	trailingJunk   = regexp.MustCompile(`[^A-Za-z0-9_+#]+$`)
	namePattern    = regexp.MustCompile(`^[A-Za-z_. -]+$`)
	addressPattern = regexp.MustCompile(`^[0-9]+ [A-Za-z0-9_]+`)
)

// Clean strips characters outside the allowed set and trims leading and
// trailing characters that are neither word characters nor '+' or '#'.
func Clean(s string) string {
	s = disallowed.ReplaceAllString(s, "")
	s = leadingJunk.ReplaceAllString(s, "")
	return trailingJunk.ReplaceAllString(s, "")
}

// cycle hands out subtypes in order and repeats the last one once exhausted.
type cycle struct {
	types []string
	next  int
}

func (c *cycle) take() string {
	t := c.types[c.next]
	if c.next < len(c.types)-1 {
		c.next++
	}
	return t
}

// Record returns a new record holding the cleaned, classified fields of
// rec. Fields that clean to the empty string are dropped, and positions
// are counted among the surviving fields.
func Record(rec types.Record) types.Record {
	phones := cycle{types: types.PhoneTypes}
	emails := cycle{types: types.EmailTypes}

	out := make(types.Record, 0, len(rec))
	for _, f := range rec {
		v := Clean(f.Value)
		if v == "" {
			continue
		}
		out = append(out, classify(len(out), v, &phones, &emails))
	}
	return out
}

func classify(index int, v string, phones, emails *cycle) types.Field {
	switch {
	case index == 0:
		return types.Field{Kind: types.KindFirstName, Value: v}
	case index == 1 && namePattern.MatchString(v):
		return types.Field{Kind: types.KindLastName, Value: v}
	case types.IsPhone(v):
		return types.Field{Kind: types.KindPhone, Type: phones.take(), Value: v}
	case types.IsEmail(v):
		return types.Field{Kind: types.KindEmail, Type: emails.take(), Value: v}
	case types.IsURL(v):
		return types.Field{Kind: types.KindURL, Value: v}
	case addressPattern.MatchString(v):
		return types.Field{Kind: types.KindAddress, Value: v}
	default:
		return types.Field{Kind: types.KindNote, Value: v}
	}
}

// Records sanitizes every record of rs and returns the result as a new
// record set. Cancellation is checked before each record; on cancellation
// only the records already sanitized are returned, together with ctx.Err().
// Raw records are never passed through.
func Records(ctx context.Context, rs types.RecordSet, rep progress.Reporter) (types.RecordSet, error) {
	rep = progress.OrNop(rep)
	rep.Start("Sanitizing contacts", len(rs))
	defer rep.Done()

	out := make(types.RecordSet, 0, len(rs))
	for i, rec := range rs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, Record(rec))
		rep.Update(i + 1)
	}
	return out, nil
}
