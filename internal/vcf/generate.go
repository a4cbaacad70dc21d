// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vcf

import (
	"context"
	"io"
	"strings"

	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

const (
	beginCard = "BEGIN:VCARD"
	version   = "VERSION:3.0"
	endCard   = "END:VCARD"
)

// WriteRecord writes one card for rec to w.
//
// The name block is written once per card: before the first non-name field
// that follows a name field, or at the end of the card when no such field
// exists. A record without name fields gets an empty name block before its
// first field. The first first-name and first last-name fields supply the
// names wherever they occur in the record.
func WriteRecord(w io.StringWriter, rec types.Record) {
	firstName, lastName := names(rec)
	hasName := rec.HasName()

	w.WriteString(beginCard + "\n")
	w.WriteString(version + "\n")

	written := false
	seenName := false
	for _, f := range rec {
		if f.IsName() {
			seenName = true
			continue
		}
		if !written && (seenName || !hasName) {
			writeNameBlock(w, firstName, lastName)
			written = true
		}
		w.WriteString(f.Line() + "\n")
	}
	if !written {
		writeNameBlock(w, firstName, lastName)
	}
	w.WriteString(endCard + "\n")
}

func names(rec types.Record) (first, last string) {
	if i := rec.Find(types.KindFirstName); i >= 0 {
		first = rec[i].Value
	}
	if i := rec.Find(types.KindLastName); i >= 0 {
		last = rec[i].Value
	}
	return first, last
}

func writeNameBlock(w io.StringWriter, first, last string) {
	w.WriteString("n:" + last + ";" + first + ";;;\n")
	w.WriteString("FN:" + first + " " + last + "\n")
}

// Generate renders rs as vCard text. Cancellation is checked before each
// record; a cancelled run returns the cards rendered so far together with
// ctx.Err().
func Generate(ctx context.Context, rs types.RecordSet, rep progress.Reporter) (string, error) {
	rep = progress.OrNop(rep)
	rep.Start("Generating VCF", len(rs))
	defer rep.Done()

	var b strings.Builder
	for i, rec := range rs {
		if err := ctx.Err(); err != nil {
			return b.String(), err
		}
		WriteRecord(&b, rec)
		rep.Update(i + 1)
	}
	return b.String(), nil
}
