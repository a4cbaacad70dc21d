// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vcf

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

const maxLineSize = 1 << 20

// MergeResult holds the outcome of merging a directory of vCard files.
type MergeResult struct {
	// Records holds the merged records in file-name order.
	Records types.RecordSet

	// Files is the number of *.vcf files found.
	Files int

	// Successful counts the records committed across all files.
	Successful int

	// Skipped lists the names of files that could not be read.
	Skipped []string
}

// HasSkipped reports whether any file was skipped.
func (r MergeResult) HasSkipped() bool {
	return len(r.Skipped) > 0
}

// Merge reads every *.vcf file directly inside dir. Files that cannot be
// opened or read are skipped and listed in the result; records from a
// skipped file are never added. Cancellation is checked before each file
// and after each line; a cancelled merge returns what was committed
// together with ctx.Err().
func Merge(ctx context.Context, dir string, rep progress.Reporter, log *zap.Logger) (MergeResult, error) {
	rep = progress.OrNop(rep)
	if log == nil {
		log = zap.NewNop()
	}

	files, err := listVCF(dir)
	if err != nil {
		return MergeResult{}, err
	}

	result := MergeResult{Files: len(files)}
	rep.Start("Importing contacts", len(files))
	defer rep.Done()

	for i, name := range files {
		rep.Update(i)
		if err := ctx.Err(); err != nil {
			return result, err
		}

		recs, err := readFile(ctx, filepath.Join(dir, name))
		if err != nil && ctx.Err() == nil {
			log.Warn("skipping unreadable vcf file", zap.String("file", name), zap.Error(err))
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Records = append(result.Records, recs...)
		result.Successful += len(recs)
		if err != nil {
			return result, err
		}
		log.Debug("merged vcf file", zap.String("file", name), zap.Int("records", len(recs)))
	}
	return result, nil
}

// listVCF returns the sorted names of regular *.vcf entries in dir. The
// suffix match ignores case.
func listVCF(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".vcf") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// readFile parses one vCard file. On cancellation it returns the records
// completed so far together with ctx.Err(); on a read error it returns no
// records.
func readFile(ctx context.Context, path string) (types.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCards(ctx, f)
}

// ReadCards parses vCard text from r into records. BEGIN, VERSION, and n
// lines are skipped, END closes the open record, FN becomes first/last name
// fields, and every other line is kept verbatim. A record still open at end
// of input is committed.
func ReadCards(ctx context.Context, r io.Reader) (types.RecordSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records types.RecordSet
		open    types.Record
	)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "",
			hasPrefixFold(line, "BEGIN:"),
			hasPrefixFold(line, "VERSION:"),
			hasPrefixFold(line, "n:"):
			continue
		case hasPrefixFold(line, "END:"):
			if len(open) > 0 {
				records = append(records, open)
				open = nil
			}
		case hasPrefixFold(line, "FN:"):
			open = append(open, types.NameFields(line[len("FN:"):])...)
		default:
			open = append(open, types.Field{Kind: types.KindRaw, Value: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading vcard lines: %w", err)
	}
	if len(open) > 0 {
		records = append(records, open)
	}
	return records, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
