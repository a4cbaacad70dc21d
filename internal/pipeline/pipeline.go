// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates contact import, normalization, and vCard
// export. A Pipeline owns the record set: every import clears it and fills
// it from one input, and name swaps and regeneration operate on it in place
// without re-importing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/versacard/internal/monosim"
	"github.com/pdiddy/versacard/internal/names"
	"github.com/pdiddy/versacard/internal/pbb"
	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/internal/sanitize"
	"github.com/pdiddy/versacard/internal/vcf"
	"github.com/pdiddy/versacard/pkg/types"
)

var (
	// ErrInputNotFound is returned when the input path does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrInputNotReadable is returned when the input exists but cannot be
	// opened or read.
	ErrInputNotReadable = errors.New("input not readable")

	// ErrOutputNotWritable is returned when the vCard file cannot be written.
	ErrOutputNotWritable = errors.New("output not writable")

	// ErrNoRecords is returned when there is nothing to save or swap.
	ErrNoRecords = errors.New("there are no records to save")
)

// Kind identifies an input format.
type Kind int

const (
	KindUnknown Kind = iota
	KindPBB
	KindMonosim
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindPBB:
		return "pbb"
	case KindMonosim:
		return "monosim"
	case KindDirectory:
		return "vcf-directory"
	default:
		return "unknown"
	}
}

// DetectKind selects the input format: directories are merged as vCard
// folders, files are dispatched on their suffix (case-insensitive).
func DetectKind(path string, isDir bool) Kind {
	if isDir {
		return KindDirectory
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "pbb":
		return KindPBB
	case "monosim":
		return KindMonosim
	default:
		return KindUnknown
	}
}

// NormalizePath converts a file: URL to a local path and strips the
// trailing whitespace that drag-and-drop leaves on such URLs. Plain paths
// are returned unchanged.
func NormalizePath(input string) string {
	if !strings.HasPrefix(input, "file:") {
		return input
	}
	trimmed := strings.TrimRightFunc(input, unicode.IsSpace)
	u, err := url.Parse(trimmed)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(trimmed, "file:")
	}
	return filepath.FromSlash(u.Path)
}

// DefaultOutputName returns the suggested output path inside dir:
// contacts_<milliseconds since epoch>.vcf.
func DefaultOutputName(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("contacts_%d.vcf", now.UnixMilli()))
}

// Summary describes the outcome of one import.
type Summary struct {
	// Input is the normalized input path.
	Input string

	// Kind is the detected input format.
	Kind Kind

	// Records is the number of records in the record set.
	Records int

	// Successful counts records committed by a directory merge.
	Successful int

	// Skipped lists merge files that could not be read.
	Skipped []string

	// TotalExpected is the total declared in a PBB header, or
	// pbb.TotalUnset.
	TotalExpected int

	// CountMismatch is set when a PBB header total differs from the number
	// of decoded records. It is a diagnostic, not a failure.
	CountMismatch bool

	// Cancelled is set when the import was interrupted. The record set then
	// holds the records committed before cancellation.
	Cancelled bool
}

// Count returns the record count to display: the merge success count for
// directories and the record set size otherwise.
func (s Summary) Count() int {
	if s.Kind == KindDirectory {
		return s.Successful
	}
	return s.Records
}

// Options configures a Pipeline.
type Options struct {
	// Progress receives stage progress. Nil discards it.
	Progress progress.Reporter

	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger

	// Monosim controls monosim parsing.
	Monosim monosim.Options
}

// Pipeline holds the record set and its generated vCard text.
type Pipeline struct {
	rep     progress.Reporter
	log     *zap.Logger
	monosim monosim.Options

	input         string
	records       types.RecordSet
	text          string
	totalExpected int
}

// New creates an empty pipeline.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		rep:           progress.OrNop(opts.Progress),
		log:           log,
		monosim:       opts.Monosim,
		totalExpected: pbb.TotalUnset,
	}
}

// Reset clears the input, record set, generated text, and counters.
func (p *Pipeline) Reset() {
	p.input = ""
	p.records = nil
	p.text = ""
	p.totalExpected = pbb.TotalUnset
}

// Records returns the current record set. The caller must not retain it
// across pipeline calls.
func (p *Pipeline) Records() types.RecordSet {
	return p.records
}

// Text returns the most recently generated vCard text.
func (p *Pipeline) Text() string {
	return p.text
}

// TotalExpected returns the total declared by the last PBB header.
func (p *Pipeline) TotalExpected() int {
	return p.totalExpected
}

// Import clears the record set, imports input, and generates vCard text.
//
// A cancelled import is not an error: the summary is marked Cancelled and
// the record set keeps what was committed. Unrecognized file suffixes
// import nothing. A failed read leaves the record set empty.
func (p *Pipeline) Import(ctx context.Context, input string) (Summary, error) {
	p.Reset()
	path := NormalizePath(input)
	p.input = path

	sum := Summary{Input: path, TotalExpected: pbb.TotalUnset}
	if path == "" {
		return sum, fmt.Errorf("%w: no input selected", ErrInputNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sum, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return sum, fmt.Errorf("%w: %s: %v", ErrInputNotReadable, path, err)
	}

	sum.Kind = DetectKind(path, info.IsDir())
	p.log.Debug("importing contacts", zap.String("input", path), zap.Stringer("kind", sum.Kind))

	switch sum.Kind {
	case KindDirectory:
		err = p.importDirectory(ctx, path, &sum)
	case KindPBB, KindMonosim:
		err = p.importFile(ctx, path, info.Size(), &sum)
	default:
		p.log.Info("unrecognized input suffix, nothing imported", zap.String("input", path))
	}

	if err != nil && !isCancel(err) {
		p.records = nil
		return sum, err
	}
	sum.Cancelled = err != nil

	genCtx := ctx
	if sum.Cancelled {
		genCtx = context.WithoutCancel(ctx)
	}
	if err := p.Generate(genCtx); err != nil {
		if !isCancel(err) {
			return sum, err
		}
		sum.Cancelled = true
	}

	sum.Records = len(p.records)
	p.log.Info("import finished",
		zap.String("input", path),
		zap.Int("records", sum.Records),
		zap.Bool("cancelled", sum.Cancelled))
	return sum, nil
}

func (p *Pipeline) importDirectory(ctx context.Context, dir string, sum *Summary) error {
	res, err := vcf.Merge(ctx, dir, p.rep, p.log)
	p.records = res.Records
	sum.Successful = res.Successful
	sum.Skipped = res.Skipped
	if err != nil && !isCancel(err) {
		return fmt.Errorf("%w: %v", ErrInputNotReadable, err)
	}
	return err
}

func (p *Pipeline) importFile(ctx context.Context, path string, size int64, sum *Summary) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputNotReadable, path, err)
	}
	defer f.Close()

	switch sum.Kind {
	case KindMonosim:
		rs, err := monosim.Parse(ctx, f, size, p.rep, p.monosim)
		p.records = rs
		return readErr(err)

	case KindPBB:
		res, err := pbb.Decode(ctx, f, size, p.rep)
		if err != nil && !isCancel(err) {
			return readErr(err)
		}
		p.totalExpected = res.TotalExpected
		sum.TotalExpected = res.TotalExpected
		if err == nil && res.CountMismatch() {
			sum.CountMismatch = true
			p.log.Warn("pbb declared total does not match records decoded",
				zap.Int("declared", res.TotalExpected),
				zap.Int("decoded", len(res.Records)))
		}

		// Records committed before a cancellation are still sanitized so
		// the partial set is tagged like a complete one.
		sanitizeCtx := ctx
		if err != nil {
			sanitizeCtx = context.WithoutCancel(ctx)
		}
		clean, serr := sanitize.Records(sanitizeCtx, res.Records, p.rep)
		p.records = clean
		if err != nil {
			return err
		}
		return serr
	}
	return nil
}

// Generate renders the record set to vCard text.
func (p *Pipeline) Generate(ctx context.Context) error {
	text, err := vcf.Generate(ctx, p.records, p.rep)
	p.text = text
	return err
}

// SwapNames exchanges first and last names in every record and regenerates
// the text. It returns the number of records changed.
func (p *Pipeline) SwapNames(ctx context.Context) (int, error) {
	if err := p.ensureText(ctx); err != nil {
		return 0, err
	}
	n := names.Swap(p.records)
	p.log.Debug("swapped names", zap.Int("records", n))
	return n, p.Generate(ctx)
}

// Save writes the generated text to path, replacing any existing file. The
// write goes through a temporary file so a failure never leaves a partial
// file behind.
func (p *Pipeline) Save(ctx context.Context, path string) error {
	if err := p.ensureText(ctx); err != nil {
		return err
	}
	if err := writeAtomic(path, []byte(p.text)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputNotWritable, path, err)
	}
	p.log.Info("saved vcard file", zap.String("path", path), zap.Int("records", len(p.records)))
	return nil
}

// ensureText makes sure there is generated text to act on: it regenerates
// from the record set, or re-imports the last input when the set is empty.
func (p *Pipeline) ensureText(ctx context.Context) error {
	if p.text != "" {
		return nil
	}
	if len(p.records) > 0 {
		return p.Generate(ctx)
	}
	if p.input != "" {
		if _, err := p.Import(ctx, p.input); err != nil {
			return err
		}
	}
	if len(p.records) == 0 {
		return ErrNoRecords
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".versacard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	chmodErr := tmp.Chmod(0o644)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, chmodErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func readErr(err error) error {
	if err == nil || isCancel(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInputNotReadable, err)
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
