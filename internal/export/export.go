// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes an imported record set as YAML, JSON, or a SQLite
// contact store, keeping field order and classification tags so the set
// can be inspected or reloaded outside vCard text.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/versacard/pkg/types"
)

// Contact is the export form of one record.
type Contact struct {
	Index     int           `json:"index" yaml:"index"`
	FirstName string        `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string        `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Fields    []types.Field `json:"fields" yaml:"fields"`
}

// Contacts converts rs to its export form. Names are taken from the first
// first-name and last-name fields; Fields keeps every field in order.
func Contacts(rs types.RecordSet) []Contact {
	out := make([]Contact, len(rs))
	for i, rec := range rs {
		out[i] = Contact{Index: i, Fields: []types.Field(rec)}
		if out[i].Fields == nil {
			out[i].Fields = []types.Field{}
		}
		if j := rec.Find(types.KindFirstName); j >= 0 {
			out[i].FirstName = rec[j].Value
		}
		if j := rec.Find(types.KindLastName); j >= 0 {
			out[i].LastName = rec[j].Value
		}
	}
	return out
}

// WriteYAML writes rs to w as a YAML list of contacts.
func WriteYAML(w io.Writer, rs types.RecordSet) error {
	data, err := yaml.Marshal(Contacts(rs))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON writes rs to w as an indented JSON array of contacts.
func WriteJSON(w io.Writer, rs types.RecordSet) error {
	data, err := json.MarshalIndent(Contacts(rs), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Write encodes rs to w in the given text format.
func Write(w io.Writer, format types.ExportFormat, rs types.RecordSet) error {
	switch format {
	case types.ExportYAML:
		return WriteYAML(w, rs)
	case types.ExportJSON:
		return WriteJSON(w, rs)
	default:
		return fmt.Errorf("format %q is not a text format", format)
	}
}

// WriteFile encodes rs and writes it to path through a temporary file in
// the same directory, so a failed write leaves any existing file intact.
func WriteFile(path string, format types.ExportFormat, rs types.RecordSet) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, rs); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(buf.Bytes())
	chmodErr := tmp.Chmod(0o644)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, chmodErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}

// ReadYAML parses contacts written by WriteYAML back into a record set.
func ReadYAML(r io.Reader) (types.RecordSet, error) {
	var contacts []Contact
	if err := yaml.NewDecoder(r).Decode(&contacts); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return fromContacts(contacts), nil
}

// ReadJSON parses contacts written by WriteJSON back into a record set.
func ReadJSON(r io.Reader) (types.RecordSet, error) {
	var contacts []Contact
	if err := json.NewDecoder(r).Decode(&contacts); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return fromContacts(contacts), nil
}

func fromContacts(contacts []Contact) types.RecordSet {
	rs := make(types.RecordSet, len(contacts))
	for i, c := range contacts {
		rs[i] = types.Record(c.Fields)
	}
	return rs
}

// ParseFormat validates an export format name.
func ParseFormat(s string) (types.ExportFormat, error) {
	switch f := types.ExportFormat(strings.ToLower(s)); f {
	case types.ExportYAML, types.ExportJSON, types.ExportSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q: use yaml, json, or sqlite", s)
	}
}
