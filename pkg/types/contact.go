// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared contact data model for the versacard
// pipeline: tagged fields, records, and record sets, plus the per-stage
// configuration structs.
package types

import "strings"

// FieldKind classifies the value held by a Field.
type FieldKind string

const (
	KindFirstName FieldKind = "first_name"
	KindLastName  FieldKind = "last_name"
	KindPhone     FieldKind = "phone"
	KindEmail     FieldKind = "email"
	KindURL       FieldKind = "url"
	KindAddress   FieldKind = "address"
	KindNote      FieldKind = "note"

	// KindRaw marks an untagged value. The PBB decoder produces only raw
	// fields; lines read back from vCard files are kept raw and verbatim.
	KindRaw FieldKind = "raw"
)

// PhoneTypes is the subtype cycle assigned to successive phones in a record.
// The last entry repeats once the cycle is exhausted.
var PhoneTypes = []string{"CELL", "HOME", "WORK", "OTHER"}

// EmailTypes is the subtype cycle assigned to successive emails in a record.
var EmailTypes = []string{"HOME", "WORK", "OTHER"}

// Field is a single contact value with its classification.
type Field struct {
	// Kind is the classification tag.
	Kind FieldKind `json:"kind" yaml:"kind"`

	// Type is the vCard TYPE parameter for phones and emails (e.g. "CELL").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Value is the field content without any vCard property prefix.
	Value string `json:"value" yaml:"value"`
}

// IsName reports whether the field carries a first or last name.
func (f Field) IsName() bool {
	return f.Kind == KindFirstName || f.Kind == KindLastName
}

// Line renders the field as a vCard content line. Raw values are returned
// unchanged. Name fields have no standalone line; the generator renders
// them as a name block.
func (f Field) Line() string {
	switch f.Kind {
	case KindPhone:
		return "TEL;TYPE=" + f.Type + ":" + f.Value
	case KindEmail:
		return "EMAIL;TYPE=" + f.Type + ":" + f.Value
	case KindURL:
		return "URL:" + f.Value
	case KindAddress:
		return "ADR:" + f.Value
	case KindNote:
		return "NOTE:" + f.Value
	default:
		return f.Value
	}
}

// Record is an ordered list of fields describing one contact. Order matters:
// the generator places the name block relative to the name fields.
type Record []Field

// Find returns the index of the first field with the given kind, or -1.
func (r Record) Find(kind FieldKind) int {
	for i, f := range r {
		if f.Kind == kind {
			return i
		}
	}
	return -1
}

// FindLast returns the index of the last field of the given kind, or -1.
func (r Record) FindLast(kind FieldKind) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Kind == kind {
			return i
		}
	}
	return -1
}

// HasName reports whether any field in the record is a name field.
func (r Record) HasName() bool {
	for _, f := range r {
		if f.IsName() {
			return true
		}
	}
	return false
}

// Clone returns a copy of the record that shares no backing storage.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// RecordSet is the ordered list of records produced by one import.
type RecordSet []Record

// Clone returns a deep copy of the record set.
func (rs RecordSet) Clone() RecordSet {
	if rs == nil {
		return nil
	}
	out := make(RecordSet, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// NameFields builds the first/last name fields for a whitespace-separated
// full name: the first token is the first name and the remaining tokens,
// joined by a single space, the last name. Blank input yields no fields.
func NameFields(full string) []Field {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return nil
	}
	fields := []Field{{Kind: KindFirstName, Value: tokens[0]}}
	if len(tokens) > 1 {
		fields = append(fields, Field{Kind: KindLastName, Value: strings.Join(tokens[1:], " ")})
	}
	return fields
}
