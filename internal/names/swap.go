// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names exchanges first and last names across a record set.
package names

import "github.com/pdiddy/versacard/pkg/types"

// Swap exchanges the values of the first-name and last-name fields of every
// record that has both, leaving tags and field order unchanged. When a tag
// occurs more than once the last occurrence is used. Swap mutates rs in
// place, returns the number of records changed, and is its own inverse.
func Swap(rs types.RecordSet) int {
	swapped := 0
	for _, rec := range rs {
		if SwapRecord(rec) {
			swapped++
		}
	}
	return swapped
}

// SwapRecord swaps the names of a single record and reports whether both
// name fields were present.
func SwapRecord(rec types.Record) bool {
	fi := rec.FindLast(types.KindFirstName)
	li := rec.FindLast(types.KindLastName)
	if fi < 0 || li < 0 {
		return false
	}
	rec[fi].Value, rec[li].Value = rec[li].Value, rec[fi].Value
	return true
}
