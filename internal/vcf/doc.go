// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vcf reads and writes vCard 3.0 text for the contact pipeline.
//
// Generate renders a record set as cards. Each card carries one name block,
// a structured name line and a formatted name line, followed by the
// record's other fields as content lines:
//
//	BEGIN:VCARD
//	VERSION:3.0
//	n:Smith;John;;;
//	FN:John Smith
//	TEL;TYPE=CELL:5551234
//	END:VCARD
//
// Merge reads every *.vcf file in a directory back into records. FN lines
// become first/last name fields; other content lines are kept verbatim as
// raw fields, so a merge followed by Generate reproduces the cards.
package vcf
