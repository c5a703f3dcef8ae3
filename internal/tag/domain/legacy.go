package domain

// Encoding names a tag value encoding written by some client generation.
type Encoding int

const (
	// Canonical is the encoding this client writes.
	Canonical Encoding = iota
	// LegacyJS is the upper-case hex form of the web and early Java clients.
	LegacyJS
	// LegacyKMP is the unencoded form of the multiplatform client.
	LegacyKMP
	// LegacyIOS is the RFC 3986 form of the iOS client, which keeps unreserved characters.
	LegacyIOS
)

// Encodings lists every encoding in the order search groups are built.
var Encodings = []Encoding{Canonical, LegacyJS, LegacyKMP, LegacyIOS}

// LegacySubstitution is one row of the legacy table: how a single character is written by
// each encoding.
type LegacySubstitution struct {
	Char  string
	Forms map[Encoding]string
}

// LegacyTable is the closed set of characters whose encoding differs between clients. A
// new client generation adds a column; decoding does not change because every form
// percent-decodes to Char.
var LegacyTable = []LegacySubstitution{
	{Char: " ", Forms: map[Encoding]string{Canonical: "%20", LegacyJS: "%20", LegacyKMP: "%20", LegacyIOS: "%20"}},
	{Char: "*", Forms: map[Encoding]string{Canonical: "%2a", LegacyJS: "%2A", LegacyKMP: "*", LegacyIOS: "%2a"}},
	{Char: "-", Forms: map[Encoding]string{Canonical: "%2d", LegacyJS: "%2D", LegacyKMP: "-", LegacyIOS: "-"}},
	{Char: ".", Forms: map[Encoding]string{Canonical: "%2e", LegacyJS: "%2E", LegacyKMP: ".", LegacyIOS: "."}},
	{Char: "_", Forms: map[Encoding]string{Canonical: "%5f", LegacyJS: "%5F", LegacyKMP: "_", LegacyIOS: "_"}},
	{Char: "~", Forms: map[Encoding]string{Canonical: "%7e", LegacyJS: "%7E", LegacyKMP: "~", LegacyIOS: "~"}},
}

// CanonicalForm returns the canonical form of char, or "" when char is not in the table.
func CanonicalForm(char string) string {
	for _, row := range LegacyTable {
		if row.Char == char {
			return row.Forms[Canonical]
		}
	}
	return ""
}

// Translate returns the form encoding uses for a canonical escape, or "" when canonical
// is not in the table.
func Translate(canonical string, encoding Encoding) string {
	for _, row := range LegacyTable {
		if row.Forms[Canonical] == canonical {
			return row.Forms[encoding]
		}
	}
	return ""
}
