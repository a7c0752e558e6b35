// Package textutil holds the text normalization shared by the schema loader
// and the reference tables.
package textutil

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NewReader decodes r as UTF-8, dropping a leading byte order mark. Files
// exported from spreadsheet tools often carry one, which would otherwise end
// up glued to the first header name.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// Strip trims leading and trailing whitespace.
func Strip(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeKey is the form used to compare disease names: NFKC, trimmed.
func NormalizeKey(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// NormalizeSymptom maps a symptom as typed by a user ("Skin Rash") and as
// stored in the schema header ("skin_rash") to the same key.
func NormalizeSymptom(s string) string {
	key := strings.ToLower(NormalizeKey(s))
	return strings.ReplaceAll(key, " ", "_")
}
