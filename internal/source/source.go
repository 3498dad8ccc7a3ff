// Package source holds the typed accessors for the four record origins:
// HubSpot tickets, LiveChat conversations, the Firestore mirror, and flat CSV
// exports. Every connector hands back untyped rows in its origin's own column
// vocabulary; the normalizer owns all cross-source field mapping.
package source

import (
	"errors"
	"strings"
)

// Row is one raw record: origin column name -> string value. Lookups are
// case-insensitive and tolerate a UTF-8 BOM on the first header.
type Row map[string]string

// ErrUnavailable marks a connector failure (network, auth, quota). The
// resolver treats it as "try the next tier".
var ErrUnavailable = errors.New("source unavailable")

func normalizeKey(k string) string {
	k = strings.ReplaceAll(k, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(k))
}

// Field returns the first non-empty value among the candidate column names.
func (r Row) Field(names ...string) string {
	v, _ := r.FieldWhich(names...)
	return v
}

// FieldWhich additionally reports which candidate matched, for callers that
// need to branch on the source vocabulary (e.g. timezone-bearing headers).
func (r Row) FieldWhich(names ...string) (string, string) {
	for _, name := range names {
		want := normalizeKey(name)
		for k, v := range r {
			if normalizeKey(k) == want && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), name
			}
		}
	}
	return "", ""
}

// Set assigns a value, used by connectors assembling rows programmatically.
func (r Row) Set(key, value string) { r[key] = value }
