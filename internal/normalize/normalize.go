// Package normalize converts heterogeneous raw rows into the canonical Ticket
// and Chat records. All cross-source column mapping, timezone conversion and
// derivation logic lives here; downstream code never branches on origin.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/support-insights/backend/internal/models"
)

// Source offsets are fixed by contract with the upstream exports, never
// inferred from the data.
var (
	zoneCDT = time.FixedZone("CDT", -5*60*60)
	zoneEDT = time.FixedZone("EDT", -4*60*60)
	zoneUTC = time.UTC
	zoneADT = time.FixedZone("ADT", -3*60*60)
)

// Report carries the per-batch normalization diagnostics.
type Report struct {
	Input             int `json:"input"`
	Kept              int `json:"kept"`
	DroppedManagers   int `json:"dropped_managers"`
	DroppedUnmapped   int `json:"dropped_unmapped"`
	DroppedSpam       int `json:"dropped_spam"`
	DroppedInvalid    int `json:"dropped_invalid"`
	Duplicates        int `json:"duplicates"`
	NulledDerivations int `json:"nulled_derivations"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
}

// parseTime distinguishes absent values from unparseable ones. Naive layouts
// are interpreted in loc; zone-carrying layouts keep their own offset.
func parseTime(raw string, loc *time.Location) models.TimeField {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.MissingTime()
	}
	// HubSpot exports sometimes append the zone abbreviation as text.
	for _, suffix := range []string{" CDT", " CST", " EDT", " EST", " UTC"} {
		s = strings.TrimSuffix(s, suffix)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return models.OKTime(ts)
		}
	}
	// Unix epoch millis, seen in HubSpot API property values.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 1_000_000_000_000 {
		return models.OKTime(time.UnixMilli(ms).In(loc))
	}
	return models.InvalidTime()
}

func toLocal(tf models.TimeField, target *time.Location) models.TimeField {
	if !tf.Present() {
		return tf
	}
	return models.OKTime(tf.Time.In(target))
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// responseBucket labels a response time in hours for the breakdown widgets.
func responseBucket(hours float64) string {
	switch {
	case hours < 1:
		return "< 1 hour"
	case hours < 4:
		return "1-4 hours"
	case hours < 24:
		return "4-24 hours"
	case hours < 72:
		return "1-3 days"
	default:
		return "3+ days"
	}
}
