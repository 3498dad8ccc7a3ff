package normalize

import (
	"strconv"
	"time"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/source"
)

// Snapshot columns reuse the export vocabulary so snapshots round-trip through
// the same alias tables as live pulls. Derived columns are included for human
// inspection only; every read recomputes them.

var TicketSnapshotHeaders = []string{
	"ticket id", "create date", "first agent email response date",
	"ticket owner", "pipeline", "priority", "subject",
	"created_at_utc", "response_time_hours", "weekend",
}

var ChatSnapshotHeaders = []string{
	"chat id", "chat creation date UTC", "operator 1 nick", "operator 2 nick",
	"rate", "chat duration in seconds", "first response time", "tag 1",
	"visitor country code", "created_at_utc",
}

func timeValue(tf models.TimeField, layout string) string {
	if !tf.Present() {
		return ""
	}
	return tf.Time.Format(layout)
}

// TicketSnapshotRow flattens a normalized ticket back into a source row.
func TicketSnapshotRow(t models.Ticket) source.Row {
	row := source.Row{
		"ticket id":                       t.ID,
		"create date":                     timeValue(t.CreatedAt, "2006-01-02 15:04:05"),
		"first agent email response date": timeValue(t.FirstResponseAt, "2006-01-02 15:04:05"),
		"ticket owner":                    t.Owner,
		"pipeline":                        t.Pipeline,
		"priority":                        t.Priority,
		"subject":                         t.Subject,
	}
	if t.CreatedAt.Present() {
		row["created_at_utc"] = t.CreatedAt.Time.UTC().Format(time.RFC3339)
	}
	if t.ResponseTimeHours != nil {
		row["response_time_hours"] = strconv.FormatFloat(*t.ResponseTimeHours, 'f', 4, 64)
	}
	row["weekend"] = strconv.FormatBool(t.Weekend)
	return row
}

// ChatSnapshotRow flattens a normalized chat back into a source row.
func ChatSnapshotRow(c models.Chat) source.Row {
	row := source.Row{
		"chat id":                 c.ID,
		"chat creation date UTC":  "",
		"rate":                    c.RawRating,
		"chat duration in seconds": strconv.FormatFloat(c.DurationSeconds, 'f', 0, 64),
		"first response time":     strconv.FormatFloat(c.FirstResponseSeconds, 'f', 0, 64),
		"visitor country code":    c.Country,
	}
	if c.CreatedAt.Present() {
		utc := c.CreatedAt.Time.UTC()
		row["chat creation date UTC"] = utc.Format("2006-01-02 15:04:05")
		row["created_at_utc"] = utc.Format(time.RFC3339)
	}
	for i, a := range c.RawAgents {
		switch i {
		case 0:
			row["operator 1 nick"] = a
		case 1:
			row["operator 2 nick"] = a
		}
	}
	if c.BotTransfer {
		row["tag 1"] = transferTag
	}
	return row
}
