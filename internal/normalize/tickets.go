package normalize

import (
	"strings"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

// Column candidates per field, in match order. The first group is the CSV
// export vocabulary, then the HubSpot API property names, then the snapshot
// columns the sync job writes.
var (
	ticketIDAliases       = []string{"ticket id", "id", "record id"}
	ticketCreatedAliases  = []string{"create date", "createdate", "created_at"}
	ticketResponseAliases = []string{"first agent email response date", "first_agent_reply_date", "first response date"}
	ticketOwnerAliases    = []string{"ticket owner", "case owner", "owner", "hubspot_owner_name"}
	ticketPipelineAliases = []string{"pipeline", "hs_pipeline"}
	ticketPriorityAliases = []string{"priority", "hs_ticket_priority"}
	ticketSubjectAliases  = []string{"subject"}
)

// Tickets maps raw rows into canonical tickets. Manager-owned, unmapped-owner
// and SPAM-pipeline rows are dropped here, not downstream. Every derived field
// is computed from raw fields on every call, stored values are never trusted.
func Tickets(rows []source.Row, bundle refdata.Bundle) ([]models.Ticket, Report) {
	report := Report{Input: len(rows)}
	seen := make(map[string]bool, len(rows))
	out := make([]models.Ticket, 0, len(rows))

	for _, row := range rows {
		id := row.Field(ticketIDAliases...)
		if id == "" {
			report.DroppedInvalid++
			continue
		}
		if seen[id] {
			report.Duplicates++
			continue
		}

		rawOwner := row.Field(ticketOwnerAliases...)
		owner, disp := bundle.Agents.Resolve(rawOwner)
		switch disp {
		case refdata.Excluded:
			report.DroppedManagers++
			continue
		case refdata.Unmapped:
			report.DroppedUnmapped++
			continue
		}

		rawPipeline := row.Field(ticketPipelineAliases...)
		pipeline := strings.TrimSpace(bundle.Pipelines.Resolve(rawPipeline))
		if bundle.Pipelines.IsExcluded(pipeline) {
			report.DroppedSpam++
			continue
		}

		created := parseTime(row.Field(ticketCreatedAliases...), zoneCDT)
		firstResponse := parseTime(row.Field(ticketResponseAliases...), zoneCDT)
		local := toLocal(created, zoneEDT)

		t := models.Ticket{
			ID:              id,
			RawOwner:        rawOwner,
			Owner:           owner,
			RawPipeline:     rawPipeline,
			Pipeline:        pipeline,
			CreatedAt:       created,
			CreatedAtLocal:  local,
			FirstResponseAt: firstResponse,
			Priority:        row.Field(ticketPriorityAliases...),
			Subject:         row.Field(ticketSubjectAliases...),
		}
		deriveTicket(&t, bundle, &report)

		seen[id] = true
		out = append(out, t)
		report.Kept++
	}
	return out, report
}

// deriveTicket recomputes the weekend flag, response time and bucket. Called
// from both normalization and the resolver's repair pass so stale stored
// values can never survive a read.
func deriveTicket(t *models.Ticket, bundle refdata.Bundle, report *Report) {
	t.ResponseTimeHours = nil
	t.ResponseBucket = ""
	t.Weekend = false

	if t.CreatedAtLocal.Present() {
		local := t.CreatedAtLocal.Time
		t.Weekend = refdata.CalendarWeekend(local) || !bundle.Schedule.OnShift(t.Owner, local)
	}

	// Live Chat pipeline tickets are follow-ups to conversations that were
	// already answered in the chat widget; the source records a flat 30s.
	if t.Pipeline == "Live Chat" {
		t.ResponseTimeHours = models.Float(30.0 / 3600.0)
		t.ResponseBucket = responseBucket(*t.ResponseTimeHours)
		return
	}

	if !t.CreatedAt.Present() || !t.FirstResponseAt.Present() {
		return
	}
	delta := t.FirstResponseAt.Time.Sub(t.CreatedAt.Time)
	if delta <= 0 {
		if report != nil {
			report.NulledDerivations++
		}
		return
	}
	t.ResponseTimeHours = models.Float(delta.Hours())
	t.ResponseBucket = responseBucket(*t.ResponseTimeHours)
}

// RederiveTickets reruns the derivations over already-normalized tickets.
func RederiveTickets(tickets []models.Ticket, bundle refdata.Bundle) Report {
	var report Report
	report.Input = len(tickets)
	report.Kept = len(tickets)
	for i := range tickets {
		deriveTicket(&tickets[i], bundle, &report)
	}
	return report
}
