package normalize

import (
	"testing"
	"time"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

func ticketRow(overrides map[string]string) source.Row {
	row := source.Row{
		"Ticket ID":                       "1001",
		"Create date":                     "2025-07-01 10:00:00",
		"First agent email response date": "2025-07-01 11:30:00",
		"Ticket owner":                    "Nora N",
		"Pipeline":                        "0",
		"Priority":                        "HIGH",
		"Subject":                         "Cannot log in",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestTicketsCanonicalizesOwnerAndPipeline(t *testing.T) {
	tickets, report := Tickets([]source.Row{ticketRow(nil)}, refdata.DefaultBundle())
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d (report %+v)", len(tickets), report)
	}
	tk := tickets[0]
	if tk.Owner != "Nova" || tk.RawOwner != "Nora N" {
		t.Fatalf("owner mapping broken: %q from %q", tk.Owner, tk.RawOwner)
	}
	if tk.Pipeline != "Support Pipeline" || tk.RawPipeline != "0" {
		t.Fatalf("pipeline mapping broken: %q from %q", tk.Pipeline, tk.RawPipeline)
	}
	if tk.ResponseTimeHours == nil || *tk.ResponseTimeHours != 1.5 {
		t.Fatalf("expected 1.5h response time, got %v", tk.ResponseTimeHours)
	}
	if tk.ResponseBucket != "1-4 hours" {
		t.Fatalf("expected 1-4 hours bucket, got %q", tk.ResponseBucket)
	}
}

func TestTicketsConvertsCentralToEastern(t *testing.T) {
	tickets, _ := Tickets([]source.Row{ticketRow(nil)}, refdata.DefaultBundle())
	local := tickets[0].CreatedAtLocal
	if !local.Present() {
		t.Fatalf("local timestamp missing")
	}
	if local.Time.Hour() != 11 {
		t.Fatalf("10:00 CDT should read 11:00 EDT, got %02d:00", local.Time.Hour())
	}
	// Same instant, different wall clock.
	if !local.Time.Equal(tickets[0].CreatedAt.Time) {
		t.Fatalf("conversion changed the instant")
	}
}

func TestTicketsDropsManagersSpamAndUnmapped(t *testing.T) {
	rows := []source.Row{
		ticketRow(map[string]string{"Ticket ID": "1", "Ticket owner": "Richie"}),
		ticketRow(map[string]string{"Ticket ID": "2", "Pipeline": "95947431"}),
		ticketRow(map[string]string{"Ticket ID": "3", "Ticket owner": "Total Stranger"}),
		ticketRow(map[string]string{"Ticket ID": "4"}),
	}
	tickets, report := Tickets(rows, refdata.DefaultBundle())
	if len(tickets) != 1 || tickets[0].ID != "4" {
		t.Fatalf("expected only ticket 4 to survive, got %v", tickets)
	}
	if report.DroppedManagers != 1 || report.DroppedSpam != 1 || report.DroppedUnmapped != 1 {
		t.Fatalf("drop counters wrong: %+v", report)
	}
}

func TestTicketsDeduplicatesKeepingFirst(t *testing.T) {
	rows := []source.Row{
		ticketRow(map[string]string{"Subject": "first"}),
		ticketRow(map[string]string{"Subject": "second"}),
	}
	tickets, report := Tickets(rows, refdata.DefaultBundle())
	if len(tickets) != 1 || tickets[0].Subject != "first" {
		t.Fatalf("dedup must keep the first occurrence, got %v", tickets)
	}
	if report.Duplicates != 1 {
		t.Fatalf("expected 1 duplicate counted, got %+v", report)
	}
}

func TestTicketsNullsNonPositiveResponseTimes(t *testing.T) {
	rows := []source.Row{
		ticketRow(map[string]string{"Ticket ID": "1", "First agent email response date": "2025-07-01 09:00:00"}),
		ticketRow(map[string]string{"Ticket ID": "2", "First agent email response date": ""}),
	}
	tickets, report := Tickets(rows, refdata.DefaultBundle())
	if len(tickets) != 2 {
		t.Fatalf("null response time must not drop the ticket")
	}
	for _, tk := range tickets {
		if tk.ResponseTimeHours != nil {
			t.Fatalf("ticket %s should have null response time", tk.ID)
		}
	}
	if report.NulledDerivations != 1 {
		t.Fatalf("negative duration should be counted, got %+v", report)
	}
	if tickets[1].FirstResponseAt.Status != models.TimeMissing {
		t.Fatalf("absent timestamp must be Missing, got %v", tickets[1].FirstResponseAt.Status)
	}
}

func TestTicketsInvalidTimestampIsSentinelNotDefault(t *testing.T) {
	rows := []source.Row{ticketRow(map[string]string{"Create date": "not a date"})}
	tickets, _ := Tickets(rows, refdata.DefaultBundle())
	if len(tickets) != 1 {
		t.Fatalf("invalid timestamp must not drop the row")
	}
	if tickets[0].CreatedAt.Status != models.TimeInvalid {
		t.Fatalf("expected invalid sentinel, got %v", tickets[0].CreatedAt.Status)
	}
	if !tickets[0].CreatedAt.Time.IsZero() {
		t.Fatalf("invalid timestamp must not carry a default date")
	}
}

func TestTicketsLiveChatPipelineFixedResponse(t *testing.T) {
	rows := []source.Row{ticketRow(map[string]string{
		"Pipeline":                        "147307289",
		"First agent email response date": "",
	})}
	tickets, _ := Tickets(rows, refdata.DefaultBundle())
	tk := tickets[0]
	if tk.Pipeline != "Live Chat" {
		t.Fatalf("pipeline label wrong: %q", tk.Pipeline)
	}
	if tk.ResponseTimeHours == nil || *tk.ResponseTimeHours != 30.0/3600.0 {
		t.Fatalf("Live Chat tickets carry the fixed 30s response, got %v", tk.ResponseTimeHours)
	}
}

func TestTicketsWeekendFlag(t *testing.T) {
	bundle := refdata.DefaultBundle()
	bundle.Schedule = refdata.Schedule{Agents: map[string]refdata.AgentSchedule{
		"Nova": {"tuesday": []refdata.Window{{Start: "19:00", End: "05:00"}}},
	}}

	// Tuesday 22:30 CDT = 23:30 EDT, inside Nova's overnight window.
	onShift := ticketRow(map[string]string{"Ticket ID": "1", "Create date": "2025-07-22 22:30:00"})
	// Tuesday 11:00 CDT = 12:00 EDT, no window that covers it.
	offShift := ticketRow(map[string]string{"Ticket ID": "2", "Create date": "2025-07-22 11:00:00"})
	// Saturday is calendar weekend regardless of schedule.
	saturday := ticketRow(map[string]string{"Ticket ID": "3", "Create date": "2025-07-26 10:00:00"})

	tickets, _ := Tickets([]source.Row{onShift, offShift, saturday}, bundle)
	if tickets[0].Weekend {
		t.Fatalf("on-shift overnight ticket must not be weekend")
	}
	if !tickets[1].Weekend {
		t.Fatalf("off-shift ticket defaults to weekend-equivalent")
	}
	if !tickets[2].Weekend {
		t.Fatalf("Saturday ticket must be weekend")
	}
}

func chatRow(overrides map[string]string) source.Row {
	row := source.Row{
		"chat id":                  "C1",
		"chat creation date UTC":   "2025-07-01 14:00:00",
		"operator 1 nick":          "Wynn AI",
		"rate":                     "not rated",
		"chat duration in seconds": "240",
		"first response time":      "12",
		"visitor country code":     "US",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestChatsRatingMapping(t *testing.T) {
	rows := []source.Row{
		chatRow(map[string]string{"chat id": "1", "rate": "rated good"}),
		chatRow(map[string]string{"chat id": "2", "rate": "rated bad"}),
		chatRow(map[string]string{"chat id": "3", "rate": "not rated"}),
		chatRow(map[string]string{"chat id": "4", "rate": ""}),
	}
	chats, _ := Chats(rows, refdata.DefaultBundle())
	if chats[0].RatingValue == nil || *chats[0].RatingValue != 5 {
		t.Fatalf("good must map to 5")
	}
	if chats[1].RatingValue == nil || *chats[1].RatingValue != 1 {
		t.Fatalf("bad must map to 1")
	}
	for _, c := range chats[2:] {
		if c.RatingValue != nil || c.HasRating {
			t.Fatalf("chat %s must be unrated", c.ID)
		}
	}
	if !chats[0].HasRating {
		t.Fatalf("has_rating must mirror rating presence")
	}
}

func TestChatsUTCtoAtlantic(t *testing.T) {
	chats, _ := Chats([]source.Row{chatRow(nil)}, refdata.DefaultBundle())
	local := chats[0].CreatedAtLocal
	if !local.Present() || local.Time.Hour() != 11 {
		t.Fatalf("14:00 UTC should read 11:00 ADT, got %v", local)
	}
}

func TestChatsMonctonColumnAlreadyLocal(t *testing.T) {
	rows := []source.Row{chatRow(map[string]string{
		"chat creation date UTC":            "",
		"chat creation date America/Moncton": "2025-07-01 11:00:00",
	})}
	chats, _ := Chats(rows, refdata.DefaultBundle())
	local := chats[0].CreatedAtLocal
	if !local.Present() || local.Time.Hour() != 11 {
		t.Fatalf("Moncton column is already local, got %v", local)
	}
}

func TestChatsTransferDetection(t *testing.T) {
	tagged := chatRow(map[string]string{"chat id": "1", "tag 1": "chatbot-transfer"})
	secondary := chatRow(map[string]string{"chat id": "2", "operator 2 nick": "Nora"})
	botOnly := chatRow(map[string]string{"chat id": "3"})

	chats, _ := Chats([]source.Row{tagged, secondary, botOnly}, refdata.DefaultBundle())
	if !chats[0].BotTransfer || !chats[1].BotTransfer {
		t.Fatalf("transfer detection missed tag or secondary agent")
	}
	if chats[2].BotTransfer {
		t.Fatalf("bot-only chat is not a transfer")
	}

	// Transferred chat credits the first human; bot-only credits the bot.
	if chats[1].PrimaryAgent != "Nora" || chats[1].DisplayAgent != "Nova" || chats[1].AgentType != models.AgentTypeHuman {
		t.Fatalf("transfer primary agent wrong: %+v", chats[1])
	}
	if chats[2].PrimaryAgent != "Wynn AI" || chats[2].AgentType != models.AgentTypeBot {
		t.Fatalf("bot-only primary agent wrong: %+v", chats[2])
	}
}

func TestChatsBotDisplayConsolidation(t *testing.T) {
	rows := []source.Row{chatRow(map[string]string{"operator 1 nick": "Sales Agent"})}
	chats, _ := Chats(rows, refdata.DefaultBundle())
	if chats[0].DisplayAgent != "Wynn AI" {
		t.Fatalf("Sales Agent should display as Wynn AI, got %q", chats[0].DisplayAgent)
	}
}

func TestRederiveOverridesStaleValues(t *testing.T) {
	bundle := refdata.DefaultBundle()
	stale := models.Ticket{
		ID:                "1",
		Owner:             "Nova",
		Pipeline:          "Support Pipeline",
		CreatedAt:         models.OKTime(time.Date(2025, 7, 1, 10, 0, 0, 0, zoneCDT)),
		CreatedAtLocal:    models.OKTime(time.Date(2025, 7, 1, 11, 0, 0, 0, zoneEDT)),
		FirstResponseAt:   models.OKTime(time.Date(2025, 7, 1, 12, 0, 0, 0, zoneCDT)),
		ResponseTimeHours: models.Float(999),
		ResponseBucket:    "3+ days",
	}
	tickets := []models.Ticket{stale}
	RederiveTickets(tickets, bundle)
	if tickets[0].ResponseTimeHours == nil || *tickets[0].ResponseTimeHours != 2 {
		t.Fatalf("stored response time must be recomputed, got %v", tickets[0].ResponseTimeHours)
	}
	if tickets[0].ResponseBucket != "1-4 hours" {
		t.Fatalf("bucket must be recomputed, got %q", tickets[0].ResponseBucket)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	bundle := refdata.DefaultBundle()
	original, _ := Tickets([]source.Row{ticketRow(nil)}, bundle)
	row := TicketSnapshotRow(original[0])
	again, report := Tickets([]source.Row{row}, bundle)
	if len(again) != 1 {
		t.Fatalf("snapshot row failed to normalize: %+v", report)
	}
	if again[0].Owner != original[0].Owner || again[0].Pipeline != original[0].Pipeline {
		t.Fatalf("round trip changed canonical fields")
	}
	if !again[0].CreatedAt.Time.Equal(original[0].CreatedAt.Time) {
		t.Fatalf("round trip changed the creation instant")
	}
	if *again[0].ResponseTimeHours != *original[0].ResponseTimeHours {
		t.Fatalf("derived fields must recompute to the same value")
	}
}
