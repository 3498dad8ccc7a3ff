package normalize

import (
	"strings"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

const transferTag = "chatbot-transfer"

// monctonCreatedColumn marks exports whose timestamps are already local.
const monctonCreatedColumn = "chat creation date America/Moncton"

var (
	chatIDAliases       = []string{"chat id", "id"}
	chatCreatedAliases  = []string{monctonCreatedColumn, "chat creation date UTC", "chat creation date", "created_at"}
	chatDurationAliases = []string{"chat duration in seconds", "duration_seconds"}
	chatFirstRespAliases = []string{"first response time", "first_response_seconds"}
	chatCountryAliases  = []string{"visitor country code", "country"}
)

// Chats maps raw rows into canonical chats. Unlike tickets, unknown
// participants are kept and classified as unknown rather than dropped.
func Chats(rows []source.Row, bundle refdata.Bundle) ([]models.Chat, Report) {
	report := Report{Input: len(rows)}
	seen := make(map[string]bool, len(rows))
	out := make([]models.Chat, 0, len(rows))

	for _, row := range rows {
		id := row.Field(chatIDAliases...)
		if id == "" {
			report.DroppedInvalid++
			continue
		}
		if seen[id] {
			report.Duplicates++
			continue
		}

		rawCreated, matched := row.FieldWhich(chatCreatedAliases...)
		var created models.TimeField
		if matched == monctonCreatedColumn {
			// Export already carries local wall-clock time.
			created = parseTime(rawCreated, zoneADT)
		} else {
			created = parseTime(rawCreated, zoneUTC)
		}
		local := toLocal(created, zoneADT)

		agents := participantList(row)
		duration, _ := parseFloat(row.Field(chatDurationAliases...))
		firstResp, _ := parseFloat(row.Field(chatFirstRespAliases...))

		c := models.Chat{
			ID:                   id,
			CreatedAt:            created,
			CreatedAtLocal:       local,
			RawAgents:            agents,
			RawRating:            row.Field("rate", "rating"),
			DurationSeconds:      duration,
			DurationMinutes:      duration / 60,
			FirstResponseSeconds: firstResp,
			Country:              row.Field(chatCountryAliases...),
			BotTransfer:          hasTransferTag(row),
		}
		deriveChat(&c, bundle)

		seen[id] = true
		out = append(out, c)
		report.Kept++
	}
	return out, report
}

func participantList(row source.Row) []string {
	var agents []string
	for _, col := range []string{"operator 1 nick", "operator 2 nick", "operator 3 nick"} {
		if v := row.Field(col); v != "" {
			agents = append(agents, v)
		}
	}
	return agents
}

func hasTransferTag(row source.Row) bool {
	for _, col := range []string{"tag 1", "tag 2", "tag 3"} {
		if strings.EqualFold(row.Field(col), transferTag) {
			return true
		}
	}
	return false
}

// deriveChat recomputes rating, transfer and primary-agent fields. Shared with
// the resolver's repair pass.
func deriveChat(c *models.Chat, bundle refdata.Bundle) {
	c.RatingValue = ratingValue(c.RawRating)
	c.HasRating = c.RatingValue != nil

	// A second participant means a bot handed the conversation off, even
	// without the explicit tag.
	if len(c.RawAgents) > 1 {
		c.BotTransfer = true
	}

	c.PrimaryAgent = primaryAgent(c.RawAgents, c.BotTransfer, bundle.Roster)
	c.DisplayAgent = bundle.Roster.DisplayName(c.PrimaryAgent)
	c.AgentType = bundle.Roster.AgentType(c.PrimaryAgent)
}

// primaryAgent is deterministic for a given participant list: the first
// non-bot participant when a transfer occurred, else the first participant.
func primaryAgent(agents []string, transfer bool, roster refdata.ChatRoster) string {
	if len(agents) == 0 {
		return ""
	}
	if transfer {
		for _, a := range agents {
			if !roster.IsBot(a) {
				return a
			}
		}
	}
	return agents[0]
}

// ratingValue applies the exact three-way mapping. Anything outside the two
// known texts, including "not rated" and blanks, stays null.
func ratingValue(raw string) *float64 {
	r := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case r == "" || r == "not rated":
		return nil
	case strings.Contains(r, "good"):
		return models.Float(5)
	case strings.Contains(r, "bad"):
		return models.Float(1)
	}
	return nil
}

// RederiveChats reruns the derivations over already-normalized chats.
func RederiveChats(chats []models.Chat, bundle refdata.Bundle) Report {
	var report Report
	report.Input = len(chats)
	report.Kept = len(chats)
	for i := range chats {
		deriveChat(&chats[i], bundle)
	}
	return report
}
