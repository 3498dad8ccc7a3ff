package ai

import (
	"fmt"
	"strings"

	"github.com/support-insights/backend/internal/metrics"
	"github.com/support-insights/backend/internal/models"
)

// SummaryContext condenses the currently resolved data into a short system
// message so the assistant answers from live numbers instead of guessing.
func SummaryContext(engine metrics.Engine, tickets, chats models.Dataset) ChatMessage {
	var sb strings.Builder
	sb.WriteString("You are an analytics assistant for a customer-support dashboard. ")
	sb.WriteString("Answer using only the data summary below. If a question falls outside it, say so.\n\n")

	sb.WriteString(fmt.Sprintf("Tickets: %d records (source: %s).\n", len(tickets.Tickets), tickets.SourceUsed))
	if len(tickets.Tickets) > 0 {
		pipelines := engine.PipelineBreakdown(tickets.Tickets)
		sb.WriteString("Tickets per pipeline:")
		for i, label := range pipelines.Labels {
			sb.WriteString(fmt.Sprintf(" %s=%.0f", label, *pipelines.Values["tickets"][i]))
		}
		sb.WriteString("\n")

		agents := engine.AgentComparison(tickets.Tickets, metrics.StatMedian)
		sb.WriteString("Median response hours per agent:")
		for i, label := range agents.Labels {
			if v := agents.Values["response_hours"][i]; v != nil {
				sb.WriteString(fmt.Sprintf(" %s=%.2f", label, *v))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Chats: %d records (source: %s).\n", len(chats.Chats), chats.SourceUsed))
	if len(chats.Chats) > 0 {
		sat := engine.SatisfactionRate(chats.Chats)
		sb.WriteString(fmt.Sprintf("Chat satisfaction: %.1f%% of %d rated chats (%d unrated excluded).\n",
			sat.Rate, sat.Rated, sat.Unrated))
	}

	return ChatMessage{Role: "system", Content: sb.String()}
}
