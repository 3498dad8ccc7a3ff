package handlers

import (
	"sort"

	"github.com/support-insights/backend/internal/metrics"
	"github.com/support-insights/backend/internal/models"
)

// WidgetParams are the validated query parameters shared by all widgets.
// Widgets ignore the ones they don't use.
type WidgetParams struct {
	Stat        metrics.Stat
	Granularity metrics.Granularity
}

// Widget describes one chart data endpoint.
type Widget struct {
	Name   string        `json:"name"`
	Title  string        `json:"title"`
	Domain models.Domain `json:"source"`
	Build  func(e metrics.Engine, ds models.Dataset, p WidgetParams) models.Series `json:"-"`
}

var widgetRegistry = map[string]Widget{}

func registerWidget(w Widget) { widgetRegistry[w.Name] = w }

func init() {
	registerWidget(Widget{
		Name: "weekly_response_time_trends", Title: "Weekly Response Time Trends", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, p WidgetParams) models.Series {
			return e.WeeklyResponseTimes(ds.Tickets, p.Stat)
		},
	})
	registerWidget(Widget{
		Name: "agent_response_time_comparison", Title: "Agent Response Time Comparison", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, p WidgetParams) models.Series {
			return e.AgentComparison(ds.Tickets, p.Stat)
		},
	})
	registerWidget(Widget{
		Name: "tickets_by_pipeline", Title: "Tickets by Pipeline", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.PipelineBreakdown(ds.Tickets)
		},
	})
	registerWidget(Widget{
		Name: "weekday_weekend_distribution", Title: "Weekday vs Weekend Distribution", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.WeekendSplitVolume(ds.Tickets)
		},
	})
	registerWidget(Widget{
		Name: "weekly_response_breakdown", Title: "Weekly Response Breakdown", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.ResponseBuckets(ds.Tickets)
		},
	})
	registerWidget(Widget{
		Name: "volume_daily_historic", Title: "Historic Daily Volume", Domain: models.DomainTickets,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.DailyVolume(ds)
		},
	})
	registerWidget(Widget{
		Name: "chat_weekly_volume_breakdown", Title: "Chat Weekly Volume Breakdown", Domain: models.DomainChats,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.WeeklyVolume(ds)
		},
	})
	registerWidget(Widget{
		Name: "weekly_bot_satisfaction", Title: "Weekly Bot Satisfaction", Domain: models.DomainChats,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.WeeklySatisfaction(ds.Chats)
		},
	})
	registerWidget(Widget{
		Name: "bot_transfer_rate", Title: "Bot Transfer Rate", Domain: models.DomainChats,
		Build: func(e metrics.Engine, ds models.Dataset, p WidgetParams) models.Series {
			return e.TransferRate(ds.Chats, p.Granularity)
		},
	})
	registerWidget(Widget{
		Name: "agent_chat_load", Title: "Chats per Agent", Domain: models.DomainChats,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.AgentChatLoad(ds.Chats)
		},
	})
	registerWidget(Widget{
		Name: "chat_country_breakdown", Title: "Chats by Visitor Country", Domain: models.DomainChats,
		Build: func(e metrics.Engine, ds models.Dataset, _ WidgetParams) models.Series {
			return e.CountryBreakdown(ds.Chats, 10)
		},
	})
}

// widgetCatalog lists widgets in a stable order for the catalog endpoint.
func widgetCatalog() []Widget {
	out := make([]Widget, 0, len(widgetRegistry))
	for _, w := range widgetRegistry {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
