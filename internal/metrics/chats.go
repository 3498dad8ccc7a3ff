package metrics

import (
	"sort"

	"github.com/support-insights/backend/internal/models"
)

// Granularity selects the bucketing for time-series chat metrics.
type Granularity string

const (
	ByDay  Granularity = "day"
	ByWeek Granularity = "week"
)

// Satisfaction summarizes chat ratings. Unrated chats are excluded from both
// numerator and denominator; RatedShare reports how much data that leaves.
type Satisfaction struct {
	Rated      int     `json:"rated"`
	Unrated    int     `json:"unrated"`
	Good       int     `json:"good"`
	Bad        int     `json:"bad"`
	Rate       float64 `json:"rate_pct"`
	RatedShare float64 `json:"rated_share_pct"`
}

// SatisfactionRate computes the overall satisfaction over rated chats only.
func (e Engine) SatisfactionRate(chats []models.Chat) Satisfaction {
	var s Satisfaction
	for _, c := range chats {
		if c.RatingValue == nil {
			s.Unrated++
			continue
		}
		s.Rated++
		if *c.RatingValue >= 5 {
			s.Good++
		} else {
			s.Bad++
		}
	}
	if s.Rated > 0 {
		s.Rate = float64(s.Good) / float64(s.Rated) * 100
	}
	if total := s.Rated + s.Unrated; total > 0 {
		s.RatedShare = float64(s.Rated) / float64(total) * 100
	}
	return s
}

// WeeklySatisfaction is the satisfaction rate per week. Weeks with no rated
// chats are gaps, not zeros: zero would read as "everyone was unhappy".
func (e Engine) WeeklySatisfaction(chats []models.Chat) models.Series {
	good := map[string]float64{}
	rated := map[string]float64{}
	weeks := map[string]bool{}
	for _, c := range chats {
		if c.RatingValue == nil || !c.CreatedAtLocal.Present() {
			continue
		}
		week := weekStart(c.CreatedAtLocal.Time).Format(dayLayout)
		weeks[week] = true
		rated[week]++
		if *c.RatingValue >= 5 {
			good[week]++
		}
	}

	labels := weekLabels(weeks)
	values := make([]*float64, len(labels))
	for i, label := range labels {
		if rated[label] > 0 {
			values[i] = models.Float(good[label] / rated[label] * 100)
		}
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"satisfaction_pct": values},
		Order:  []string{"satisfaction_pct"},
	}
}

// TransferRate is the share of chats handed from a bot to a human, bucketed by
// day or week.
func (e Engine) TransferRate(chats []models.Chat, g Granularity) models.Series {
	transfers := map[string]float64{}
	totals := map[string]float64{}
	buckets := map[string]bool{}
	for _, c := range chats {
		if !c.CreatedAtLocal.Present() {
			continue
		}
		var bucket string
		if g == ByDay {
			bucket = c.CreatedAtLocal.Time.Format(dayLayout)
		} else {
			bucket = weekStart(c.CreatedAtLocal.Time).Format(dayLayout)
		}
		buckets[bucket] = true
		totals[bucket]++
		if c.BotTransfer {
			transfers[bucket]++
		}
	}

	var labels []string
	if g == ByDay {
		labels = make([]string, 0, len(buckets))
		for b := range buckets {
			labels = append(labels, b)
		}
		sort.Strings(labels)
	} else {
		labels = weekLabels(buckets)
	}

	values := make([]*float64, len(labels))
	for i, label := range labels {
		if totals[label] > 0 {
			values[i] = models.Float(transfers[label] / totals[label] * 100)
		}
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"transfer_pct": values},
		Order:  []string{"transfer_pct"},
	}
}

// AgentChatLoad counts chats per display agent, bots included, largest first.
func (e Engine) AgentChatLoad(chats []models.Chat) models.Series {
	counts := map[string]float64{}
	for _, c := range chats {
		name := c.DisplayAgent
		if name == "" {
			name = "Unassigned"
		}
		counts[name]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	values := make([]*float64, len(labels))
	for i, label := range labels {
		values[i] = models.Float(counts[label])
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"chats": values},
		Order:  []string{"chats"},
	}
}

// CountryBreakdown counts chats by visitor country, largest first, capped to
// the top entries with the remainder folded into "Other".
func (e Engine) CountryBreakdown(chats []models.Chat, top int) models.Series {
	counts := map[string]float64{}
	for _, c := range chats {
		country := c.Country
		if country == "" {
			country = "Unknown"
		}
		counts[country]++
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	if top > 0 && len(labels) > top {
		var other float64
		for _, label := range labels[top:] {
			other += counts[label]
		}
		labels = append(labels[:top], "Other")
		counts["Other"] = other
	}

	values := make([]*float64, len(labels))
	for i, label := range labels {
		values[i] = models.Float(counts[label])
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"chats": values},
		Order:  []string{"chats"},
	}
}
