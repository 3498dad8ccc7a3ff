package metrics

import (
	"sort"
	"time"

	"github.com/support-insights/backend/internal/models"
)

const (
	seriesWeekday = "Weekday"
	seriesWeekend = "Weekend"
)

// WeeklyResponseTimes buckets response times by week with a weekday/weekend
// split. Null-response tickets are excluded here but still count in volume
// series. The trend line is fitted over the weekday series.
func (e Engine) WeeklyResponseTimes(tickets []models.Ticket, stat Stat) models.Series {
	weekday := map[string][]float64{}
	weekend := map[string][]float64{}
	weeks := map[string]bool{}

	for _, t := range tickets {
		if t.ResponseTimeHours == nil || !t.CreatedAtLocal.Present() {
			continue
		}
		week := weekStart(t.CreatedAtLocal.Time).Format(dayLayout)
		weeks[week] = true
		if t.Weekend {
			weekend[week] = append(weekend[week], *t.ResponseTimeHours)
		} else {
			weekday[week] = append(weekday[week], *t.ResponseTimeHours)
		}
	}

	labels := weekLabels(weeks)
	s := models.Series{
		Labels: labels,
		Values: map[string][]*float64{},
		Order:  []string{seriesWeekday, seriesWeekend},
	}
	s.Values[seriesWeekday] = bucketStat(labels, weekday, stat)
	s.Values[seriesWeekend] = bucketStat(labels, weekend, stat)
	s.Trend = fitTrend(s.Values[seriesWeekday])
	return s
}

func bucketStat(labels []string, buckets map[string][]float64, stat Stat) []*float64 {
	out := make([]*float64, len(labels))
	for i, label := range labels {
		if values, ok := buckets[label]; ok && len(values) > 0 {
			out[i] = models.Float(stat.apply(values))
		}
	}
	return out
}

// AgentComparison reports per-agent response time and volume in the fixed
// canonical order, so charts line up run to run regardless of data.
func (e Engine) AgentComparison(tickets []models.Ticket, stat Stat) models.Series {
	byAgent := map[string][]float64{}
	counts := map[string]float64{}
	for _, t := range tickets {
		counts[t.Owner]++
		if t.ResponseTimeHours != nil {
			byAgent[t.Owner] = append(byAgent[t.Owner], *t.ResponseTimeHours)
		}
	}

	order := e.Bundle.Agents.CanonicalOrder
	s := models.Series{
		Labels: order,
		Values: map[string][]*float64{},
		Order:  []string{"response_hours", "tickets"},
	}
	responses := make([]*float64, len(order))
	volumes := make([]*float64, len(order))
	for i, agent := range order {
		if values := byAgent[agent]; len(values) > 0 {
			responses[i] = models.Float(stat.apply(values))
		}
		if n := counts[agent]; n > 0 {
			volumes[i] = models.Float(n)
		}
	}
	s.Values["response_hours"] = responses
	s.Values["tickets"] = volumes
	return s
}

// PipelineBreakdown counts tickets per pipeline label, largest first. Ties
// break alphabetically so output is deterministic.
func (e Engine) PipelineBreakdown(tickets []models.Ticket) models.Series {
	counts := map[string]float64{}
	for _, t := range tickets {
		label := t.Pipeline
		if label == "" {
			label = "Unlabelled"
		}
		counts[label]++
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
		Values: map[string][]*float64{"tickets": values},
		Order:  []string{"tickets"},
	}
}

// ResponseBuckets distributes tickets over the response-time categories.
func (e Engine) ResponseBuckets(tickets []models.Ticket) models.Series {
	order := []string{"< 1 hour", "1-4 hours", "4-24 hours", "1-3 days", "3+ days"}
	counts := map[string]float64{}
	for _, t := range tickets {
		if t.ResponseBucket != "" {
			counts[t.ResponseBucket]++
		}
	}
	values := make([]*float64, len(order))
	for i, label := range order {
		if n := counts[label]; n > 0 {
			values[i] = models.Float(n)
		}
	}
	return models.Series{
		Labels: order,
		Values: map[string][]*float64{"tickets": values},
		Order:  []string{"tickets"},
	}
}

// DailyVolume counts records per local calendar day over the observed span,
// zero-filling quiet days because "no tickets" is a real observation there.
func (e Engine) DailyVolume(ds models.Dataset) models.Series {
	counts := map[string]float64{}
	var first, last string
	bump := func(tf models.TimeField) {
		if !tf.Present() {
			return
		}
		day := tf.Time.Format(dayLayout)
		counts[day]++
		if first == "" || day < first {
			first = day
		}
		if day > last {
			last = day
		}
	}
	for _, t := range ds.Tickets {
		bump(t.CreatedAtLocal)
	}
	for _, c := range ds.Chats {
		bump(c.CreatedAtLocal)
	}
	if first == "" {
		return models.EmptySeries("volume")
	}

	start, _ := time.Parse(dayLayout, first)
	end, _ := time.Parse(dayLayout, last)
	var labels []string
	var values []*float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayLayout)
		labels = append(labels, day)
		values = append(values, models.Float(counts[day]))
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"volume": values},
		Order:  []string{"volume"},
	}
}

// WeekendSplitVolume counts tickets per week split into weekday and weekend
// work, zero-filled because absence of weekend tickets is a real observation.
func (e Engine) WeekendSplitVolume(tickets []models.Ticket) models.Series {
	weekday := map[string]float64{}
	weekend := map[string]float64{}
	weeks := map[string]bool{}
	for _, t := range tickets {
		if !t.CreatedAtLocal.Present() {
			continue
		}
		week := weekStart(t.CreatedAtLocal.Time).Format(dayLayout)
		weeks[week] = true
		if t.Weekend {
			weekend[week]++
		} else {
			weekday[week]++
		}
	}

	labels := weekLabels(weeks)
	s := models.Series{
		Labels: labels,
		Values: map[string][]*float64{},
		Order:  []string{seriesWeekday, seriesWeekend},
	}
	wd := make([]*float64, len(labels))
	we := make([]*float64, len(labels))
	for i, label := range labels {
		wd[i] = models.Float(weekday[label])
		we[i] = models.Float(weekend[label])
	}
	s.Values[seriesWeekday] = wd
	s.Values[seriesWeekend] = we
	return s
}

// WeeklyVolume counts records per week.
func (e Engine) WeeklyVolume(ds models.Dataset) models.Series {
	counts := map[string]float64{}
	weeks := map[string]bool{}
	bump := func(tf models.TimeField) {
		if !tf.Present() {
			return
		}
		week := weekStart(tf.Time).Format(dayLayout)
		weeks[week] = true
		counts[week]++
	}
	for _, t := range ds.Tickets {
		bump(t.CreatedAtLocal)
	}
	for _, c := range ds.Chats {
		bump(c.CreatedAtLocal)
	}

	labels := weekLabels(weeks)
	values := make([]*float64, len(labels))
	for i, label := range labels {
		values[i] = models.Float(counts[label])
	}
	return models.Series{
		Labels: labels,
		Values: map[string][]*float64{"volume": values},
		Order:  []string{"volume"},
	}
}
