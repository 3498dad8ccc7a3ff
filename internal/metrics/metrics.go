// Package metrics aggregates normalized datasets into the named series the
// dashboard widgets render. All outputs use the Series contract: one x axis,
// named y series, nil for "no data in this bucket" (never zero), and a stable
// series order.
package metrics

import (
	"errors"
	"sort"
	"time"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
)

// Stat selects the aggregation for response-time series.
type Stat string

const (
	StatMedian Stat = "median"
	StatMean   Stat = "mean"
)

func ParseStat(s string) (Stat, error) {
	switch Stat(s) {
	case StatMedian, StatMean:
		return Stat(s), nil
	case "":
		return StatMedian, nil
	}
	return "", errors.New("unknown stat: " + s)
}

func (s Stat) apply(values []float64) float64 {
	if s == StatMean {
		return mean(values)
	}
	return median(values)
}

// Engine derives chart series from resolved datasets. It is stateless; the
// bundle only supplies the fixed agent ordering.
type Engine struct {
	Bundle refdata.Bundle
}

func New(bundle refdata.Bundle) Engine { return Engine{Bundle: bundle} }

const dayLayout = "2006-01-02"

// weekStart truncates to the Monday of the timestamp's week.
func weekStart(ts time.Time) time.Time {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// weekLabels builds a continuous label axis between the first and last
// observed week so missing weeks render as gaps, not as skipped ticks.
func weekLabels(weeks map[string]bool) []string {
	if len(weeks) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(weeks))
	for w := range weeks {
		keys = append(keys, w)
	}
	sort.Strings(keys)

	first, _ := time.Parse(dayLayout, keys[0])
	last, _ := time.Parse(dayLayout, keys[len(keys)-1])
	var labels []string
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		labels = append(labels, w.Format(dayLayout))
	}
	return labels
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// fitTrend is an ordinary-least-squares line over the bucket index, skipping
// nil buckets. Fewer than two points is no trend.
func fitTrend(values []*float64) *models.Trend {
	var n, sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		if v == nil {
			continue
		}
		x := float64(i)
		n++
		sumX += x
		sumY += *v
		sumXY += x * *v
		sumXX += x * x
	}
	if n < 2 {
		return nil
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return &models.Trend{Slope: slope, Intercept: (sumY - slope*sumX) / n}
}
