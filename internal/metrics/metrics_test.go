package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
)

func engine() Engine { return New(refdata.DefaultBundle()) }

func localTime(day, hour int) models.TimeField {
	return models.OKTime(time.Date(2025, 7, day, hour, 0, 0, 0, time.FixedZone("EDT", -4*3600)))
}

func ticket(id string, day int, owner string, hours float64, weekend bool) models.Ticket {
	return models.Ticket{
		ID:                id,
		Owner:             owner,
		Pipeline:          "Support Pipeline",
		CreatedAtLocal:    localTime(day, 10),
		ResponseTimeHours: models.Float(hours),
		Weekend:           weekend,
	}
}

func TestWeeklyResponseTimesMedianAndGaps(t *testing.T) {
	// Week of Jul 7 has three weekday tickets; week of Jul 14 has none;
	// week of Jul 21 has one. The middle week must be a gap.
	tickets := []models.Ticket{
		ticket("1", 7, "Nova", 1, false),
		ticket("2", 8, "Nova", 3, false),
		ticket("3", 9, "Nova", 10, false),
		ticket("4", 21, "Girly", 2, false),
	}
	s := engine().WeeklyResponseTimes(tickets, StatMedian)

	if len(s.Labels) != 3 {
		t.Fatalf("expected 3 continuous weeks, got %v", s.Labels)
	}
	weekday := s.Values["Weekday"]
	if weekday[0] == nil || *weekday[0] != 3 {
		t.Fatalf("median of {1,3,10} is 3, got %v", weekday[0])
	}
	if weekday[1] != nil {
		t.Fatalf("empty week must be nil, got %v", *weekday[1])
	}
	if weekday[2] == nil || *weekday[2] != 2 {
		t.Fatalf("expected 2 for last week, got %v", weekday[2])
	}
}

func TestWeeklyResponseTimesMeanAndSplit(t *testing.T) {
	tickets := []models.Ticket{
		ticket("1", 7, "Nova", 2, false),
		ticket("2", 8, "Nova", 4, false),
		ticket("3", 12, "Nova", 8, true),
	}
	s := engine().WeeklyResponseTimes(tickets, StatMean)
	if got := *s.Values["Weekday"][0]; got != 3 {
		t.Fatalf("weekday mean wrong: %v", got)
	}
	if got := *s.Values["Weekend"][0]; got != 8 {
		t.Fatalf("weekend ticket must land in the weekend series: %v", got)
	}
}

func TestWeeklyResponseTimesExcludesNullResponses(t *testing.T) {
	nullTicket := models.Ticket{ID: "1", Owner: "Nova", CreatedAtLocal: localTime(7, 10)}
	s := engine().WeeklyResponseTimes([]models.Ticket{nullTicket}, StatMedian)
	if len(s.Labels) != 0 {
		t.Fatalf("null response times contribute nothing, got %v", s.Labels)
	}
}

func TestTrendFitting(t *testing.T) {
	tickets := []models.Ticket{
		ticket("1", 7, "Nova", 1, false),
		ticket("2", 14, "Nova", 2, false),
		ticket("3", 21, "Nova", 3, false),
	}
	s := engine().WeeklyResponseTimes(tickets, StatMedian)
	if s.Trend == nil {
		t.Fatalf("expected a trend over 3 points")
	}
	if math.Abs(s.Trend.Slope-1) > 1e-9 || math.Abs(s.Trend.Intercept-1) > 1e-9 {
		t.Fatalf("expected slope 1 intercept 1, got %+v", s.Trend)
	}

	one := engine().WeeklyResponseTimes(tickets[:1], StatMedian)
	if one.Trend != nil {
		t.Fatalf("single point must not produce a trend")
	}
}

func TestAgentComparisonFixedOrder(t *testing.T) {
	tickets := []models.Ticket{
		ticket("1", 7, "Francis", 4, false),
		ticket("2", 7, "Bhushan", 2, false),
	}
	s := engine().AgentComparison(tickets, StatMedian)

	want := []string{"Bhushan", "Girly", "Nova", "Francis"}
	for i, name := range want {
		if s.Labels[i] != name {
			t.Fatalf("agent order must be fixed, got %v", s.Labels)
		}
	}
	if *s.Values["response_hours"][0] != 2 || *s.Values["response_hours"][3] != 4 {
		t.Fatalf("per-agent values misplaced: %v", s.Values["response_hours"])
	}
	// Agents with no data are gaps, and still occupy their slot.
	if s.Values["response_hours"][1] != nil || s.Values["tickets"][1] != nil {
		t.Fatalf("agent without tickets must be nil")
	}
}

func TestPipelineBreakdownOrdering(t *testing.T) {
	tickets := []models.Ticket{
		{ID: "1", Pipeline: "Success"},
		{ID: "2", Pipeline: "Support Pipeline"},
		{ID: "3", Pipeline: "Support Pipeline"},
	}
	s := engine().PipelineBreakdown(tickets)
	if s.Labels[0] != "Support Pipeline" || s.Labels[1] != "Success" {
		t.Fatalf("largest pipeline first, got %v", s.Labels)
	}
	if *s.Values["tickets"][0] != 2 {
		t.Fatalf("count wrong: %v", *s.Values["tickets"][0])
	}
}

func chat(id string, day int, rating *float64, transfer bool) models.Chat {
	return models.Chat{
		ID:             id,
		CreatedAtLocal: localTime(day, 12),
		RatingValue:    rating,
		HasRating:      rating != nil,
		BotTransfer:    transfer,
		DisplayAgent:   "Wynn AI",
	}
}

func TestSatisfactionExcludesUnratedBothSides(t *testing.T) {
	chats := []models.Chat{
		chat("1", 7, models.Float(5), false),
		chat("2", 7, models.Float(5), false),
		chat("3", 7, models.Float(1), false),
		chat("4", 7, nil, false),
		chat("5", 7, nil, false),
	}
	s := engine().SatisfactionRate(chats)
	if s.Rated != 3 || s.Unrated != 2 {
		t.Fatalf("rated split wrong: %+v", s)
	}
	if math.Abs(s.Rate-200.0/3.0) > 1e-9 {
		t.Fatalf("rate must be good/rated, got %v", s.Rate)
	}
	if math.Abs(s.RatedShare-60) > 1e-9 {
		t.Fatalf("rated share wrong: %v", s.RatedShare)
	}
}

func TestWeeklySatisfactionGaps(t *testing.T) {
	chats := []models.Chat{
		chat("1", 7, models.Float(5), false),
		chat("2", 21, models.Float(1), false),
		chat("3", 14, nil, false), // unrated only week
	}
	s := engine().WeeklySatisfaction(chats)
	if len(s.Labels) != 3 {
		t.Fatalf("expected 3 weeks, got %v", s.Labels)
	}
	v := s.Values["satisfaction_pct"]
	if v[0] == nil || *v[0] != 100 {
		t.Fatalf("week one should be 100%%, got %v", v[0])
	}
	if v[1] != nil {
		t.Fatalf("week with only unrated chats must be a gap")
	}
	if v[2] == nil || *v[2] != 0 {
		t.Fatalf("week three should be 0%%, got %v", v[2])
	}
}

func TestTransferRateByWeekAndDay(t *testing.T) {
	chats := []models.Chat{
		chat("1", 7, nil, true),
		chat("2", 7, nil, false),
		chat("3", 8, nil, true),
		chat("4", 8, nil, true),
	}
	weekly := engine().TransferRate(chats, ByWeek)
	if len(weekly.Labels) != 1 || *weekly.Values["transfer_pct"][0] != 75 {
		t.Fatalf("weekly transfer rate wrong: %+v", weekly)
	}

	daily := engine().TransferRate(chats, ByDay)
	if len(daily.Labels) != 2 {
		t.Fatalf("expected 2 days, got %v", daily.Labels)
	}
	if *daily.Values["transfer_pct"][0] != 50 || *daily.Values["transfer_pct"][1] != 100 {
		t.Fatalf("daily transfer rates wrong: %v", daily.Values["transfer_pct"])
	}
}

func TestDailyVolumeZeroFills(t *testing.T) {
	ds := models.Dataset{
		Domain: models.DomainTickets,
		Tickets: []models.Ticket{
			ticket("1", 7, "Nova", 1, false),
			ticket("2", 9, "Nova", 1, false),
		},
	}
	s := engine().DailyVolume(ds)
	if len(s.Labels) != 3 {
		t.Fatalf("expected 3 continuous days, got %v", s.Labels)
	}
	if *s.Values["volume"][1] != 0 {
		t.Fatalf("quiet day volume is a real zero, got %v", s.Values["volume"][1])
	}
}

func TestCountryBreakdownFoldsTail(t *testing.T) {
	chats := []models.Chat{
		{ID: "1", Country: "US"}, {ID: "2", Country: "US"},
		{ID: "3", Country: "CA"}, {ID: "4", Country: "GB"},
		{ID: "5", Country: "DE"},
	}
	s := engine().CountryBreakdown(chats, 2)
	if len(s.Labels) != 3 || s.Labels[2] != "Other" {
		t.Fatalf("expected top 2 plus Other, got %v", s.Labels)
	}
	if *s.Values["chats"][2] != 2 {
		t.Fatalf("Other should fold 2 chats, got %v", *s.Values["chats"][2])
	}
}

func TestEmptyInputsProduceEmptySeries(t *testing.T) {
	s := engine().WeeklyResponseTimes(nil, StatMedian)
	if len(s.Labels) != 0 {
		t.Fatalf("empty input must give empty labels")
	}
	vol := engine().DailyVolume(models.Dataset{})
	if len(vol.Labels) != 0 {
		t.Fatalf("empty dataset must give empty volume")
	}
}
