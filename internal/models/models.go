package models

import (
	"errors"
	"time"
)

// Domain selects which kind of records a resolution run is about.
type Domain string

const (
	DomainTickets Domain = "tickets"
	DomainChats   Domain = "chats"
)

func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainTickets, DomainChats:
		return Domain(s), nil
	}
	return "", errors.New("unknown domain: " + s)
}

// TimeStatus distinguishes a timestamp that was absent in the source from one
// that was present but unparseable. The two are never collapsed.
type TimeStatus int

const (
	TimeOK TimeStatus = iota
	TimeMissing
	TimeInvalid
)

// TimeField is a timestamp plus its parse status.
type TimeField struct {
	Time   time.Time  `json:"time"`
	Status TimeStatus `json:"status"`
}

func (t TimeField) Present() bool { return t.Status == TimeOK }

func OKTime(ts time.Time) TimeField   { return TimeField{Time: ts, Status: TimeOK} }
func MissingTime() TimeField          { return TimeField{Status: TimeMissing} }
func InvalidTime() TimeField          { return TimeField{Status: TimeInvalid} }

// DateRange is a half-open-from-caller-perspective inclusive range. A zero
// Start and End means "all data".
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Validate rejects caller-contract violations; the resolver never recovers
// these, they surface immediately.
func (r DateRange) Validate() error {
	if r.IsZero() {
		return nil
	}
	if r.Start.IsZero() != r.End.IsZero() {
		return errors.New("date range must set both start and end, or neither")
	}
	if r.End.Before(r.Start) {
		return errors.New("date range end precedes start")
	}
	return nil
}

// Contains reports whether ts falls inside the range. Zero ranges match all.
func (r DateRange) Contains(ts time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// Ticket is one normalized support case. Raw columns are kept next to their
// canonical counterparts so transformations stay auditable downstream.
type Ticket struct {
	ID string `json:"id"`

	RawOwner string `json:"raw_owner"`
	Owner    string `json:"owner"`

	RawPipeline string `json:"raw_pipeline"`
	Pipeline    string `json:"pipeline"`

	CreatedAt       TimeField `json:"created_at"`
	CreatedAtLocal  TimeField `json:"created_at_local"`
	FirstResponseAt TimeField `json:"first_response_at"`

	Priority string `json:"priority,omitempty"`
	Subject  string `json:"subject,omitempty"`

	Weekend           bool     `json:"weekend"`
	ResponseTimeHours *float64 `json:"response_time_hours"`
	ResponseBucket    string   `json:"response_bucket,omitempty"`

	Source string `json:"source,omitempty"`
}

// AgentType classifies a chat participant.
const (
	AgentTypeBot     = "bot"
	AgentTypeHuman   = "human"
	AgentTypeUnknown = "unknown"
)

// Chat is one normalized live-chat conversation.
type Chat struct {
	ID string `json:"id"`

	CreatedAt      TimeField `json:"created_at"`
	CreatedAtLocal TimeField `json:"created_at_local"`

	RawAgents    []string `json:"raw_agents"`
	PrimaryAgent string   `json:"primary_agent"`
	DisplayAgent string   `json:"display_agent"`
	AgentType    string   `json:"agent_type"`

	RawRating   string   `json:"raw_rating"`
	RatingValue *float64 `json:"rating_value"`
	HasRating   bool     `json:"has_rating"`

	BotTransfer bool `json:"bot_transfer"`

	DurationSeconds      float64 `json:"duration_seconds"`
	DurationMinutes      float64 `json:"duration_minutes"`
	FirstResponseSeconds float64 `json:"first_response_seconds"`

	Country string `json:"country,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Dataset is a resolved, normalized batch for one domain, tagged with the tier
// that served it. SourceNone marks the explicit "no data" result.
type Dataset struct {
	Domain     Domain   `json:"domain"`
	Tickets    []Ticket `json:"tickets,omitempty"`
	Chats      []Chat   `json:"chats,omitempty"`
	SourceUsed string   `json:"source_used"`
}

const SourceNone = "none"

func (d Dataset) Len() int {
	if d.Domain == DomainChats {
		return len(d.Chats)
	}
	return len(d.Tickets)
}

func (d Dataset) Empty() bool { return d.Len() == 0 }

// Series is the chart hand-off contract: one x axis, one or more named y
// series. A nil value renders as a gap, never as zero. Order fixes the series
// iteration order so repeated calls are byte-identical.
type Series struct {
	Labels []string              `json:"x_axis_values"`
	Values map[string][]*float64 `json:"series"`
	Order  []string              `json:"series_order"`
	Trend  *Trend                `json:"trend,omitempty"`
}

// Trend is an ordinary-least-squares line over the bucket index.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func EmptySeries(names ...string) Series {
	s := Series{Labels: []string{}, Values: map[string][]*float64{}, Order: names}
	for _, n := range names {
		s.Values[n] = []*float64{}
	}
	return s
}

func Float(v float64) *float64 { return &v }
