package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/support-insights/backend/internal/cache"
	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

type stubTier struct {
	name  string
	rows  []source.Row
	err   error
	calls int
}

func (s *stubTier) Name() string { return s.name }

func (s *stubTier) Fetch(context.Context, models.Domain, models.DateRange) ([]source.Row, error) {
	s.calls++
	return s.rows, s.err
}

func goodTicketRows() []source.Row {
	return []source.Row{{
		"ticket id":                       "T1",
		"create date":                     "2025-07-01 10:00:00",
		"first agent email response date": "2025-07-01 11:00:00",
		"ticket owner":                    "Nova",
		"pipeline":                        "0",
	}}
}

func newResolver(tiers ...Tier) *Resolver {
	return New(cache.NewMemoryCache(time.Minute), tiers, refdata.DefaultBundle(), zerolog.Nop())
}

func TestResolveFallsThroughFailingTiers(t *testing.T) {
	broken := &stubTier{name: "firestore", err: errors.New("connection refused")}
	empty := &stubTier{name: "sheets", rows: nil}
	good := &stubTier{name: "raw_csv", rows: goodTicketRows()}

	ds, err := newResolver(broken, empty, good).Resolve(context.Background(), models.DomainTickets, models.DateRange{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ds.SourceUsed != "raw_csv" {
		t.Fatalf("expected raw_csv to serve, got %q", ds.SourceUsed)
	}
	if len(ds.Tickets) != 1 || ds.Tickets[0].Owner != "Nova" {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
	if broken.calls != 1 || empty.calls != 1 {
		t.Fatalf("earlier tiers must each be tried once")
	}
}

func TestResolveAllTiersFailIsNotAnError(t *testing.T) {
	ds, err := newResolver(&stubTier{name: "firestore", err: errors.New("down")}).
		Resolve(context.Background(), models.DomainTickets, models.DateRange{})
	if err != nil {
		t.Fatalf("total failure must not be an error: %v", err)
	}
	if ds.SourceUsed != models.SourceNone || !ds.Empty() {
		t.Fatalf("expected explicit empty dataset, got %+v", ds)
	}
}

func TestResolveRejectsMalformedRange(t *testing.T) {
	dr := models.DateRange{
		Start: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := newResolver(&stubTier{name: "raw_csv", rows: goodTicketRows()}).
		Resolve(context.Background(), models.DomainTickets, dr); err == nil {
		t.Fatalf("inverted range must surface as an error")
	}
}

func TestResolveServesFromCacheOnSecondCall(t *testing.T) {
	tier := &stubTier{name: "raw_csv", rows: goodTicketRows()}
	r := newResolver(tier)
	ctx := context.Background()

	first, err := r.Resolve(ctx, models.DomainTickets, models.DateRange{})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve(ctx, models.DomainTickets, models.DateRange{})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if tier.calls != 1 {
		t.Fatalf("second call must come from cache, tier called %d times", tier.calls)
	}

	// Idempotence on the derived columns.
	if *first.Tickets[0].ResponseTimeHours != *second.Tickets[0].ResponseTimeHours {
		t.Fatalf("cached read changed derived values")
	}
	if first.Tickets[0].Weekend != second.Tickets[0].Weekend {
		t.Fatalf("cached read changed weekend flag")
	}
}

func TestResolveRecomputesStaleDerivationsFromStorage(t *testing.T) {
	// The tier hands back a row claiming a precomputed response time. The
	// output must reflect the raw timestamps, not the stored claim.
	rows := goodTicketRows()
	rows[0]["response_time_hours"] = "999"
	ds, err := newResolver(&stubTier{name: "firestore", rows: rows}).
		Resolve(context.Background(), models.DomainTickets, models.DateRange{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := *ds.Tickets[0].ResponseTimeHours; got != 1 {
		t.Fatalf("stored response time must be ignored, got %v", got)
	}
}

func TestResolveRangeFilterUsesLocalTime(t *testing.T) {
	rows := append(goodTicketRows(), source.Row{
		"ticket id":    "T2",
		"create date":  "2025-08-15 10:00:00",
		"ticket owner": "Girly",
		"pipeline":     "0",
	})
	dr := models.DateRange{
		Start: time.Date(2025, 7, 1, 0, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
		End:   time.Date(2025, 7, 31, 23, 59, 59, 0, time.FixedZone("EDT", -4*3600)),
	}
	ds, err := newResolver(&stubTier{name: "raw_csv", rows: rows}).
		Resolve(context.Background(), models.DomainTickets, dr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(ds.Tickets) != 1 || ds.Tickets[0].ID != "T1" {
		t.Fatalf("August ticket should be filtered out, got %+v", ds.Tickets)
	}
}

func TestResolveDiagnosticsTrace(t *testing.T) {
	broken := &stubTier{name: "firestore", err: errors.New("down")}
	good := &stubTier{name: "raw_csv", rows: goodTicketRows()}
	r := newResolver(broken, good)

	if _, err := r.Resolve(context.Background(), models.DomainTickets, models.DateRange{}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	diag, ok := r.LastDiagnostics()[models.DomainTickets]
	if !ok {
		t.Fatalf("expected a recorded trace")
	}
	if diag.SourceUsed != "raw_csv" || len(diag.Attempts) != 2 {
		t.Fatalf("unexpected trace: %+v", diag)
	}
	if diag.Attempts[0].Outcome != OutcomeUnavailable || diag.Attempts[1].Outcome != OutcomeUsed {
		t.Fatalf("attempt outcomes wrong: %+v", diag.Attempts)
	}
}
