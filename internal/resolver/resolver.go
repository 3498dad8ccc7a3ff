// Package resolver selects the best available data source for a request,
// walking a fixed tier order and falling through on failure or emptiness.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/support-insights/backend/internal/cache"
	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/normalize"
	"github.com/support-insights/backend/internal/refdata"
	"github.com/support-insights/backend/internal/source"
)

// Tier is one durable data origin. Fetch returns raw rows; the resolver owns
// normalization so every tier goes through identical validation.
type Tier interface {
	Name() string
	Fetch(ctx context.Context, domain models.Domain, dr models.DateRange) ([]source.Row, error)
}

// Attempt records what happened at one tier during a resolution, for the
// diagnostics endpoint.
type Attempt struct {
	Tier    string           `json:"tier"`
	Outcome string           `json:"outcome"`
	Error   string           `json:"error,omitempty"`
	Rows    int              `json:"rows"`
	Report  normalize.Report `json:"report"`
}

const (
	OutcomeUsed        = "used"
	OutcomeUnavailable = "unavailable"
	OutcomeEmpty       = "empty"
)

// Diagnostics is the last resolution trace for one domain.
type Diagnostics struct {
	Domain     models.Domain `json:"domain"`
	At         time.Time     `json:"at"`
	SourceUsed string        `json:"source_used"`
	FromCache  bool          `json:"from_cache"`
	Attempts   []Attempt     `json:"attempts"`
}

// Resolver walks the tier chain. Construction order of tiers is the priority
// order.
type Resolver struct {
	cache  cache.Cache
	tiers  []Tier
	bundle refdata.Bundle
	logger zerolog.Logger

	mu   sync.RWMutex
	last map[models.Domain]Diagnostics
}

func New(c cache.Cache, tiers []Tier, bundle refdata.Bundle, logger zerolog.Logger) *Resolver {
	return &Resolver{
		cache:  c,
		tiers:  tiers,
		bundle: bundle,
		logger: logger,
		last:   map[models.Domain]Diagnostics{},
	}
}

// Resolve returns the best available normalized dataset. Every tier failing is
// not an error: the caller gets an explicitly empty dataset tagged
// SourceUsed="none". A malformed range is a caller bug and surfaces
// immediately.
func (r *Resolver) Resolve(ctx context.Context, domain models.Domain, dr models.DateRange) (models.Dataset, error) {
	if err := dr.Validate(); err != nil {
		return models.Dataset{}, err
	}

	if ds, ok := r.cache.Get(ctx, domain, dr); ok {
		// Derivations are recomputed even on cache hits so a stale entry
		// written before a rules change can never leak old values.
		r.repair(&ds)
		r.record(Diagnostics{Domain: domain, At: time.Now(), SourceUsed: ds.SourceUsed, FromCache: true})
		return ds, nil
	}

	diag := Diagnostics{Domain: domain, At: time.Now(), SourceUsed: models.SourceNone}
	for _, tier := range r.tiers {
		rows, err := tier.Fetch(ctx, domain, dr)
		if err != nil {
			r.logger.Warn().Str("tier", tier.Name()).Err(err).Msg("tier unavailable")
			diag.Attempts = append(diag.Attempts, Attempt{Tier: tier.Name(), Outcome: OutcomeUnavailable, Error: err.Error()})
			continue
		}

		ds, report := r.normalize(domain, rows, dr)
		if ds.Empty() {
			r.logger.Info().Str("tier", tier.Name()).Int("raw_rows", len(rows)).Msg("tier empty after normalization")
			diag.Attempts = append(diag.Attempts, Attempt{Tier: tier.Name(), Outcome: OutcomeEmpty, Rows: len(rows), Report: report})
			continue
		}

		ds.SourceUsed = tier.Name()
		diag.SourceUsed = tier.Name()
		diag.Attempts = append(diag.Attempts, Attempt{Tier: tier.Name(), Outcome: OutcomeUsed, Rows: len(rows), Report: report})
		r.record(diag)

		r.cache.Set(ctx, domain, dr, ds)
		r.logger.Info().
			Str("domain", string(domain)).
			Str("source_used", tier.Name()).
			Int("records", ds.Len()).
			Msg("resolved dataset")
		return ds, nil
	}

	r.record(diag)
	r.logger.Warn().Str("domain", string(domain)).Msg("every tier failed, serving empty dataset")
	return models.Dataset{Domain: domain, SourceUsed: models.SourceNone}, nil
}

// normalize runs the shared pipeline and applies the range filter on local
// timestamps, matching how the dashboards slice data.
func (r *Resolver) normalize(domain models.Domain, rows []source.Row, dr models.DateRange) (models.Dataset, normalize.Report) {
	ds := models.Dataset{Domain: domain}
	var report normalize.Report
	switch domain {
	case models.DomainChats:
		chats, rep := normalize.Chats(rows, r.bundle)
		report = rep
		for _, c := range chats {
			if inRange(c.CreatedAtLocal, dr) {
				ds.Chats = append(ds.Chats, c)
			}
		}
	default:
		tickets, rep := normalize.Tickets(rows, r.bundle)
		report = rep
		for _, t := range tickets {
			if inRange(t.CreatedAtLocal, dr) {
				ds.Tickets = append(ds.Tickets, t)
			}
		}
	}
	return ds, report
}

// inRange keeps sentinel-timestamp records visible on all-data reads while
// excluding them from dated slices, where they cannot be bucketed anyway.
func inRange(tf models.TimeField, dr models.DateRange) bool {
	if dr.IsZero() {
		return true
	}
	return tf.Present() && dr.Contains(tf.Time)
}

// repair reruns every derivation on an already-normalized dataset.
func (r *Resolver) repair(ds *models.Dataset) {
	normalize.RederiveTickets(ds.Tickets, r.bundle)
	normalize.RederiveChats(ds.Chats, r.bundle)
}

func (r *Resolver) record(d Diagnostics) {
	r.mu.Lock()
	r.last[d.Domain] = d
	r.mu.Unlock()
}

// LastDiagnostics returns the most recent resolution trace per domain.
func (r *Resolver) LastDiagnostics() map[models.Domain]Diagnostics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[models.Domain]Diagnostics, len(r.last))
	for k, v := range r.last {
		out[k] = v
	}
	return out
}
