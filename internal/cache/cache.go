// Package cache is the first resolver tier: short-TTL storage of resolved
// datasets keyed by (domain, date range). Losing it is always safe, every
// entry can be rebuilt from the durable tiers.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/support-insights/backend/internal/models"
)

// Cache stores resolved datasets. A miss and an error look the same to the
// resolver, both mean "fall through to the next tier".
type Cache interface {
	Get(ctx context.Context, domain models.Domain, dr models.DateRange) (models.Dataset, bool)
	Set(ctx context.Context, domain models.Domain, dr models.DateRange, ds models.Dataset)
	Flush(ctx context.Context) error
}

// Key builds the canonical cache key. Zero ranges collapse to "all".
func Key(domain models.Domain, dr models.DateRange) string {
	if dr.IsZero() {
		return fmt.Sprintf("dataset:%s:all", domain)
	}
	return fmt.Sprintf("dataset:%s:%s:%s",
		domain,
		dr.Start.UTC().Format(time.RFC3339),
		dr.End.UTC().Format(time.RFC3339))
}
