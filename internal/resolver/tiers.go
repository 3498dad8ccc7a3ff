package resolver

import (
	"context"

	"github.com/support-insights/backend/internal/models"
	"github.com/support-insights/backend/internal/source"
)

// funcTier adapts a fetch function to the Tier interface. Connectors that
// ignore the range (whole-file and whole-sheet reads) rely on the resolver's
// post-normalization filter instead.
type funcTier struct {
	name  string
	fetch func(ctx context.Context, domain models.Domain, dr models.DateRange) ([]source.Row, error)
}

func (t funcTier) Name() string { return t.name }

func (t funcTier) Fetch(ctx context.Context, domain models.Domain, dr models.DateRange) ([]source.Row, error) {
	return t.fetch(ctx, domain, dr)
}

// FirestoreTier reads the document-store mirror, the primary durable tier.
func FirestoreTier(store *source.FirestoreStore) Tier {
	return funcTier{name: store.Name(), fetch: store.Fetch}
}

// SheetsTier reads the spreadsheet export.
func SheetsTier(sheets *source.SheetsSource) Tier {
	return funcTier{name: sheets.Name(), fetch: func(ctx context.Context, domain models.Domain, _ models.DateRange) ([]source.Row, error) {
		return sheets.Fetch(ctx, domain)
	}}
}

// ProcessedTier reads the local normalized snapshots.
func ProcessedTier(ps source.ProcessedSource) Tier {
	return funcTier{name: ps.Name(), fetch: func(_ context.Context, domain models.Domain, _ models.DateRange) ([]source.Row, error) {
		return ps.Fetch(domain)
	}}
}

// FileTier reads the raw CSV exports, the tier of last resort.
func FileTier(fs source.FileSource) Tier {
	return funcTier{name: fs.Name(), fetch: func(_ context.Context, domain models.Domain, _ models.DateRange) ([]source.Row, error) {
		return fs.Fetch(domain)
	}}
}
