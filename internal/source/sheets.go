package source

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/support-insights/backend/internal/models"
)

// SheetsSource reads the Google Sheets export the sync job maintains, one tab
// per domain with a header row. It is the tier between Firestore and the
// local snapshots.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsSource(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsSource, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &SheetsSource{service: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsSource) Name() string { return "sheets" }

func sheetRange(domain models.Domain) string {
	return string(domain) + "!A:ZZ"
}

// Fetch pulls the whole tab. Date filtering happens after normalization, the
// sheet is small enough that reading it all is cheaper than a structured query.
func (s *SheetsSource) Fetch(ctx context.Context, domain models.Domain) ([]Row, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(domain)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: sheets read: %v", ErrUnavailable, err)
	}
	if len(resp.Values) < 2 {
		return nil, fmt.Errorf("%w: sheet tab %s empty", ErrUnavailable, domain)
	}

	headers := make([]string, len(resp.Values[0]))
	for i, c := range resp.Values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(c))
	}

	rows := make([]Row, 0, len(resp.Values)-1)
	for _, rec := range resp.Values[1:] {
		row := Row{}
		for i, h := range headers {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = fmt.Sprint(rec[i])
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Export replaces a tab with the given rows. Column order follows the headers
// slice so the sheet stays diffable between syncs.
func (s *SheetsSource) Export(ctx context.Context, domain models.Domain, headers []string, rows []Row) error {
	values := make([][]any, 0, len(rows)+1)
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	values = append(values, headerRow)
	for _, row := range rows {
		rec := make([]any, len(headers))
		for i, h := range headers {
			rec[i] = row[h]
		}
		values = append(values, rec)
	}

	rng := sheetRange(domain)
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets clear %s: %w", domain, err)
	}
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets update %s: %w", domain, err)
	}
	return nil
}
