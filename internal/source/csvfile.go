package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/support-insights/backend/internal/models"
)

// FileSource reads raw export CSVs from a directory tree laid out as
// <root>/tickets/*.csv and <root>/chats/*.csv. It is the last resolver tier.
type FileSource struct {
	Root string
}

func (f FileSource) Name() string { return "raw_csv" }

func (f FileSource) Fetch(domain models.Domain) ([]Row, error) {
	dir := filepath.Join(f.Root, string(domain))
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var rows []Row
	for _, file := range files {
		fileRows, err := ReadCSV(file)
		if err != nil {
			// One unreadable export must not sink the batch.
			continue
		}
		rows = append(rows, fileRows...)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no readable csv files in %s", ErrUnavailable, dir)
	}
	return rows, nil
}

// ProcessedSource reads the latest normalized snapshot the sync job leaves
// behind (tickets_snapshot.csv / chats_snapshot.csv). Sits one tier above the
// raw exports; its derived columns are ignored on read and recomputed.
type ProcessedSource struct {
	Root string
}

func (p ProcessedSource) Name() string { return "processed_csv" }

func (p ProcessedSource) Fetch(domain models.Domain) ([]Row, error) {
	name := "tickets_snapshot.csv"
	if domain == models.DomainChats {
		name = "chats_snapshot.csv"
	}
	path := filepath.Join(p.Root, name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
	}
	return ReadCSV(path)
}

// WriteCSV writes rows under a fixed header order, creating parent
// directories as needed. Used by the sync job to leave snapshots behind.
func WriteCSV(path string, headers []string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	rec := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			rec[i] = row[h]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a header-keyed CSV into rows. Malformed lines are skipped
// rather than failing the file.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows []Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := Row{}
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
