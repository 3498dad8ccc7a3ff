package source

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/support-insights/backend/internal/models"
)

// FirestoreStore mirrors the normalized exports in Firestore. The sync job
// writes it, the resolver reads it as the first durable tier. Documents keep
// the snapshot column vocabulary so reads go back through the normalizer.
type FirestoreStore struct {
	client *firestore.Client
}

const (
	ticketsCollection = "tickets"
	chatsCollection   = "chats"
	createdAtField    = "created_at_utc"
)

// NewFirestoreStore dials Firestore through the Firebase app. credentialsFile
// may be empty, in which case application default credentials apply.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) Name() string { return "firestore" }

func collectionFor(domain models.Domain) string {
	if domain == models.DomainChats {
		return chatsCollection
	}
	return ticketsCollection
}

// Fetch returns the mirrored rows for the range. Range filtering uses the
// created_at_utc field the sync job stamps on every document.
func (s *FirestoreStore) Fetch(ctx context.Context, domain models.Domain, dr models.DateRange) ([]Row, error) {
	q := s.client.Collection(collectionFor(domain)).Query
	if !dr.IsZero() {
		q = q.Where(createdAtField, ">=", dr.Start.UTC().Format(time.RFC3339)).
			Where(createdAtField, "<=", dr.End.UTC().Format(time.RFC3339))
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var rows []Row
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: firestore read: %v", ErrUnavailable, err)
		}
		row := Row{}
		for k, v := range doc.Data() {
			if sv, ok := v.(string); ok {
				row[k] = sv
			} else {
				row[k] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save upserts rows keyed by their id column so repeated syncs stay
// idempotent. Rows without an id are skipped.
func (s *FirestoreStore) Save(ctx context.Context, domain models.Domain, rows []Row) (int, error) {
	coll := s.client.Collection(collectionFor(domain))
	bw := s.client.BulkWriter(ctx)
	written := 0
	for _, row := range rows {
		id := row.Field("id", "ticket id", "chat id")
		if id == "" {
			continue
		}
		data := make(map[string]any, len(row))
		for k, v := range row {
			data[k] = v
		}
		if _, err := bw.Set(coll.Doc(id), data); err != nil {
			return written, fmt.Errorf("firestore enqueue %s/%s: %w", coll.ID, id, err)
		}
		written++
	}
	bw.End()
	return written, nil
}
