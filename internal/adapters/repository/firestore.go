package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps entries in a Firestore collection and listens to
// query snapshots for live updates.
type FirestoreStore struct {
	opts   options
	app    *firebase.App
	client *firestore.Client
	log    logger.Logger
}

// NewFirestoreStore returns a FirestoreStore; call Init before use.
// FIRESTORE_EMULATOR_HOST is honored by the client library.
func NewFirestoreStore(opts ...Option) *FirestoreStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FirestoreStore{opts: o, log: logger.Named("firestore")}
}

// Init creates the Firebase app and Firestore client.
func (f *FirestoreStore) Init(ctx context.Context) error {
	var clientOpts []option.ClientOption
	if f.opts.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(f.opts.credentialsFile))
	}

	var conf *firebase.Config
	if f.opts.projectID != "" {
		conf = &firebase.Config{ProjectID: f.opts.projectID}
	}

	app, err := firebase.NewApp(ctx, conf, clientOpts...)
	if err != nil {
		return fmt.Errorf("firestore app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore client: %w", err)
	}
	f.app, f.client = app, client
	f.log.Info(ctx, "firestore store ready",
		logger.String("project", f.opts.projectID),
		logger.String("collection", f.opts.collection))
	return nil
}

func (f *FirestoreStore) query() firestore.Query {
	return f.client.Collection(f.opts.collection).OrderBy("createdAt", firestore.Desc)
}

// List reads the whole collection, newest first.
func (f *FirestoreStore) List(ctx context.Context) ([]model.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("list", metrics.Since(start)) }()

	if f.client == nil {
		return nil, ErrNotReady
	}
	entries, err := decodeAll(f.query().Documents(ctx))
	if err != nil {
		metrics.RecordStoreError("list")
		return nil, fmt.Errorf("firestore list: %w", err)
	}
	SortNewest(entries)
	return entries, nil
}

// Append creates the document named by the entry id.
func (f *FirestoreStore) Append(ctx context.Context, e model.Entry) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append", metrics.Since(start)) }()

	if f.client == nil {
		return ErrNotReady
	}
	if e.ID == "" {
		return fmt.Errorf("firestore append: %w: missing id", ErrInvalidEntry)
	}
	if _, err := f.client.Collection(f.opts.collection).Doc(e.ID).Create(ctx, e); err != nil {
		metrics.RecordStoreError("append")
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("firestore append %s: %w", e.ID, ErrDuplicate)
		}
		return fmt.Errorf("firestore append: %w", err)
	}
	return nil
}

// Subscribe listens to the ordered collection query. Each change delivers
// the full result set; listener errors are delivered and end the stream.
func (f *FirestoreStore) Subscribe(ctx context.Context, fn func(Snapshot)) (func(), error) {
	if f.client == nil {
		return nil, ErrNotReady
	}
	ctx, cancel := context.WithCancel(ctx)
	it := f.query().Snapshots(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			snap, err := it.Next()
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				metrics.RecordStoreError("subscribe")
				f.log.Warn(ctx, "firestore listener failed", logger.Error(err))
				fn(Snapshot{Err: fmt.Errorf("firestore subscribe: %w", err)})
				return
			}
			entries, err := decodeAll(snap.Documents)
			if err != nil {
				fn(Snapshot{Err: fmt.Errorf("firestore decode: %w", err)})
				continue
			}
			SortNewest(entries)
			fn(Snapshot{Entries: entries})
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			it.Stop()
			<-done
		})
	}, nil
}

// Close closes the Firestore client.
func (f *FirestoreStore) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}

func decodeAll(it *firestore.DocumentIterator) ([]model.Entry, error) {
	defer it.Stop()
	var entries []model.Entry
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		var e model.Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Ref.ID, err)
		}
		if e.ID == "" {
			e.ID = doc.Ref.ID
		}
		entries = append(entries, e)
	}
}
