// Package mongo is the MongoDB store driver. Identifiers are ULID strings
// stored as _id. Each tenant document carries a counter of its active notes
// which is incremented with a conditional update, so the plan cap holds
// without transactions.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/store"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	tenantsCollection = "tenants"
	usersCollection   = "users"
	notesCollection   = "notes"

	defaultTimeout = 10 * time.Second
)

type Options struct {
	URI      string
	Database string

	// Transactions runs Tx and WithTx inside multi-document transactions.
	// They require a replica set; on a standalone server leave it off and
	// each write commits on its own.
	Transactions bool

	// Timeout bounds connecting and index creation. Defaults to 10s.
	Timeout time.Duration
}

type Store struct {
	client *mongo.Client
	scope
	opts Options
}

// NewStore connects to MongoDB and verifies the primary is reachable.
func NewStore(ctx context.Context, o Options) (*Store, error) {
	if o.URI == "" {
		return nil, errors.New("mongo: URI is required")
	}
	if o.Database == "" {
		o.Database = "notes"
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(o.URI).
		SetConnectTimeout(o.Timeout).
		SetServerSelectionTimeout(o.Timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	return &Store{
		client: client,
		scope:  scope{db: client.Database(o.Database)},
		opts:   o,
	}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Tx starts a transaction when enabled, otherwise it returns a store whose
// Commit and Rollback do nothing.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if !s.opts.Transactions {
		return &txStore{scope: s.scope}, nil
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}
	return &txStore{scope: scope{db: s.db, sess: sess}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// scope binds repositories to a database and, inside a transaction, to its
// session.
type scope struct {
	db   *mongo.Database
	sess *mongo.Session
}

func (s scope) Tenants() store.Tenants { return &tenantsRepo{scope: s} }
func (s scope) Users() store.Users     { return &usersRepo{scope: s} }
func (s scope) Notes() store.Notes     { return &notesRepo{scope: s} }

func (s scope) ctx(ctx context.Context) context.Context {
	if s.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, s.sess)
}

func (s scope) coll(name string) *mongo.Collection { return s.db.Collection(name) }

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// now truncates to the millisecond precision of BSON dates so values read
// back compare equal.
func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t.UTC().Truncate(time.Millisecond)
}
