// Package indexstore is a document-store-backed index of blocks,
// transactions, receipts, and logs, with the filter/projection helpers every
// collection's reads share.
package indexstore

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	CollHeaders             = "headers"
	CollTransactions        = "transactions"
	CollReceipts            = "receipts"
	CollLogs                = "logs"
	CollTransactionsPending = "transactions_pending"
	CollTransactionHashes   = "transaction_hashes"
)

// Store wraps a Mongo database handle with the small read/write contract
// every collection accessor shares.
type Store struct {
	db     *mongo.Database
	logger log.Logger
}

func New(db *mongo.Database, logger log.Logger) *Store {
	return &Store{db: db, logger: logger.With("module", "indexstore")}
}

var registry = Registry()

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name, options.Collection().SetRegistry(registry))
}

// GetOne returns at most one document matching filter, applying sort.
func GetOne[T any](ctx context.Context, s *Store, collection string, filter bson.M, sort bson.D) (*T, error) {
	opts := options.FindOne()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	var out T
	err := s.collection(collection).FindOne(ctx, filter, opts).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errorsmod.Wrapf(err, "indexstore: get_one %s", collection)
	}
	return &out, nil
}

// Get returns every document matching filter, optionally clipped by limit
// (0 means unbounded) and sorted.
func Get[T any](ctx context.Context, s *Store, collection string, filter bson.M, sort bson.D, limit int64) ([]T, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "indexstore: get %s", collection)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, errorsmod.Wrapf(err, "indexstore: decode %s", collection)
	}
	return out, nil
}

// GetAll returns the entire contents of a collection (used for the
// pending scan).
func GetAll[T any](ctx context.Context, s *Store, collection string) ([]T, error) {
	return Get[T](ctx, s, collection, bson.M{}, nil, 0)
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, collection string, filter bson.M) (uint64, error) {
	n, err := s.collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, errorsmod.Wrapf(err, "indexstore: count %s", collection)
	}
	return uint64(n), nil
}

// UpsertOne writes doc as the sole document matching filter.
func (s *Store) UpsertOne(ctx context.Context, collection string, filter bson.M, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection(collection).ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		return errorsmod.Wrapf(err, "indexstore: upsert_one %s", collection)
	}
	return nil
}

// DeleteOne deletes the (at most one) document matching filter.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter bson.M) error {
	_, err := s.collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return errorsmod.Wrapf(err, "indexstore: delete_one %s", collection)
	}
	return nil
}
