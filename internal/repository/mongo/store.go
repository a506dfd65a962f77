// internal/repository/mongo/store.go
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ownerField tags every document with the user whose namespace it lives in.
const ownerField = repository.OwnerField

// Store implements repository.Store with one MongoDB collection per record kind.
// users/{uid}/{collection} maps to documents of {collection} carrying ownerId = uid.
type Store struct {
	db *mongo.Database
}

// NewStore creates a Store on db.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) collection(ns repository.Namespace) *mongo.Collection {
	return s.db.Collection(ns.Collection)
}

func scopeFilter(ns repository.Namespace, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, ownerField: ns.UserID}
}

// Create inserts doc with a fresh ObjectID.
func (s *Store) Create(ctx context.Context, ns repository.Namespace, doc bson.M) (string, error) {
	body := make(bson.M, len(doc)+2)
	for k, v := range doc {
		body[k] = v
	}
	id := primitive.NewObjectID()
	body["_id"] = id
	body[ownerField] = ns.UserID

	if _, err := s.collection(ns).InsertOne(ctx, body); err != nil {
		return "", translateError(err)
	}
	return id.Hex(), nil
}

// Get fetches one document of the namespace.
func (s *Store) Get(ctx context.Context, ns repository.Namespace, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not an id this store ever issued.
		return nil, repository.ErrNoDocument
	}
	var doc bson.M
	err = s.collection(ns).FindOne(ctx, scopeFilter(ns, oid)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNoDocument
		}
		return nil, translateError(err)
	}
	strip(doc)
	return doc, nil
}

// Merge $sets fields on the document.
func (s *Store) Merge(ctx context.Context, ns repository.Namespace, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNoDocument
	}
	result, err := s.collection(ns).UpdateOne(ctx, scopeFilter(ns, oid), bson.M{"$set": settable(fields)})
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNoDocument
	}
	return nil
}

// Delete removes the document. DeletedCount is not checked: deletes are best effort.
func (s *Store) Delete(ctx context.Context, ns repository.Namespace, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := s.collection(ns).DeleteOne(ctx, scopeFilter(ns, oid)); err != nil {
		return translateError(err)
	}
	return nil
}

// Find runs q within the namespace.
func (s *Store) Find(ctx context.Context, ns repository.Namespace, q repository.Query) ([]repository.Snapshot, error) {
	filter, err := buildFilter(ns, q.Filters)
	if err != nil {
		return nil, err
	}
	dir := -1
	if q.Direction == repository.Asc {
		dir = 1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: "_id", Value: dir}})
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.collection(ns).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, translateError(err)
	}
	if err = cursor.Err(); err != nil {
		return nil, translateError(err)
	}

	out := make([]repository.Snapshot, 0, len(docs))
	for _, doc := range docs {
		oid, ok := doc["_id"].(primitive.ObjectID)
		if !ok {
			continue
		}
		strip(doc)
		out = append(out, repository.Snapshot{ID: oid.Hex(), Data: doc})
	}
	return out, nil
}

func buildFilter(ns repository.Namespace, filters []repository.Filter) (bson.M, error) {
	filter := bson.M{ownerField: ns.UserID}
	if len(filters) == 0 {
		return filter, nil
	}
	conds := make([]bson.M, 0, len(filters))
	for _, f := range filters {
		expr, err := operatorExpr(f)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{f.Field: expr})
	}
	filter["$and"] = conds
	return filter, nil
}

func operatorExpr(f repository.Filter) (bson.M, error) {
	switch f.Op {
	case repository.OpEqual:
		return bson.M{"$eq": f.Value}, nil
	case repository.OpNotEqual:
		return bson.M{"$ne": f.Value}, nil
	case repository.OpLess:
		return bson.M{"$lt": f.Value}, nil
	case repository.OpLessOrEqual:
		return bson.M{"$lte": f.Value}, nil
	case repository.OpGreater:
		return bson.M{"$gt": f.Value}, nil
	case repository.OpGreaterOrEqual:
		return bson.M{"$gte": f.Value}, nil
	case repository.OpIn:
		return bson.M{"$in": f.Value}, nil
	case repository.OpNotIn:
		return bson.M{"$nin": f.Value}, nil
	case repository.OpArrayContains:
		// $elemMatch only matches arrays, unlike a bare equality.
		return bson.M{"$elemMatch": bson.M{"$eq": f.Value}}, nil
	}
	return nil, fmt.Errorf("%w: unsupported operator %q", repository.ErrInvalidArgument, f.Op)
}

// settable drops the keys that place a document in a namespace.
func settable(fields bson.M) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "_id" || k == ownerField {
			continue
		}
		out[k] = v
	}
	return out
}

func strip(doc bson.M) {
	delete(doc, "_id")
	delete(doc, ownerField)
}

// EnsureScopedIndexes creates the namespace index every scoped collection relies on.
func EnsureScopedIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Date-ordered reads within one user's namespace
			Keys:    bson.D{{Key: ownerField, Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: ownerField, Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
