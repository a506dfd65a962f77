// Package memory implements repository.Store in process memory. It backs tests and the
// "memory" database driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store keeps documents per collection and user. Documents are copied on the way in and
// out so callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	docs  map[repository.Namespace]map[string]bson.M
	// order remembers insertion order for stable sorting of equal keys.
	order map[string]int
	seq   int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:  make(map[repository.Namespace]map[string]bson.M),
		order: make(map[string]int),
	}
}

// Create stores doc under a new id.
func (s *Store) Create(ctx context.Context, ns repository.Namespace, doc bson.M) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", contextFault(err)
	}
	c, err := clone(doc)
	if err != nil {
		return "", repository.NewFault(repository.CodeInvalidDocument, err)
	}
	id := primitive.NewObjectID().Hex()

	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.docs[ns]
	if !ok {
		coll = make(map[string]bson.M)
		s.docs[ns] = coll
	}
	coll[id] = c
	s.seq++
	s.order[id] = s.seq
	return id, nil
}

// Get returns a copy of the document or repository.ErrNoDocument.
func (s *Store) Get(ctx context.Context, ns repository.Namespace, id string) (bson.M, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextFault(err)
	}
	s.mu.RLock()
	doc, ok := s.docs[ns][id]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNoDocument
	}
	return clone(doc)
}

// Merge sets top-level fields on an existing document.
func (s *Store) Merge(ctx context.Context, ns repository.Namespace, id string, fields bson.M) error {
	if err := ctx.Err(); err != nil {
		return contextFault(err)
	}
	c, err := clone(fields)
	if err != nil {
		return repository.NewFault(repository.CodeInvalidDocument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[ns][id]
	if !ok {
		return repository.ErrNoDocument
	}
	for k, v := range c {
		doc[k] = v
	}
	return nil
}

// Delete removes the document; a missing document is not an error.
func (s *Store) Delete(ctx context.Context, ns repository.Namespace, id string) error {
	if err := ctx.Err(); err != nil {
		return contextFault(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs[ns], id)
	delete(s.order, id)
	return nil
}

// Find filters, orders and limits the namespace's documents.
func (s *Store) Find(ctx context.Context, ns repository.Namespace, q repository.Query) ([]repository.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextFault(err)
	}
	filters := make([]compiledFilter, 0, len(q.Filters))
	for _, f := range q.Filters {
		cf, err := compile(f)
		if err != nil {
			return nil, repository.NewFault(repository.CodeInvalidDocument, err)
		}
		filters = append(filters, cf)
	}

	s.mu.RLock()
	var out []repository.Snapshot
	for id, doc := range s.docs[ns] {
		if matchesAll(doc, filters) {
			c, err := clone(doc)
			if err != nil {
				s.mu.RUnlock()
				return nil, repository.NewFault(repository.CodeInvalidDocument, err)
			}
			out = append(out, repository.Snapshot{ID: id, Data: c})
		}
	}
	order := make(map[string]int, len(out))
	for _, snap := range out {
		order[snap.ID] = s.order[snap.ID]
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		c, ok := compareValues(out[i].Data[q.OrderBy], out[j].Data[q.OrderBy])
		if !ok || c == 0 {
			return order[out[i].ID] < order[out[j].ID]
		}
		if q.Direction == repository.Asc {
			return c < 0
		}
		return c > 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Len reports how many documents a namespace holds.
func (s *Store) Len(ns repository.Namespace) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[ns])
}

func clone(doc bson.M) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	var c bson.M
	if err := bson.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	return c, nil
}

func contextFault(err error) error {
	if err == context.DeadlineExceeded {
		return repository.NewFault(repository.CodeDeadlineExceeded, err)
	}
	return repository.NewFault(repository.CodeUnavailable, err)
}
