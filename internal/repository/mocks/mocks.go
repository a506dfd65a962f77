package mocks

import (
	"context"

	"github.com/Lagergrenk/grindmode-sub001/internal/repository"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

// Store is a mock for repository.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Create(ctx context.Context, ns repository.Namespace, doc bson.M) (string, error) {
	args := m.Called(ctx, ns, doc)
	return args.String(0), args.Error(1)
}

func (m *Store) Get(ctx context.Context, ns repository.Namespace, id string) (bson.M, error) {
	args := m.Called(ctx, ns, id)
	if doc, ok := args.Get(0).(bson.M); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Merge(ctx context.Context, ns repository.Namespace, id string, fields bson.M) error {
	args := m.Called(ctx, ns, id, fields)
	return args.Error(0)
}

func (m *Store) Delete(ctx context.Context, ns repository.Namespace, id string) error {
	args := m.Called(ctx, ns, id)
	return args.Error(0)
}

func (m *Store) Find(ctx context.Context, ns repository.Namespace, q repository.Query) ([]repository.Snapshot, error) {
	args := m.Called(ctx, ns, q)
	if snaps, ok := args.Get(0).([]repository.Snapshot); ok {
		return snaps, args.Error(1)
	}
	return nil, args.Error(1)
}
