package repository

import (
	"context"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDateField is the field range queries and default ordering use.
const DefaultDateField = "date"

// OwnerField names the namespace owner in stores that keep every user's documents in one
// collection. It is never writable through a patch.
const OwnerField = "ownerId"

// Repository is the per-user CRUD + query contract over one collection. Every call is
// scoped to the user resolved at call time.
type Repository[T any] interface {
	Add(ctx context.Context, data *T, opts ...AddOption) (string, error)
	// GetByID returns (nil, nil) when the document does not exist.
	GetByID(ctx context.Context, id string) (*T, error)
	// GetAll orders by date descending; maxResults <= 0 means no limit.
	GetAll(ctx context.Context, maxResults int) ([]*T, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]*T, error)
	GetByDateRange(ctx context.Context, start, end time.Time, opts ...RangeOption) ([]*T, error)
	GetByDate(ctx context.Context, day time.Time, opts ...RangeOption) ([]*T, error)
}

// IdentityResolver yields the authenticated user for a call.
type IdentityResolver interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Patch holds top-level fields merged into an existing document.
type Patch map[string]any

// Operator is a comparison applied by a Filter.
type Operator string

const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpIn             Operator = "in"
	OpNotIn          Operator = "not-in"
	OpArrayContains  Operator = "array-contains"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual, OpIn, OpNotIn, OpArrayContains:
		return true
	}
	return false
}

// Filter is one (field, operator, value) condition.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Where builds a Filter.
func Where(field string, op Operator, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Direction orders query results.
type Direction int

const (
	Desc Direction = iota
	Asc
)

// Query is an ordered conjunction of filters. Zero OrderBy means "date", zero Direction
// means descending, Limit <= 0 means unlimited.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Limit     int
}

func (q Query) withDefaults() Query {
	if q.OrderBy == "" {
		q.OrderBy = DefaultDateField
	}
	return q
}

// Namespace addresses users/{userId}/{collection}.
type Namespace struct {
	UserID     string
	Collection string
}

// Path renders the namespace as a document path prefix.
func (n Namespace) Path() string {
	return "users/" + n.UserID + "/" + n.Collection
}

// DocPath renders the full path of a document in the namespace.
func (n Namespace) DocPath(id string) string {
	return n.Path() + "/" + id
}

// Snapshot is a stored document body together with its id.
type Snapshot struct {
	ID   string
	Data bson.M
}

// Store is the primitive document-store contract the repository is built on. Each call
// touches at most one document, except Find. Implementations return ErrNoDocument for
// missing documents and *StoreFault for everything else.
type Store interface {
	Create(ctx context.Context, ns Namespace, doc bson.M) (string, error)
	Get(ctx context.Context, ns Namespace, id string) (bson.M, error)
	Merge(ctx context.Context, ns Namespace, id string, fields bson.M) error
	Delete(ctx context.Context, ns Namespace, id string) error
	Find(ctx context.Context, ns Namespace, q Query) ([]Snapshot, error)
}

// UserRepository stores identities for the local identity provider.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

