package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lagergrenk/grindmode-sub001/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// Option configures a scoped repository.
type Option func(*scopedOptions)

type scopedOptions struct {
	clock  Clock
	logger *slog.Logger
}

// WithClock overrides the timestamp source.
func WithClock(c Clock) Option {
	return func(o *scopedOptions) { o.clock = c }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *scopedOptions) { o.logger = l }
}

// AddOption tunes a single Add call.
type AddOption func(*addOptions)

type addOptions struct {
	stampDate bool
}

// StampDate makes Add set the record's date to the write time.
func StampDate() AddOption {
	return func(o *addOptions) { o.stampDate = true }
}

// RangeOption tunes date range lookups.
type RangeOption func(*rangeOptions)

type rangeOptions struct {
	field string
}

// OnField bounds a field other than "date".
func OnField(field string) RangeOption {
	return func(o *rangeOptions) { o.field = field }
}

// scopedRepository implements Repository for one collection under users/{uid}/.
type scopedRepository[T any, P domain.Entity[T]] struct {
	store      Store
	identity   IdentityResolver
	collection string
	clock      Clock
	logger     *slog.Logger
}

// NewScopedRepository creates a repository for collection whose namespace is resolved
// from identity on every call.
func NewScopedRepository[T any, P domain.Entity[T]](store Store, identity IdentityResolver, collection string, opts ...Option) Repository[T] {
	o := scopedOptions{clock: defaultClock, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &scopedRepository[T, P]{
		store:      store,
		identity:   identity,
		collection: collection,
		clock:      o.clock,
		logger:     o.logger.With("collection", collection),
	}
}

func (r *scopedRepository[T, P]) namespace(ctx context.Context) (Namespace, error) {
	if r.identity == nil {
		return Namespace{}, ErrNotAuthenticated
	}
	uid, err := r.identity.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return Namespace{}, err
		}
		return Namespace{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if uid == "" {
		return Namespace{}, ErrNotAuthenticated
	}
	return Namespace{UserID: uid, Collection: r.collection}, nil
}

// Add writes data as a new document and sets its id, createdAt and updatedAt.
func (r *scopedRepository[T, P]) Add(ctx context.Context, data *T, opts ...AddOption) (string, error) {
	ns, err := r.namespace(ctx)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", invalidArgument("%s: data is required", r.collection)
	}
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	rec := P(data).Record()
	now := r.clock.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if o.stampDate {
		rec.Date = now
	}
	if err := validate.Struct(data); err != nil {
		return "", invalidArgument("%s: %v", r.collection, err)
	}
	doc, err := encode(data)
	if err != nil {
		return "", invalidArgument("%s: encode: %v", r.collection, err)
	}

	id, err := r.store.Create(ctx, ns, doc)
	if err != nil {
		return "", fmt.Errorf("%s add: %w", r.collection, err)
	}
	rec.ID = id
	r.logger.Debug("document created", "path", ns.DocPath(id))
	return id, nil
}

// GetByID returns the record, or nil when it does not exist.
func (r *scopedRepository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	ns, err := r.namespace(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, invalidArgument("%s: id is required", r.collection)
	}

	doc, err := r.store.Get(ctx, ns, id)
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s get: %w", r.collection, err)
	}
	rec, err := r.decode(id, doc)
	if err != nil {
		return nil, NewFault(CodeInvalidDocument, fmt.Errorf("%s: %w", ns.DocPath(id), err))
	}
	return rec, nil
}

// GetAll returns the namespace's records, newest date first.
func (r *scopedRepository[T, P]) GetAll(ctx context.Context, maxResults int) ([]*T, error) {
	return r.Query(ctx, Query{Limit: maxResults})
}

// Update merges patch into the document and stamps updatedAt. id, createdAt and owner keys
// in patch are ignored.
func (r *scopedRepository[T, P]) Update(ctx context.Context, id string, patch Patch) error {
	ns, err := r.namespace(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return invalidArgument("%s: id is required", r.collection)
	}
	fields := bson.M{}
	for k, v := range patch {
		switch k {
		case "", "_id", "id", "createdAt", "updatedAt", OwnerField:
			continue
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return invalidArgument("%s: patch is empty", r.collection)
	}
	fields["updatedAt"] = r.clock.Now()

	doc, err := encode(fields)
	if err != nil {
		return invalidArgument("%s: encode: %v", r.collection, err)
	}
	if err := r.store.Merge(ctx, ns, id, doc); err != nil {
		if errors.Is(err, ErrNoDocument) {
			return NewFault(CodeNotFound, fmt.Errorf("%s: %w", ns.DocPath(id), err))
		}
		return fmt.Errorf("%s update: %w", r.collection, err)
	}
	r.logger.Debug("document updated", "path", ns.DocPath(id))
	return nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (r *scopedRepository[T, P]) Delete(ctx context.Context, id string) error {
	ns, err := r.namespace(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return invalidArgument("%s: id is required", r.collection)
	}
	if err := r.store.Delete(ctx, ns, id); err != nil && !errors.Is(err, ErrNoDocument) {
		return fmt.Errorf("%s delete: %w", r.collection, err)
	}
	r.logger.Debug("document deleted", "path", ns.DocPath(id))
	return nil
}

// Query returns records matching every filter. Documents that fail the shape check are
// skipped and logged.
func (r *scopedRepository[T, P]) Query(ctx context.Context, q Query) ([]*T, error) {
	ns, err := r.namespace(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range q.Filters {
		if f.Field == "" || !f.Op.Valid() {
			return nil, invalidArgument("%s: bad filter %q %q", r.collection, f.Field, f.Op)
		}
	}

	snaps, err := r.store.Find(ctx, ns, q.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", r.collection, err)
	}
	out := make([]*T, 0, len(snaps))
	for _, s := range snaps {
		rec, err := r.decode(s.ID, s.Data)
		if err != nil {
			r.logger.Warn("skipping malformed document", "path", ns.DocPath(s.ID), "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetByDateRange returns records whose date field lies in [start, end].
func (r *scopedRepository[T, P]) GetByDateRange(ctx context.Context, start, end time.Time, opts ...RangeOption) ([]*T, error) {
	o := rangeOptions{field: DefaultDateField}
	for _, opt := range opts {
		opt(&o)
	}
	return r.Query(ctx, Query{
		Filters: []Filter{
			Where(o.field, OpGreaterOrEqual, start),
			Where(o.field, OpLessOrEqual, end),
		},
		OrderBy: o.field,
	})
}

// GetByDate returns records dated within day's calendar day, in day's location.
func (r *scopedRepository[T, P]) GetByDate(ctx context.Context, day time.Time, opts ...RangeOption) ([]*T, error) {
	start, end := domain.DayBounds(day)
	return r.GetByDateRange(ctx, start, end, opts...)
}

func (r *scopedRepository[T, P]) decode(id string, doc bson.M) (*T, error) {
	rec := new(T)
	if err := decode(doc, rec); err != nil {
		return nil, err
	}
	P(rec).Record().ID = id
	return rec, nil
}
