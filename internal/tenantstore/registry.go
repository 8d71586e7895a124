package tenantstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Registry hands out the per-restaurant data handle, constructing it at
// most once per slug for the lifetime of the process.  The map access is
// double-checked behind the mutex while the construction itself runs
// inside the entry's sync.Once, so concurrent first requests for the same
// restaurant wait on a single construction instead of racing.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry

	// build constructs the handle for a slug.  A field rather than a
	// method so tests can substitute construction.
	build func(ctx context.Context, slug string) (*Store, error)
}

type registryEntry struct {
	once  sync.Once
	store *Store
	err   error
}

// NewRegistry returns a registry whose handles share the given connection
// pool.  Construction verifies the restaurant's schema actually exists, so
// a handle can never be handed out ahead of provisioning.
func NewRegistry(db *sql.DB) *Registry {
	r := &Registry{entries: make(map[string]*registryEntry)}
	r.build = func(ctx context.Context, slug string) (*Store, error) {
		schema := SchemaName(slug)
		ok, err := schemaExists(ctx, db, schema)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("schema %s not provisioned", schema)
		}
		return &Store{db: db, slug: slug, schema: schema}, nil
	}
	return r
}

// Handle returns the data handle for slug, constructing and caching it on
// first use.  A failed construction is not cached: the entry is discarded
// so the next request retries, which matters when resolution races a
// still-running provisioning for the same slug.
func (r *Registry) Handle(ctx context.Context, slug string) (*Store, error) {
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("invalid slug %q", slug)
	}

	r.mu.Lock()
	e, ok := r.entries[slug]
	if !ok {
		e = &registryEntry{}
		r.entries[slug] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.store, e.err = r.build(ctx, slug)
	})

	if e.err != nil {
		r.mu.Lock()
		if r.entries[slug] == e {
			delete(r.entries, slug)
		}
		r.mu.Unlock()
		return nil, e.err
	}
	return e.store, nil
}

// schemaExists checks information_schema for the named schema.
func schemaExists(ctx context.Context, db *sql.DB, schema string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.SCHEMATA WHERE SCHEMA_NAME=?", schema).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
