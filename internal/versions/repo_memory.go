package versions

import (
	"context"
	"sync"
	"time"

	"cv-backend/cv/model"
)

// MemoryRepo stores versions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows []Version
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now}
}

// Save appends a version.
func (r *MemoryRepo) Save(ctx context.Context, doc model.Document, source string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	src, err := normalizeSource(source)
	if err != nil {
		return 0, err
	}
	// round-trip so later caller mutations do not leak into the snapshot
	doc.Normalize()
	raw, err := model.Encode(doc, false)
	if err != nil {
		return 0, err
	}
	snapshot, err := model.DecodeBytes(raw)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := int64(len(r.rows) + 1)
	r.rows = append(r.rows, Version{
		ID:        id,
		Data:      snapshot,
		CreatedAt: r.now().UTC().Truncate(time.Second),
		Source:    src,
	})
	return id, nil
}

// Latest returns the most recent document.
func (r *MemoryRepo) Latest(ctx context.Context) (model.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.rows) == 0 {
		return model.Document{}, false, nil
	}
	return r.rows[len(r.rows)-1].Data, true, nil
}

// List returns summaries newest first.
func (r *MemoryRepo) List(ctx context.Context, limit int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0, min(limit, len(r.rows)))
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		v := r.rows[i]
		out = append(out, Summary{ID: v.ID, CreatedAt: v.CreatedAt, Source: v.Source})
	}
	return out, nil
}

// Get returns a version by id.
func (r *MemoryRepo) Get(ctx context.Context, id int64) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 1 || id > int64(len(r.rows)) {
		return Version{}, ErrNotFound
	}
	return r.rows[id-1], nil
}

// Count returns the number of versions.
func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

var _ Repo = (*MemoryRepo)(nil)
