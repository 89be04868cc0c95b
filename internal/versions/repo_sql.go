package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cv-backend/cv/model"
	"cv-backend/internal/shared/storage/db"
)

// SQLRepo implements Repo on database/sql. Dialect selects placeholder style
// and the migration set; it is one of db.DialectSQLite or db.DialectPostgres.
type SQLRepo struct {
	DB      *sql.DB
	Dialect string
}

// NewSQLRepo constructs a SQLRepo.
func NewSQLRepo(database *sql.DB, dialect string) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

// Initialize creates the schema if needed. It is idempotent.
func (r *SQLRepo) Initialize(ctx context.Context) error {
	if err := db.RunMigrations(ctx, r.DB, r.Dialect); err != nil {
		return fmt.Errorf("initialize versions: %w", err)
	}
	return nil
}

func (r *SQLRepo) q(query string) string {
	return db.Rebind(r.Dialect, query)
}

// Save appends a version and returns its id.
func (r *SQLRepo) Save(ctx context.Context, doc model.Document, source string) (int64, error) {
	src, err := normalizeSource(source)
	if err != nil {
		return 0, fmt.Errorf("%w: source %q", err, source)
	}
	doc.Normalize()
	data, err := model.Encode(doc, false)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.DB.QueryRowContext(ctx,
		r.q(`INSERT INTO cv_versions (data, source) VALUES (?, ?) RETURNING id`),
		string(data), src,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert version: %w", err)
	}
	return id, nil
}

// Latest returns the document of the highest id, or false when empty.
func (r *SQLRepo) Latest(ctx context.Context) (model.Document, bool, error) {
	var data string
	err := r.DB.QueryRowContext(ctx,
		`SELECT data FROM cv_versions ORDER BY id DESC LIMIT 1`,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, false, nil
		}
		return model.Document{}, false, fmt.Errorf("latest version: %w", err)
	}
	doc, err := model.DecodeBytes([]byte(data))
	if err != nil {
		return model.Document{}, false, fmt.Errorf("%w: latest version: %v", ErrCorrupt, err)
	}
	return doc, true, nil
}

// List returns version metadata newest first.
func (r *SQLRepo) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := r.DB.QueryContext(ctx,
		r.q(`SELECT id, created_at, source FROM cv_versions ORDER BY id DESC LIMIT ?`),
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			s       Summary
			created string
		)
		if err := rows.Scan(&s.ID, &created, &s.Source); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns the full version or ErrNotFound.
func (r *SQLRepo) Get(ctx context.Context, id int64) (Version, error) {
	var (
		v       Version
		data    string
		created string
	)
	err := r.DB.QueryRowContext(ctx,
		r.q(`SELECT id, data, created_at, source FROM cv_versions WHERE id = ?`),
		id,
	).Scan(&v.ID, &data, &created, &v.Source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrNotFound
		}
		return Version{}, fmt.Errorf("get version %d: %w", id, err)
	}
	if v.Data, err = model.DecodeBytes([]byte(data)); err != nil {
		return Version{}, fmt.Errorf("%w: version %d: %v", ErrCorrupt, id, err)
	}
	if v.CreatedAt, err = parseTimestamp(created); err != nil {
		return Version{}, err
	}
	return v, nil
}

// Count returns the number of stored versions.
func (r *SQLRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM cv_versions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}

// created_at is stored as text; rows written by older builds use the SQL
// datetime layout without a zone.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse created_at %q", raw)
}

var _ Repo = (*SQLRepo)(nil)
