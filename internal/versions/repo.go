package versions

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cv-backend/cv/model"
	"cv-backend/internal/shared/telemetry"
)

// Repo defines persistence operations for document versions. Rows are only
// ever appended.
type Repo interface {
	Save(ctx context.Context, doc model.Document, source string) (int64, error)
	Latest(ctx context.Context) (model.Document, bool, error)
	List(ctx context.Context, limit int) ([]Summary, error)
	Get(ctx context.Context, id int64) (Version, error)
	Count(ctx context.Context) (int, error)
}

// SeedFrom imports the document at path as the first version when the store
// is empty. It reports whether a row was inserted; a missing file or a
// non-empty store is a no-op.
func SeedFrom(ctx context.Context, repo Repo, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	n, err := repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	doc, err := model.Decode(f)
	if err != nil {
		return false, fmt.Errorf("seed %s: %w", path, err)
	}
	id, err := repo.Save(ctx, doc, SourceImport)
	if err != nil {
		return false, err
	}
	telemetry.Info("versions.seeded", map[string]any{"version_id": id, "path": path})
	return true, nil
}
