package cv

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"cv-backend/cv/model"
	"cv-backend/internal/shared/storage/object"
)

// WorkingCopy is the canonical cv.json mirrored on every save. Version rows
// remain the source of truth for reads; the working copy exists for tools
// that edit the file directly.
type WorkingCopy struct {
	Store object.ObjectStore
	Key   string
}

// Load returns the stored document, or false when nothing has been written.
func (w *WorkingCopy) Load(ctx context.Context) (model.Document, bool, error) {
	if w == nil || w.Store == nil {
		return model.Document{}, false, nil
	}
	rc, err := w.Store.Open(ctx, w.Key)
	if err != nil {
		if errors.Is(err, object.ErrNotExist) {
			return model.Document{}, false, nil
		}
		return model.Document{}, false, fmt.Errorf("open working copy: %w", err)
	}
	defer rc.Close()

	doc, err := model.Decode(rc)
	if err != nil {
		return model.Document{}, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, w.Key, err)
	}
	return doc, true, nil
}

// Write replaces the working copy with doc as indented, newline-terminated JSON.
func (w *WorkingCopy) Write(ctx context.Context, doc model.Document) error {
	if w == nil || w.Store == nil {
		return nil
	}
	doc.Normalize()
	data, err := model.Encode(doc, true)
	if err != nil {
		return err
	}
	if _, err := w.Store.Put(ctx, w.Key, "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write working copy: %w", err)
	}
	return nil
}
