package versions

import (
	"strings"
	"time"

	"cv-backend/cv/model"
)

// Source tags used by this service. The column itself is a free-form label.
const (
	SourceManual   = "manual"
	SourceImport   = "import"
	SourceGenerate = "generate"
)

// Version is an immutable snapshot of the document.
type Version struct {
	ID        int64          `json:"id"`
	Data      model.Document `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	Source    string         `json:"source"`
}

// Summary is the metadata-only projection of a Version.
type Summary struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// MaxSourceLen bounds the free-form source label.
const MaxSourceLen = 64

func normalizeSource(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return SourceManual, nil
	}
	if len(source) > MaxSourceLen {
		return "", ErrInvalidInput
	}
	return source, nil
}
