package cv

import (
	"context"
	"errors"
	"time"

	"cv-backend/cv/model"
	"cv-backend/cv/render"
	"cv-backend/internal/extract"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/shared/util"
	"cv-backend/internal/versions"
)

// Service contains business logic for the CV document.
type Service struct {
	Versions    versions.Repo
	WorkingCopy *WorkingCopy
	Renderer    *render.Renderer
}

// Rendered is a generated PDF with the metadata returned to clients.
type Rendered struct {
	PDF       []byte
	VersionID int64
	Pages     int
	FileName  string
}

// TextResult is the plain-text view of a rendered document.
type TextResult struct {
	Text  string
	Pages int
}

// Current returns the latest version, else the working copy, else an empty
// skeleton.
func (s *Service) Current(ctx context.Context) (model.Document, error) {
	doc, ok, err := s.Versions.Latest(ctx)
	if err != nil {
		return model.Document{}, err
	}
	if ok {
		return doc, nil
	}

	doc, ok, err = s.WorkingCopy.Load(ctx)
	if err != nil {
		return model.Document{}, err
	}
	if ok {
		return doc, nil
	}
	return model.Empty(), nil
}

// Save writes the working copy and appends a "manual" version.
func (s *Service) Save(ctx context.Context, doc model.Document) (int64, error) {
	if err := s.WorkingCopy.Write(ctx, doc); err != nil {
		return 0, err
	}
	id, err := s.Versions.Save(ctx, doc, versions.SourceManual)
	if err != nil {
		return 0, err
	}
	metrics.IncVersionsSaved()
	telemetry.Info("cv.saved", map[string]any{"version_id": id, "source": versions.SourceManual})
	return id, nil
}

// Generate renders doc and, once rendering succeeded, records it as a
// "generate" version.
func (s *Service) Generate(ctx context.Context, doc model.Document, style string) (Rendered, error) {
	out, err := s.render(doc, style)
	if err != nil {
		return Rendered{}, err
	}
	id, err := s.Versions.Save(ctx, doc, versions.SourceGenerate)
	if err != nil {
		return Rendered{}, err
	}
	metrics.IncVersionsSaved()
	out.VersionID = id
	telemetry.Info("cv.generated", map[string]any{"version_id": id, "pages": out.Pages, "bytes": len(out.PDF)})
	return out, nil
}

// RenderVersion re-renders a stored snapshot without recording a new version.
func (s *Service) RenderVersion(ctx context.Context, id int64, style string) (Rendered, error) {
	v, err := s.GetVersion(ctx, id)
	if err != nil {
		return Rendered{}, err
	}
	out, err := s.render(v.Data, style)
	if err != nil {
		return Rendered{}, err
	}
	out.VersionID = v.ID
	return out, nil
}

// GenerateText renders doc and returns the text a résumé parser would read.
func (s *Service) GenerateText(ctx context.Context, doc model.Document, style string) (TextResult, error) {
	out, err := s.render(doc, style)
	if err != nil {
		return TextResult{}, err
	}
	text, err := extract.PDFText(ctx, out.PDF)
	if err != nil {
		return TextResult{}, err
	}
	return TextResult{Text: text, Pages: out.Pages}, nil
}

// ListVersions returns version metadata newest first.
func (s *Service) ListVersions(ctx context.Context, limit int) ([]versions.Summary, error) {
	return s.Versions.List(ctx, limit)
}

// GetVersion returns one version or ErrNotFound.
func (s *Service) GetVersion(ctx context.Context, id int64) (versions.Version, error) {
	if id <= 0 {
		return versions.Version{}, ErrInvalidInput
	}
	v, err := s.Versions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, versions.ErrNotFound) {
			return versions.Version{}, ErrNotFound
		}
		return versions.Version{}, err
	}
	return v, nil
}

func (s *Service) rendererFor(style string) (*render.Renderer, error) {
	if style == "" || style == s.Renderer.Style().Name {
		return s.Renderer, nil
	}
	st, err := render.StyleByName(style)
	if err != nil {
		return nil, err
	}
	return s.Renderer.WithStyle(st), nil
}

func (s *Service) render(doc model.Document, style string) (Rendered, error) {
	r, err := s.rendererFor(style)
	if err != nil {
		return Rendered{}, err
	}

	metrics.IncRender()
	start := time.Now()
	pdf, err := r.Render(doc)
	metrics.ObserveRenderDurationMs(metrics.SinceMillis(start))
	if err != nil {
		metrics.IncRenderFailed()
		return Rendered{}, err
	}
	if missing := r.Missing(doc); len(missing) > 0 {
		telemetry.Warn("cv.render.missing_glyphs", map[string]any{
			"chars": string(missing),
			"fonts": r.Fonts().Source(),
		})
	}

	pages, err := extract.PageCount(pdf)
	if err != nil {
		telemetry.Warn("cv.page_count_failed", map[string]any{"err": err})
		pages = 0
	}
	metrics.AddRenderedPages(pages)

	return Rendered{
		PDF:      pdf,
		Pages:    pages,
		FileName: util.PDFDownloadName(doc.Contact.Name),
	}, nil
}
