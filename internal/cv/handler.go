package cv

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cv-backend/cv/model"
	"cv-backend/cv/render"
	"cv-backend/internal/shared/server/middleware"
	"cv-backend/internal/shared/server/respond"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/versions"
)

// maxBodyBytes caps request documents.
const maxBodyBytes = 1 << 20

// Handler wires HTTP routes to the CV service.
type Handler struct {
	Svc *Service
	// ListLimit is applied to GET /versions when no limit is given.
	ListLimit int
}

// NewHandler constructs a CV handler.
func NewHandler(svc *Service, listLimit int) *Handler {
	if listLimit <= 0 {
		listLimit = versions.DefaultListLimit
	}
	return &Handler{Svc: svc, ListLimit: listLimit}
}

// RegisterRoutes attaches CV routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cv", h.get)
	rg.PUT("/cv", h.put)
	rg.POST("/generate", h.generate)
	rg.POST("/generate/text", h.generateText)
	rg.GET("/versions", h.listVersions)
	rg.GET("/versions/:id", h.getVersion)
	rg.GET("/versions/:id/pdf", h.versionPDF)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) put(c *gin.Context) {
	doc, ok := decodeBody(c)
	if !ok {
		return
	}
	id, err := h.Svc.Save(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Set(middleware.VersionIDKey, id)
	respond.OK(c, saveResponse{OK: true, VersionID: id})
}

func (h *Handler) generate(c *gin.Context) {
	doc, ok := decodeBody(c)
	if !ok {
		return
	}
	style := c.Query("style")
	c.Set(middleware.StyleKey, style)

	out, err := h.Svc.Generate(c.Request.Context(), doc, style)
	if err != nil {
		h.fail(c, err)
		return
	}
	writePDF(c, out)
}

func (h *Handler) generateText(c *gin.Context) {
	doc, ok := decodeBody(c)
	if !ok {
		return
	}
	style := c.Query("style")
	c.Set(middleware.StyleKey, style)

	res, err := h.Svc.GenerateText(c.Request.Context(), doc, style)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, textResponse{Text: res.Text, Pages: res.Pages})
}

func (h *Handler) listVersions(c *gin.Context) {
	limit := h.ListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(c, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	items, err := h.Svc.ListVersions(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []versions.Summary{}
	}
	respond.OK(c, items)
}

func (h *Handler) getVersion(c *gin.Context) {
	id, ok := versionID(c)
	if !ok {
		return
	}
	v, err := h.Svc.GetVersion(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, v)
}

func (h *Handler) versionPDF(c *gin.Context) {
	id, ok := versionID(c)
	if !ok {
		return
	}
	style := c.Query("style")
	c.Set(middleware.StyleKey, style)

	out, err := h.Svc.RenderVersion(c.Request.Context(), id, style)
	if err != nil {
		h.fail(c, err)
		return
	}
	writePDF(c, out)
}

func decodeBody(c *gin.Context) (model.Document, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "document exceeds 1 MiB", nil)
			return model.Document{}, false
		}
		respond.Error(c, http.StatusBadRequest, "invalid_body", "could not read request body", nil)
		return model.Document{}, false
	}
	doc, err := model.DecodeBytes(body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_json", err.Error(), nil)
		return model.Document{}, false
	}
	return doc, true
}

func versionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "invalid_id", "version id must be a positive integer", nil)
		return 0, false
	}
	c.Set(middleware.VersionIDKey, id)
	return id, true
}

func writePDF(c *gin.Context, out Rendered) {
	c.Set(middleware.VersionIDKey, out.VersionID)
	c.Header("X-Version-Id", strconv.FormatInt(out.VersionID, 10))
	if out.Pages > 0 {
		c.Header("X-Page-Count", strconv.Itoa(out.Pages))
	}
	respond.PDF(c, out.FileName, out.PDF)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var fieldErr *model.FieldError
	switch {
	case errors.As(err, &fieldErr):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), fieldDetails{Field: fieldErr.Field, Rule: fieldErr.Rule})
	case errors.Is(err, render.ErrUnknownStyle):
		respond.Error(c, http.StatusBadRequest, "invalid_style", err.Error(), gin.H{"styles": render.StyleNames()})
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", "invalid request", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, versions.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "version not found", nil)
	default:
		telemetry.Error("cv.request_failed", map[string]any{"path": c.FullPath(), "err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
