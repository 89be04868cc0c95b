package cv_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cv-backend/cv/model"
	"cv-backend/internal/bootstrap"
	"cv-backend/internal/shared/config"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/versions"
)

const sampleCV = `{
  "contact": {"name": "Ada Lovelace", "email": "ada@example.com", "github": "github.com/ada"},
  "summary": "Mathematician working on <b>analytical engines</b>.",
  "skills": [{"label": "Math", "items": ["Analysis", "Notation"]}],
  "experience": [
    {"company": "Engine Works", "roles": [
      {"title": "Programmer", "period": "1842 - 1843", "description": "Wrote the first program. Described loops."}
    ]}
  ],
  "projects": [{"name": "Note G", "description": "Bernoulli numbers."}],
  "education": [{"degree": "Private tutoring", "institution": "Home", "period": "1830s", "focus": ["Calculus"]}]
}`

func newTestApp(t *testing.T, mutate func(*config.Config)) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := config.Config{
		Env:                  "dev",
		DBPath:               filepath.Join(dir, "cv.db"),
		WorkingCopyKey:       "cv.json",
		ObjectStoreType:      "local",
		LocalStoreDir:        filepath.Join(dir, "store"),
		Style:                "modern",
		VersionsDefaultLimit: 50,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func do(app *bootstrap.App, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return env
}

func TestGetEmptyReturnsSkeleton(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodGet, "/api/cv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"contact", "summary", "skills", "experience", "projects", "education"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing key %q in %s", key, w.Body.String())
		}
	}
	if items, ok := got["skills"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty skills array, got %v", got["skills"])
	}
}

// fullCV carries every schema key, including empty strings and false flags.
const fullCV = `{
  "contact": {"name": "Ada Lovelace", "email": "", "phone": "", "website": "", "linkedin": "", "github": "github.com/ada"},
  "summary": "",
  "skills": [{"label": "Math", "items": []}],
  "experience": [
    {"company": "Engine Works", "roles": [
      {"title": "Programmer", "period": "", "description": "", "pageBreakAfter": false},
      {"title": "Analyst", "period": "1843", "description": "Notes.", "bullets": ["Note G"], "pageBreakAfter": true}
    ], "pageBreakAfter": false}
  ],
  "projects": [{"name": "Note G", "description": "", "pageBreakAfter": false}],
  "education": [{"degree": "", "institution": "Home", "period": "", "focus": [], "pageBreakAfter": false}]
}`

func TestPutThenGetRoundTrips(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPut, "/api/cv", fullCV)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var put struct {
		OK        bool  `json:"ok"`
		VersionID int64 `json:"version_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &put); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !put.OK || put.VersionID != 1 {
		t.Fatalf("unexpected put response %+v", put)
	}

	w = do(app, http.MethodGet, "/api/cv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got, want map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if err := json.Unmarshal([]byte(fullCV), &want); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", w.Body.String(), fullCV)
	}

	doc, err := model.DecodeBytes(w.Body.Bytes())
	if err != nil || doc.Contact.Name != "Ada Lovelace" {
		t.Fatalf("decode get as document: %+v, %v", doc.Contact, err)
	}
}

func TestPutWritesWorkingCopy(t *testing.T) {
	var storeDir string
	app := newTestApp(t, func(cfg *config.Config) { storeDir = cfg.LocalStoreDir })

	if w := do(app, http.MethodPut, "/api/cv", sampleCV); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, err := os.ReadFile(filepath.Join(storeDir, "cv.json"))
	if err != nil {
		t.Fatalf("read working copy: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("{\n  \"contact\"")) || !bytes.HasSuffix(data, []byte("}\n")) {
		t.Fatalf("working copy not indented JSON: %q", data)
	}
	if !bytes.Contains(data, []byte("<b>analytical engines</b>")) {
		t.Fatalf("markup was escaped in working copy: %s", data)
	}
}

func TestPutAcceptsIncompleteDocument(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPut, "/api/cv", `{"contact":{"name":""}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPutMalformedJSON(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPut, "/api/cv", `{"contact":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decodeError(t, w); env.Error.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %q", env.Error.Code)
	}
}

func TestGenerateReturnsPDF(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPost, "/api/generate", sampleCV)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
	if got := w.Header().Get("X-Version-Id"); got != "1" {
		t.Fatalf("expected X-Version-Id 1, got %q", got)
	}
	if got := w.Header().Get("X-Page-Count"); got != "1" {
		t.Fatalf("expected X-Page-Count 1, got %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="Ada_Lovelace_cv.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}

	list := do(app, http.MethodGet, "/api/versions", "")
	var items []versions.Summary
	if err := json.Unmarshal(list.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0].Source != versions.SourceGenerate {
		t.Fatalf("expected one generate version, got %+v", items)
	}
}

func TestGenerateValidationError(t *testing.T) {
	app := newTestApp(t, nil)

	body := `{"contact":{"name":"Ada"},"experience":[{"company":"X","roles":[{"title":""}]}]}`
	w := do(app, http.MethodPost, "/api/generate", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	env := decodeError(t, w)
	if env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", env.Error.Code)
	}
	if env.Error.Details["field"] != "experience[0].roles[0].title" {
		t.Fatalf("unexpected details %v", env.Error.Details)
	}

	list := do(app, http.MethodGet, "/api/versions", "")
	if strings.TrimSpace(list.Body.String()) != "[]" {
		t.Fatalf("failed render must not record a version, got %s", list.Body.String())
	}
}

func TestGenerateUnknownStyle(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPost, "/api/generate?style=baroque", sampleCV)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if env := decodeError(t, w); env.Error.Code != "invalid_style" {
		t.Fatalf("expected invalid_style, got %q", env.Error.Code)
	}
}

func TestGenerateClassicStyle(t *testing.T) {
	app := newTestApp(t, nil)

	modern := do(app, http.MethodPost, "/api/generate", sampleCV)
	classic := do(app, http.MethodPost, "/api/generate?style=classic", sampleCV)
	if classic.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", classic.Code, classic.Body.String())
	}
	if bytes.Equal(modern.Body.Bytes(), classic.Body.Bytes()) {
		t.Fatalf("style had no effect on output")
	}
}

func TestGenerateText(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodPost, "/api/generate/text", sampleCV)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Text  string `json:"text"`
		Pages int    `json:"pages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Pages != 1 {
		t.Fatalf("expected 1 page, got %d", res.Pages)
	}
	if !strings.Contains(res.Text, "Engine Works") {
		t.Fatalf("text missing company: %q", res.Text)
	}
}

func TestVersionsListAndGet(t *testing.T) {
	app := newTestApp(t, nil)

	for i := 0; i < 3; i++ {
		if w := do(app, http.MethodPut, "/api/cv", sampleCV); w.Code != http.StatusOK {
			t.Fatalf("put %d: %d", i, w.Code)
		}
	}

	w := do(app, http.MethodGet, "/api/versions?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []versions.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[0].ID != 3 || items[1].ID != 2 {
		t.Fatalf("expected ids [3 2], got %+v", items)
	}
	if items[0].Source != versions.SourceManual || items[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected summary %+v", items[0])
	}

	w = do(app, http.MethodGet, "/api/versions/2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var v versions.Version
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.ID != 2 || v.Data.Contact.Name != "Ada Lovelace" {
		t.Fatalf("unexpected version %+v", v)
	}
}

func TestVersionsBadLimit(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodGet, "/api/versions?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestVersionNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodGet, "/api/versions/42", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env := decodeError(t, w); env.Error.Code != "not_found" {
		t.Fatalf("expected not_found, got %q", env.Error.Code)
	}

	w = do(app, http.MethodGet, "/api/versions/42/pdf", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for pdf, got %d", w.Code)
	}
}

func TestVersionBadID(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/api/versions/abc", "/api/versions/0", "/api/versions/-1/pdf"} {
		w := do(app, http.MethodGet, path, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestVersionPDFDoesNotRecordVersion(t *testing.T) {
	app := newTestApp(t, nil)

	if w := do(app, http.MethodPut, "/api/cv", sampleCV); w.Code != http.StatusOK {
		t.Fatalf("put: %d", w.Code)
	}
	w := do(app, http.MethodGet, "/api/versions/1/pdf", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
	if got := w.Header().Get("X-Version-Id"); got != "1" {
		t.Fatalf("expected X-Version-Id 1, got %q", got)
	}

	n, err := app.Versions.Count(t.Context())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 version, got %d", n)
	}
}

func TestSeedImportsBootstrapFile(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "cv.json")
	if err := os.WriteFile(seed, []byte(sampleCV), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	app := newTestApp(t, func(cfg *config.Config) { cfg.SeedPath = seed })

	w := do(app, http.MethodGet, "/api/versions", "")
	var items []versions.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Source != versions.SourceImport {
		t.Fatalf("expected one import version, got %+v", items)
	}

	w = do(app, http.MethodGet, "/api/cv", "")
	if !strings.Contains(w.Body.String(), "Ada Lovelace") {
		t.Fatalf("expected seeded document, got %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	w := do(app, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsCountRenders(t *testing.T) {
	app := newTestApp(t, nil)

	do(app, http.MethodPost, "/api/generate", sampleCV)
	w := do(app, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	line := metricLine(w.Body.String(), "cv_render_total ")
	n, err := strconv.Atoi(strings.TrimPrefix(line, "cv_render_total "))
	if err != nil || n < 1 {
		t.Fatalf("unexpected cv_render_total line %q", line)
	}
}

func metricLine(body, prefix string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

func TestCorruptWorkingCopyIsServerError(t *testing.T) {
	var storeDir string
	app := newTestApp(t, func(cfg *config.Config) { storeDir = cfg.LocalStoreDir })
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(storeDir, "cv.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write working copy: %v", err)
	}

	w := do(app, http.MethodGet, "/api/cv", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	if env := decodeError(t, w); env.Error.Code != "internal_error" {
		t.Fatalf("expected internal_error, got %q", env.Error.Code)
	}
}

func TestCorruptVersionRowIsServerError(t *testing.T) {
	app := newTestApp(t, nil)
	if _, err := app.DB.ExecContext(t.Context(),
		`INSERT INTO cv_versions (data, source) VALUES ('{not json', 'manual')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, path := range []string{"/api/cv", "/api/versions/1", "/api/versions/1/pdf"} {
		w := do(app, http.MethodGet, path, "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestGenerateWarnsAboutMissingGlyphs(t *testing.T) {
	app := newTestApp(t, nil)
	core, logs := observer.New(zapcore.WarnLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	w := do(app, http.MethodPost, "/api/generate", `{"contact":{"name":"Ada 李"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	entries := logs.FilterMessage("cv.render.missing_glyphs").All()
	if len(entries) != 1 {
		t.Fatalf("expected one missing glyph warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["chars"]; got != "李" {
		t.Fatalf("expected chars 李, got %v", got)
	}

	logs.TakeAll()
	if w := do(app, http.MethodPost, "/api/generate", `{"contact":{"name":"Łukasz Żółć"}}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if n := logs.FilterMessage("cv.render.missing_glyphs").Len(); n != 0 {
		t.Fatalf("Latin Extended names must render without warnings, got %d", n)
	}
}
