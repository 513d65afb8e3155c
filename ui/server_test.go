package ui

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"statdash/adapters/memory"
	"statdash/app"
	"statdash/internal"
	"statdash/internal/analysis"
	"statdash/internal/metrics"
	"statdash/internal/render"
	"statdash/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "before;after;group\n12.1;13.0;a\n11.4;12.2;b\n13.3;13.1;a\n12.8;14.0;b\n10.9;11.8;a\n12.2;12.9;b\n11.7;12.5;a\n13.0;13.6;b\n"

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := internal.NewNopLogger()
	svc := app.NewAnalysisService(
		session.NewStore(),
		analysis.NewEngine(logger),
		render.NewRenderer(),
		memory.NewRunRepository(50),
		metrics.New(),
		app.ServiceOptions{MaxConcurrent: 2},
		logger,
	)
	srv, err := NewServer(svc, Options{MaxUploadBytes: 1 << 20}, logger)
	require.NoError(t, err)
	return srv
}

func newTestClient(t *testing.T) *client {
	t.Helper()
	return &client{t: t, handler: newTestServer(t).Handler()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) upload(name, content string) *httptest.ResponseRecorder {
	return c.uploadWith(name, content, nil)
}

func (c *client) uploadWith(name, content string, fields map[string]string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, _ = fw.Write([]byte(content))
	_ = mw.WriteField("encoding", "utf-8")
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func TestDashboardFlow(t *testing.T) {
	c := newTestClient(t)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload data")
	require.NotNil(t, c.cookie, "session cookie should be issued")

	rec = c.upload("sample.csv", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "8 rows")
	assert.Contains(t, rec.Body.String(), "data_loaded")

	rec = c.postForm("/analyze", url.Values{
		"procedure": {"welch_ttest"},
		"columns":   {"before", "after"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "T-statistic")
	assert.Contains(t, rec.Body.String(), "/charts/0")

	rec = c.get("/charts/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = c.get("/api/result")
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "welch_ttest", result["procedure"])

	rec = c.get("/api/session")
	require.Equal(t, http.StatusOK, rec.Code)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "computed", view["state"])

	rec = c.get("/report.pdf?columns=before&columns=group")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = c.get("/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "welch_ttest")

	rec = c.postForm("/reset", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.get("/api/session")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "idle", view["state"])
}

func TestErrorsRenderInline(t *testing.T) {
	c := newTestClient(t)
	c.get("/")

	rec := c.upload("broken.csv", "a,b\n1,2,3\n")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert"`)

	c.upload("sample.csv", sampleCSV)
	rec = c.postForm("/analyze", url.Values{
		"procedure": {"correlation"},
		"columns":   {"before"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert"`)

	rec = c.postForm("/analyze", url.Values{
		"procedure": {"one_sample_ttest"},
		"columns":   {"before"},
		"mu":        {"abc"},
	})
	assert.Contains(t, rec.Body.String(), "is not a number")
}

func TestAPIResultWithoutAnalysis(t *testing.T) {
	c := newTestClient(t)
	rec := c.get("/api/result")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body["code"])

	rec = c.get("/charts/x")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChiSquareGridPage(t *testing.T) {
	c := newTestClient(t)

	rec := c.get("/chisquare?rows=3&cols=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cell_2_1")

	rec = c.postForm("/chisquare", url.Values{
		"rows":     {"2"},
		"cols":     {"2"},
		"cell_0_0": {"10"}, "cell_0_1": {"20"},
		"cell_1_0": {"30"}, "cell_1_1": {"40"},
		"action": {"compute"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chi-square statistic")

	rec = c.postForm("/chisquare", url.Values{
		"rows":     {"2"},
		"cols":     {"2"},
		"cell_0_0": {"ten"},
		"action":   {"compute"},
	})
	assert.Contains(t, rec.Body.String(), `class="alert"`)
}

func TestResponsesAreCompressed(t *testing.T) {
	c := newTestClient(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestOpsRouter(t *testing.T) {
	m := metrics.New()
	m.ObserveUpload(metrics.OutcomeOK)

	h := NewOpsRouter(m, map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "statdash_uploads_total")

	failing := NewOpsRouter(m, map[string]HealthCheck{
		"database": func(context.Context) error { return stderrors.New("down") },
	})
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadRejectsMultiCharacterDelimiter(t *testing.T) {
	c := newTestClient(t)
	c.get("/")

	rec := c.uploadWith("sample.csv", sampleCSV, map[string]string{"delimiter": ";;"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert"`)
	assert.Contains(t, rec.Body.String(), "single character")

	rec = c.get("/api/session")
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "idle", view["state"])

	rec = c.uploadWith("sample.csv", sampleCSV, map[string]string{"delimiter": ";"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "8 rows")
}

func TestAPIHistoryRejectsBadLimit(t *testing.T) {
	c := newTestClient(t)

	rec := c.get("/api/history?limit=0")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	rec = c.get("/api/history?limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTemplateFailureIsInternalError(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	srv.renderTemplate(ctx, http.StatusOK, "missing.html", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}
