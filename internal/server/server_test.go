package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/results"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T, resolver func(*catalog.Catalog) results.Resolver) *gin.Engine {
	t.Helper()
	cfg, err := config.EmbeddedDefault()
	require.NoError(t, err)
	c, err := catalog.Default()
	require.NoError(t, err)
	var r results.Resolver = results.StaticResolver{Source: c}
	if resolver != nil {
		r = resolver(c)
	}
	s, err := New(Options{Config: cfg, Source: c, Resolver: r})
	require.NoError(t, err)
	return s.Router()
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newRouter(t, nil), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHomeWithSuggestions(t *testing.T) {
	h := newRouter(t, nil)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aria-expanded="false"`)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	rec = get(t, h, "/?q=qu")
	body := rec.Body.String()
	assert.Contains(t, body, `aria-expanded="true"`)
	assert.Contains(t, body, `id="suggestion-option-0"`)
	assert.Contains(t, body, `href="results?q=quantum`)
}

func TestResultsExactMatchHidesPagination(t *testing.T) {
	rec := get(t, newRouter(t, nil), "/results?q=Quantum+Entanglement")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, `<article class="result-item"`))
	assert.NotContains(t, body, `<nav class="pagination-controls"`)
	assert.Contains(t, body, `class="ai-answer-box"`)
}

func TestResultsSecondPage(t *testing.T) {
	h := newRouter(t, nil)

	rec := get(t, h, "/results?q=machine+learning&page=2")
	body := rec.Body.String()
	assert.Contains(t, body, "Displaying 6-7 of 7 results for: ")
	assert.Contains(t, body, "Page 2 of 2")
	assert.Equal(t, 2, strings.Count(body, `<article class="result-item"`))
	assert.Contains(t, body, `<button type="button" disabled aria-disabled="true">Next</button>`)

	rec = get(t, h, "/results?q=machine+learning&page=99")
	assert.Contains(t, rec.Body.String(), "Page 1 of 2")
}

func TestResultsWithoutQuery(t *testing.T) {
	rec := get(t, newRouter(t, nil), "/results?q=+++")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "The void is silent")
	assert.Contains(t, body, `class="input-error"`)
}

func TestResultsEscapeQuery(t *testing.T) {
	target := "/results?q=" + url.QueryEscape(`<script>alert(1)</script>`)
	body := get(t, newRouter(t, nil), target).Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestSuggestFragment(t *testing.T) {
	rec := get(t, newRouter(t, nil), "/suggest?q=dark")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), `<ul id="search-suggestions-listbox"`))
	assert.Contains(t, body, "<strong>dark</strong> matter theories")
}

func TestAPISuggest(t *testing.T) {
	rec := get(t, newRouter(t, nil), "/api/suggest?q=QU")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc render.SuggestDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Suggestions, 2)
	assert.Equal(t, "quantum entanglement", doc.Suggestions[0].Text)
	assert.Equal(t, 0, doc.Suggestions[0].Match.Start)
	assert.Equal(t, 2, doc.Suggestions[0].Match.Length)

	rec = get(t, newRouter(t, nil), "/api/suggest?q=")
	assert.JSONEq(t, `{"input":"","suggestions":[]}`, rec.Body.String())
}

func TestAPIResults(t *testing.T) {
	h := newRouter(t, nil)

	rec := get(t, h, "/api/results?q=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/api/results?q=nothing+here")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, true, doc["fallback"])
	records, ok := doc["records"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, records)
	first, ok := records[0].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, first["title"], catalog.QueryPlaceholder)
}

func TestAPIResultsTimeout(t *testing.T) {
	h := newRouter(t, func(c *catalog.Catalog) results.Resolver {
		return results.DelayedResolver{Next: results.StaticResolver{Source: c}, Delay: time.Second, Timeout: 5 * time.Millisecond}
	})
	rec := get(t, h, "/api/results?q=dark+matter")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "timed out")
}

func TestThemeToggle(t *testing.T) {
	h := newRouter(t, nil)

	form := url.Values{"return": {"/results?q=css"}}
	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/results?q=css", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ThemeCookie, cookies[0].Name)
	assert.Equal(t, "light", cookies[0].Value)

	page := get(t, h, "/", cookies[0])
	assert.Contains(t, page.Body.String(), `data-theme="light"`)
}

func TestThemeToggleRejectsForeignReturn(t *testing.T) {
	h := newRouter(t, nil)
	for _, ret := range []string{"//evil.example", "https://evil.example", "", `/\evil.example`} {
		form := url.Values{"return": {ret}}
		req := httptest.NewRequest(http.MethodPost, "/theme/toggle", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "/", rec.Header().Get("Location"), ret)
	}
}
