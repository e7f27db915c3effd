package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/query"
	"github.com/oakwood-commons/kliff/internal/render"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

const themeCookieMaxAge = 365 * 24 * 60 * 60

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) home(c *gin.Context) {
	data := s.page(c, s.cfg.App.Name)
	if text := c.Query(query.Param); text != "" {
		data.Input = text
		data.Suggestions = render.Suggestions(s.dropdown(text))
	}
	s.renderHTML(c, http.StatusOK, s.html.Home, data)
}

func (s *Server) results(c *gin.Context) {
	raw := c.Query(query.Param)
	data := s.page(c, s.cfg.App.Name)
	data.Input = raw

	q, err := query.Finalize(raw)
	if err != nil {
		data.InputError = true
		data.Results = &render.ResultsView{}
		s.renderHTML(c, http.StatusOK, s.html.Results, data)
		return
	}

	p := s.resolve(c.Request.Context(), q, c.Query("page"))
	view := render.Results(p.State())
	data.Title = q + " - " + s.cfg.App.Name
	data.Results = &view
	s.renderHTML(c, http.StatusOK, s.html.Results, data)
}

func (s *Server) suggestFragment(c *gin.Context) {
	view := render.Suggestions(s.dropdown(c.Query(query.Param)))
	var buf bytes.Buffer
	if err := s.html.Suggestions(&buf, view); err != nil {
		s.log.Error(err, "render failed", "path", c.Request.URL.Path)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) apiSuggest(c *gin.Context) {
	text := c.Query(query.Param)
	items := s.engine.Compute(text)
	if items == nil {
		items = []suggest.Suggestion{}
	}
	c.JSON(http.StatusOK, render.SuggestDoc{Input: text, Suggestions: items})
}

func (s *Server) apiResults(c *gin.Context) {
	q, err := query.Finalize(c.Query(query.Param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	p := s.resolve(c.Request.Context(), q, c.Query("page"))
	st := p.State()
	if st.Err != nil {
		status := http.StatusInternalServerError
		if errors.Is(st.Err, results.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, ErrorResponse{Error: st.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, render.NewResultsDoc(st))
}

func (s *Server) toggleTheme(c *gin.Context) {
	current, _ := s.theme(c)
	next := s.cfg.NextTheme(current)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, next, themeCookieMaxAge, "/", "", c.Request.TLS != nil, true)

	ret := c.PostForm("return")
	if !localPath(ret) {
		ret = "/"
	}
	c.Redirect(http.StatusSeeOther, ret)
}

// resolve runs one resolution and moves to the requested page. A missing or
// out-of-range page leaves page 1.
func (s *Server) resolve(ctx context.Context, q, page string) *results.Paginator {
	p := results.New(s.resolver, s.cfg.Search.PageSize, results.WithLogger(s.log.WithName("results")))
	if err := p.Search(ctx, q); err != nil {
		s.log.Error(err, "resolve failed", "query", q)
	}
	if n, err := strconv.Atoi(page); err == nil {
		p.Goto(n)
	}
	return p
}

// dropdown is the suggestion list as it stands once the debounce settles.
func (s *Server) dropdown(text string) suggest.State {
	st, _ := suggest.Reduce(suggest.NewState(s.policy), suggest.TextChanged{Text: text})
	st, _ = suggest.Reduce(st, suggest.SuggestionsReady{Text: text, Items: s.engine.Compute(text)})
	return st
}

func (s *Server) theme(c *gin.Context) (string, config.ThemeConfig) {
	name, _ := c.Cookie(ThemeCookie)
	return s.cfg.ResolveTheme(name)
}

func (s *Server) page(c *gin.Context, title string) render.PageData {
	name, th := s.theme(c)
	return render.PageData{
		Title:     title,
		App:       s.cfg.App,
		ThemeName: name,
		Palette:   render.NewPalette(th),
		Return:    c.Request.URL.RequestURI(),
	}
}

func (s *Server) renderHTML(c *gin.Context, status int, fn func(io.Writer, render.PageData) error, data render.PageData) {
	var buf bytes.Buffer
	if err := fn(&buf, data); err != nil {
		s.log.Error(err, "render failed", "path", c.Request.URL.Path)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// localPath accepts same-site absolute paths only.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
