package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kliff/internal/catalog"
	"github.com/oakwood-commons/kliff/internal/config"
	"github.com/oakwood-commons/kliff/internal/results"
	"github.com/oakwood-commons/kliff/internal/suggest"
)

func resolved(t *testing.T, q string, pageSize int) *results.Paginator {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	p := results.New(results.StaticResolver{Source: c}, pageSize)
	require.NoError(t, p.Search(context.Background(), q))
	return p
}

func dropdown(t *testing.T, text string, downs int) suggest.State {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	e := suggest.NewEngine(c, suggest.Options{})
	s, _ := suggest.Reduce(suggest.NewState(suggest.EnterLiteral), suggest.TextChanged{Text: text})
	s, _ = suggest.Reduce(s, suggest.SuggestionsReady{Text: text, Items: e.Compute(text)})
	for i := 0; i < downs; i++ {
		s, _ = suggest.Reduce(s, suggest.KeyPressed{Key: suggest.KeyDown})
	}
	return s
}

func darkTheme(t *testing.T) config.ThemeConfig {
	t.Helper()
	cfg, err := config.EmbeddedDefault()
	require.NoError(t, err)
	return cfg.UI.Themes["dark"]
}
