package render

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func newParser() *parser.Parser {
	return parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
}

// MarkdownHTML converts an answer summary to HTML. Raw HTML in the source is
// dropped and only safe link schemes are kept.
func MarkdownHTML(md string) string {
	doc := newParser().Parse([]byte(md))
	opts := html.RendererOptions{Flags: html.SkipHTML | html.Safelink | html.HrefTargetBlank | html.NoopenerLinks | html.NoreferrerLinks}
	return strings.TrimSpace(string(markdown.Render(doc, html.NewRenderer(opts))))
}

// MarkdownText flattens markdown to plain paragraphs, passing strong and
// emphasized runs through emph.
func MarkdownText(md string, emph func(string) string) string {
	if emph == nil {
		emph = func(s string) string { return s }
	}
	doc := newParser().Parse([]byte(md))
	var b strings.Builder
	depth := 0
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Strong, *ast.Emph:
			if entering {
				depth++
			} else {
				depth--
			}
		case *ast.Text:
			text := strings.ReplaceAll(string(n.Literal), "\n", " ")
			if depth > 0 {
				text = emph(text)
			}
			b.WriteString(text)
		case *ast.Code:
			b.WriteString(string(n.Literal))
		case *ast.Softbreak:
			b.WriteString(" ")
		case *ast.Hardbreak:
			b.WriteString("\n")
		case *ast.Paragraph, *ast.Heading:
			if !entering {
				b.WriteString("\n\n")
			}
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(b.String())
}
