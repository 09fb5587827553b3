package md2html

import (
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMarkup is the NodeKind of Markup nodes.
var KindMarkup = ast.NewNodeKind("Markup")

// Markup styles.
const (
	MarkupHighlight = "highlight" // ==text==
	MarkupUnderline = "underline" // ++text++
	MarkupWavyline  = "wavyline"  // ~text~
)

// Markup is a span of text decorated with one of the markup styles.
type Markup struct {
	ast.BaseInline
	Style   string
	Content []byte
}

func (n *Markup) Kind() ast.NodeKind {
	return KindMarkup
}

func (n *Markup) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Style":   n.Style,
		"Content": string(n.Content),
	}, nil)
}

var (
	markupHighlight = regexp.MustCompile(`^==((?:[^=]|=[^=])+)==`)
	markupUnderline = regexp.MustCompile(`^\+\+((?:[^+]|\+[^+])+)\+\+`)
	markupWavyline  = regexp.MustCompile(`^~([^~\n]+)~`)
)

type markupParser struct{}

func (s *markupParser) Trigger() []byte {
	return []byte{'=', '+', '~'}
}

func (s *markupParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if len(line) < 3 {
		return nil
	}
	var (
		m     [][]byte
		style string
	)
	switch line[0] {
	case '=':
		m, style = markupHighlight.FindSubmatch(line), MarkupHighlight
	case '+':
		m, style = markupUnderline.FindSubmatch(line), MarkupUnderline
	case '~':
		if line[1] == '~' {
			return nil
		}
		m, style = markupWavyline.FindSubmatch(line), MarkupWavyline
		if m != nil && len(line) > len(m[0]) && line[len(m[0])] == '~' {
			return nil
		}
	}
	if m == nil {
		return nil
	}
	block.Advance(len(m[0]))
	return &Markup{Style: style, Content: m[1]}
}

type markupRenderer struct{}

func (r *markupRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMarkup, r.renderMarkup)
}

func (r *markupRenderer) renderMarkup(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Markup)
	_, _ = w.WriteString(`<span class="markup-` + n.Style + `">`)
	_, _ = w.Write(util.EscapeHTML(n.Content))
	_, _ = w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}

type markupExt struct{}

// InlineMarkup adds ==highlight==, ++underline++ and ~wavy line~ spans.
var InlineMarkup = &markupExt{}

func (e *markupExt) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&markupParser{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&markupRenderer{}, 200),
	))
}
