package md2html

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Ruby annotation formats.
const (
	RubyBasic    = "basic"     // [base]{ruby}
	RubyBasicHat = "basic-hat" // [base]^(ruby)
)

// KindRuby is the NodeKind of Ruby nodes.
var KindRuby = ast.NewNodeKind("Ruby")

// Ruby is a base text with a pronunciation annotation.
type Ruby struct {
	ast.BaseInline
	Base       string
	Annotation string
	Format     string
}

func (n *Ruby) Kind() ast.NodeKind {
	return KindRuby
}

func (n *Ruby) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Base":       n.Base,
		"Annotation": n.Annotation,
		"Format":     n.Format,
	}, nil)
}

var (
	rubyBasic    = regexp.MustCompile(`^\[([^\]]+)\]\{([^}]+)\}`)
	rubyBasicHat = regexp.MustCompile(`^\[([^\]]+)\]\^\(([^)]+)\)`)
	rubySplit    = regexp.MustCompile(`[・．。-]`)
)

type rubyParser struct{}

func (s *rubyParser) Trigger() []byte {
	return []byte{'['}
}

func (s *rubyParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	format := RubyBasic
	m := rubyBasic.FindSubmatch(line)
	if m == nil {
		format = RubyBasicHat
		m = rubyBasicHat.FindSubmatch(line)
	}
	if m == nil {
		return nil
	}
	base := strings.TrimSpace(string(m[1]))
	annotation := strings.TrimSpace(string(m[2]))
	if base == "" || annotation == "" {
		return nil
	}
	block.Advance(len(m[0]))
	return &Ruby{Base: base, Annotation: annotation, Format: format}
}

// RubyPair is one base/annotation group of a split ruby.
type RubyPair struct {
	Base       string
	Annotation string
}

// SplitRuby distributes a separated annotation over the characters of
// base. Each annotation part takes one character; the last part takes all
// remaining characters. When there are more parts than characters the
// extra parts are dropped. An annotation without separators yields a
// single pair. Trailing base text without an annotation is returned as
// rest.
func SplitRuby(base, annotation string) (pairs []RubyPair, rest string) {
	if !rubySplit.MatchString(annotation) {
		return []RubyPair{{Base: base, Annotation: annotation}}, ""
	}
	var parts []string
	for _, p := range rubySplit.Split(annotation, -1) {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	chars := []rune(base)
	if len(chars) < len(parts) {
		for i, c := range chars {
			pairs = append(pairs, RubyPair{Base: string(c), Annotation: parts[i]})
		}
		return pairs, ""
	}
	idx := 0
	for i, p := range parts {
		n := 1
		if i == len(parts)-1 {
			n = len(chars) - idx
		}
		pairs = append(pairs, RubyPair{Base: string(chars[idx : idx+n]), Annotation: p})
		idx += n
	}
	return pairs, string(chars[idx:])
}

type rubyRenderer struct{}

func (r *rubyRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindRuby, r.renderRuby)
}

func (r *rubyRenderer) renderRuby(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Ruby)
	pairs, rest := SplitRuby(n.Base, n.Annotation)
	for _, p := range pairs {
		base, ann := escapeHTML(p.Base), escapeHTML(p.Annotation)
		_, _ = w.WriteString(`<ruby data-text="` + base + `" data-ruby="` + ann + `" data-format="` + n.Format + `">`)
		_, _ = w.WriteString(base + `<rp>(</rp><rt>` + ann + `</rt><rp>)</rp></ruby>`)
	}
	_, _ = w.WriteString(escapeHTML(rest))
	return ast.WalkSkipChildren, nil
}

type rubyExt struct{}

// RubyAnnotations adds "[base]{ruby}" and "[base]^(ruby)" annotations. A
// backslash before the opening bracket keeps the text literal.
var RubyAnnotations = &rubyExt{}

func (e *rubyExt) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&rubyParser{}, 150),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&rubyRenderer{}, 200),
	))
}
