package md2html

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Extension is a goldmark extender registered under a name.
type Extension struct {
	Name string
	goldmark.Extender
}

// Registry holds the named extensions of a Renderer. Names keep their
// registration order, but parse and render order come from the goldmark
// priorities each extension declares, not from the position in the list.
type Registry struct {
	list []Extension
}

// DefaultRegistry returns the built-in extensions.
func DefaultRegistry(math MathConverter) *Registry {
	g := &Registry{}
	g.Use("markup", InlineMarkup)
	g.Use("toc", TOC)
	g.Use("slider", ImageSlider)
	g.Use("alert", Alerts)
	g.Use("math", NewMath(math))
	g.Use("footnotes", Footnotes)
	g.Use("diagrams", Diagrams)
	g.Use("ruby", RubyAnnotations)
	return g
}

// Use registers ext under name. An extension already registered under
// name is replaced in place.
func (g *Registry) Use(name string, ext goldmark.Extender) {
	if ext == nil {
		g.Remove(name)
		return
	}
	for i := range g.list {
		if g.list[i].Name == name {
			g.list[i].Extender = ext
			return
		}
	}
	g.list = append(g.list, Extension{Name: name, Extender: ext})
}

// Remove drops the extension registered under name.
func (g *Registry) Remove(name string) {
	list := g.list[:0]
	for _, e := range g.list {
		if e.Name != name {
			list = append(list, e)
		}
	}
	g.list = list
}

// Names lists the registered extension names in order.
func (g *Registry) Names() []string {
	names := make([]string, len(g.list))
	for i, e := range g.list {
		names[i] = e.Name
	}
	return names
}

// Extenders returns the registered extenders in order.
func (g *Registry) Extenders() []goldmark.Extender {
	exts := make([]goldmark.Extender, len(g.list))
	for i, e := range g.list {
		exts[i] = e.Extender
	}
	return exts
}

// ---- Diagrams ----

// KindDiagram is the NodeKind of Diagram nodes.
var KindDiagram = ast.NewNodeKind("Diagram")

// Diagram replaces a fenced code block whose language names a diagram
// family.
type Diagram struct {
	ast.BaseBlock
	Family   Family
	Language string
	Source   string
}

func (n *Diagram) Kind() ast.NodeKind {
	return KindDiagram
}

func (n *Diagram) IsRaw() bool {
	return true
}

func (n *Diagram) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Family": string(n.Family),
		"Source": n.Source,
	}, nil)
}

type diagramTransformer struct{}

func (t *diagramTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if _, ok := familyOf(string(fcb.Language(source))); ok {
				blocks = append(blocks, fcb)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	for _, fcb := range blocks {
		lang := string(fcb.Language(source))
		family, _ := familyOf(lang)
		d := &Diagram{
			Family:   family,
			Language: lang,
			Source:   strings.TrimSpace(string(blockText(fcb, source))),
		}
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, d)
	}
}

func blockText(n ast.Node, source []byte) []byte {
	var b []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b = append(b, seg.Value(source)...)
	}
	return b
}

type diagramExt struct{}

// Diagrams turns mermaid, plantuml and infographic code blocks into
// Diagram nodes, which the Renderer serves through its DiagramCache.
var Diagrams = &diagramExt{}

func (e *diagramExt) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramTransformer{}, 100),
	))
}
