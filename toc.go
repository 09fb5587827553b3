package md2html

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.abhg.dev/goldmark/toc"
)

// KindTOCMarker is the NodeKind of TOCMarker nodes.
var KindTOCMarker = ast.NewNodeKind("TOCMarker")

// TOCMarker marks where a "[TOC]" line asks for the table of contents.
type TOCMarker struct {
	ast.BaseBlock
}

func (n *TOCMarker) Kind() ast.NodeKind {
	return KindTOCMarker
}

func (n *TOCMarker) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var tocLine = []byte("[TOC]")

type tocParser struct{}

func (b *tocParser) Trigger() []byte {
	return []byte{'['}
}

func (b *tocParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.Equal(bytes.TrimSpace(line[pos:]), tocLine) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &TOCMarker{}, parser.NoChildren
}

func (b *tocParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (b *tocParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *tocParser) CanInterruptParagraph() bool {
	return true
}

func (b *tocParser) CanAcceptIndentedLine() bool {
	return false
}

type tocRenderer struct{}

func (r *tocRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTOCMarker, r.renderTOC)
}

func (r *tocRenderer) renderTOC(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	root := node
	for root.Parent() != nil {
		root = root.Parent()
	}
	tree, err := toc.Inspect(root, source)
	if err != nil {
		tracer().Errorf("table of contents: %v", err)
		return ast.WalkSkipChildren, nil
	}
	if len(tree.Items) == 0 {
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<nav class="markdown-toc"><ul class="toc-ul toc-level-1">`)
	writeTOCItems(w, tree.Items, 1)
	_, _ = w.WriteString("</ul></nav>\n")
	return ast.WalkSkipChildren, nil
}

func writeTOCItems(w util.BufWriter, items toc.Items, depth int) {
	level := strconv.Itoa(depth)
	for _, item := range items {
		if len(item.Title) > 0 {
			_, _ = w.WriteString(`<li class="toc-li toc-level-` + level + `"><a href="#`)
			_, _ = w.Write(util.EscapeHTML(item.ID))
			_, _ = w.WriteString(`">`)
			_, _ = w.Write(util.EscapeHTML(item.Title))
			_, _ = w.WriteString(`</a></li>`)
		}
		if len(item.Items) > 0 {
			_, _ = w.WriteString(`<ul class="toc-ul toc-level-` + strconv.Itoa(depth+1) + `">`)
			writeTOCItems(w, item.Items, depth+1)
			_, _ = w.WriteString(`</ul>`)
		}
	}
}

type tocMarkers struct{}

// TOC replaces a line holding only "[TOC]" with a nested list of links to
// the document's headings.
var TOC = &tocMarkers{}

func (e *tocMarkers) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&tocParser{}, 990),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&tocRenderer{}, 200),
	))
}
