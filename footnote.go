package md2html

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Footnote is a numbered reference collected from a cited link.
type Footnote struct {
	Index int
	Title string
	Link  string
}

// ensureFootnote returns the index of the footnote for link, adding one
// when link is seen for the first time.
func (r *Renderer) ensureFootnote(title, link string) int {
	if r.footnoteIndex == nil {
		r.footnoteIndex = make(map[string]int)
	}
	if idx, ok := r.footnoteIndex[link]; ok {
		return idx
	}
	idx := len(r.footnotes) + 1
	r.footnoteIndex[link] = idx
	r.footnotes = append(r.footnotes, Footnote{Index: idx, Title: title, Link: link})
	return idx
}

// CitedLinks returns the footnotes collected from links in the last render.
func (r *Renderer) CitedLinks() []Footnote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Footnote(nil), r.footnotes...)
}

const primaryColor = "color: var(--md-primary-color);"

type footnoteRenderer struct{}

func (r *footnoteRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(east.KindFootnoteLink, r.renderFootnoteLink)
	reg.Register(east.KindFootnoteBacklink, r.renderFootnoteBacklink)
	reg.Register(east.KindFootnote, r.renderFootnote)
	reg.Register(east.KindFootnoteList, r.renderFootnoteList)
}

func (r *footnoteRenderer) renderFootnoteLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*east.FootnoteLink)
	is := strconv.Itoa(n.Index)
	_, _ = w.WriteString(`<sup style="` + primaryColor + `"><a href="#fnDef-` + is + `"`)
	if n.RefIndex == 0 {
		_, _ = w.WriteString(` id="fnRef-` + is + `"`)
	}
	_, _ = w.WriteString(`>[` + is + `]</a></sup>`)
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderFootnoteBacklink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderFootnote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.Footnote)
	is := strconv.Itoa(n.Index)
	if entering {
		_, _ = w.WriteString(`<code>` + is + `.</code> <span>`)
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`</span> <a id="fnDef-` + is + `" href="#fnRef-` + is + `" style="` + primaryColor + `">` + "↩︎" + `</a><br>` + "\n")
	return ast.WalkContinue, nil
}

func (r *footnoteRenderer) renderFootnoteList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<p style="font-size: 80%;margin: 0.5em 8px;word-break:break-all;">` + "\n")
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

type footnotes struct{}

// Footnotes adds "[^id]" references and "[^id]: text" definitions. The
// definitions are collected into a compact block at the end of the
// document.
var Footnotes = &footnotes{}

func (e *footnotes) Extend(m goldmark.Markdown) {
	extension.Footnote.Extend(m)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&footnoteRenderer{}, 200),
	))
}
