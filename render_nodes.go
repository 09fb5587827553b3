package md2html

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// nodeRenderer maps goldmark nodes to the styled HTML of a Renderer. It
// is registered ahead of goldmark's own HTML renderer so that it wins for
// every kind it registers.
type nodeRenderer struct {
	r *Renderer
}

func (nr *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, nr.renderHeading)
	reg.Register(ast.KindParagraph, nr.renderParagraph)
	reg.Register(ast.KindBlockquote, nr.renderBlockquote)
	reg.Register(ast.KindCodeBlock, nr.renderCodeBlock)
	reg.Register(ast.KindFencedCodeBlock, nr.renderCodeBlock)
	reg.Register(ast.KindCodeSpan, nr.renderCodeSpan)
	reg.Register(ast.KindList, nr.renderList)
	reg.Register(ast.KindListItem, nr.renderListItem)
	reg.Register(ast.KindImage, nr.renderImage)
	reg.Register(ast.KindLink, nr.renderLink)
	reg.Register(ast.KindAutoLink, nr.renderAutoLink)
	reg.Register(ast.KindEmphasis, nr.renderEmphasis)
	reg.Register(ast.KindThematicBreak, nr.renderThematicBreak)
	reg.Register(east.KindTable, nr.renderTable)
	reg.Register(east.KindTableHeader, nr.renderTableHeader)
	reg.Register(east.KindTableRow, nr.renderTableRow)
	reg.Register(east.KindTableCell, nr.renderTableCell)
	reg.Register(KindDiagram, nr.renderDiagram)
}

var htmlEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&#39;",
	"`", "&#96;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// ---- Blocks ----

func (nr *nodeRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	tag := "h" + strconv.Itoa(clampHeading(n.Level))
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag + ` class="md-` + tag + `" data-heading="true"`)
	if id, ok := n.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok {
			_, _ = w.WriteString(` id="` + escapeHTML(string(b)) + `"`)
		}
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func clampHeading(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}

func (nr *nodeRenderer) renderParagraph(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !wrapParagraph(node, source) {
		if !entering && node.NextSibling() != nil {
			_ = w.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}
	if entering {
		_, _ = w.WriteString(`<p class="md-p">`)
	} else {
		_, _ = w.WriteString("</p>\n")
	}
	return ast.WalkContinue, nil
}

// wrapParagraph reports whether a paragraph gets its own <p>. Blank
// paragraphs, image figures, the first paragraph of a list item and
// footnote definitions render their inline content directly.
func wrapParagraph(n ast.Node, source []byte) bool {
	if isBlankParagraph(n, source) || containsImage(n) {
		return false
	}
	if p := n.Parent(); p != nil && p.Kind() == ast.KindListItem && p.FirstChild() == n {
		return false
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == east.KindFootnote {
			return false
		}
	}
	return true
}

func isBlankParagraph(n ast.Node, source []byte) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			if len(bytes.TrimSpace(t.Value(source))) > 0 {
				return false
			}
		case *ast.String:
			if len(bytes.TrimSpace(t.Value)) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func containsImage(n ast.Node) bool {
	found := false
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && c.Kind() == ast.KindImage {
			found = true
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

func (nr *nodeRenderer) renderBlockquote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<blockquote class="md-blockquote">` + "\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderThematicBreak(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<section class="md-hr"></section>` + "\n")
	}
	return ast.WalkContinue, nil
}

// ---- Code ----

const macSign = `<span class="mac-sign" style="padding: 10px 14px 0;">` +
	`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" x="0px" y="0px" width="45px" height="13px" viewBox="0 0 450 130">` +
	`<ellipse cx="50" cy="65" rx="50" ry="52" stroke="rgb(220,60,54)" stroke-width="2" fill="rgb(237,108,96)"/>` +
	`<ellipse cx="225" cy="65" rx="50" ry="52" stroke="rgb(218,151,33)" stroke-width="2" fill="rgb(247,193,81)"/>` +
	`<ellipse cx="400" cy="65" rx="50" ry="52" stroke="rgb(27,161,37)" stroke-width="2" fill="rgb(100,200,86)"/>` +
	`</svg></span>`

func (nr *nodeRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	lang := ""
	if fcb, ok := node.(*ast.FencedCodeBlock); ok {
		lang = string(fcb.Language(source))
	}
	code := strings.TrimRight(string(blockText(node, source)), "\n")
	if f, ok := familyOf(lang); ok && f == FamilyMermaid {
		nr.writeMermaid(w, code)
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(nr.r.codeBlock(code, lang))
	return ast.WalkSkipChildren, nil
}

// codeBlock highlights code when its language is registered. Otherwise the
// code is highlighted as plain text and marked pending so that
// Highlighter.HighlightPendingBlocks can upgrade it later.
func (r *Renderer) codeBlock(code, lang string) string {
	name := strings.ToLower(strings.TrimSpace(lang))
	if name == "" {
		name = "plaintext"
	}
	h := r.highlighter
	lineNumbers := r.opts.LineNumbers
	pending := ""
	if !h.IsRegistered(name) {
		if name != "plaintext" {
			pending = ` data-language-pending="` + escapeHTML(name) + `" data-raw-code="` + escapeHTML(code) + `" data-show-line-number="` + strconv.FormatBool(lineNumbers) + `"`
		}
		name = "plaintext"
	}
	body, err := h.Highlight(code, name, lineNumbers)
	if err != nil {
		tracer().Debugf("highlight %q: %v", name, err)
		body = escapeHTML(code)
	}
	var b strings.Builder
	b.WriteString(`<pre class="hljs code__pre">`)
	if r.opts.MacCodeBlock {
		b.WriteString(macSign)
	}
	b.WriteString(`<code class="language-` + escapeHTML(lang) + ` chroma"` + pending + `>`)
	b.WriteString(body)
	b.WriteString("</code></pre>\n")
	return b.String()
}

func (nr *nodeRenderer) writeMermaid(w util.BufWriter, code string) {
	_, _ = w.WriteString(`<pre class="mermaid">` + escapeHTML(code) + "</pre>\n")
	nr.r.kick.Trigger()
}

func (nr *nodeRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var b bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			v := t.Segment.Value(source)
			if bytes.HasSuffix(v, []byte("\n")) {
				b.Write(v[:len(v)-1])
				b.WriteByte(' ')
			} else {
				b.Write(v)
			}
		case *ast.String:
			b.Write(t.Value)
		}
	}
	_, _ = w.WriteString(`<code class="md-codespan">` + escapeHTML(b.String()) + `</code>`)
	return ast.WalkSkipChildren, nil
}

// ---- Diagrams ----

func (nr *nodeRenderer) renderDiagram(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Diagram)
	r := nr.r
	switch {
	case r.diagrams != nil && r.diagrams.HasRenderer(n.Family):
		markup, job := r.diagrams.Placeholder(n.Family, n.Source)
		if job != nil {
			r.pending = append(r.pending, job)
		}
		_, _ = w.WriteString(r.protected.protect(markup) + "\n")
	case n.Family == FamilyMermaid:
		nr.writeMermaid(w, n.Source)
	case n.Family == FamilyPlantUML:
		_, _ = w.WriteString(plantUMLImage(r.plantUML, n.Source) + "\n")
	default:
		_, _ = w.WriteString(r.codeBlock(n.Source, n.Language))
	}
	return ast.WalkSkipChildren, nil
}

// ---- Lists ----

type listFrame struct {
	ordered bool
	counter int
}

func (nr *nodeRenderer) renderList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	r := nr.r
	if !entering {
		if len(r.lists) > 0 {
			r.lists = r.lists[:len(r.lists)-1]
		}
		if n.IsOrdered() {
			_, _ = w.WriteString("</ol>\n")
		} else {
			_, _ = w.WriteString("</ul>\n")
		}
		return ast.WalkContinue, nil
	}
	frame := listFrame{ordered: n.IsOrdered(), counter: 1}
	if n.IsOrdered() && n.Start > 0 {
		frame.counter = n.Start
	}
	r.lists = append(r.lists, frame)
	if n.IsOrdered() {
		_, _ = w.WriteString(`<ol class="md-ol">` + "\n")
	} else {
		_, _ = w.WriteString(`<ul class="md-ul">` + "\n")
	}
	return ast.WalkContinue, nil
}

// listPrefix reads and advances the counter of the innermost list.
func (r *Renderer) listPrefix() string {
	if len(r.lists) == 0 {
		return "• "
	}
	top := &r.lists[len(r.lists)-1]
	if !top.ordered {
		return "• "
	}
	prefix := strconv.Itoa(top.counter) + ". "
	top.counter++
	return prefix
}

func (nr *nodeRenderer) renderListItem(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<li class="md-listitem">` + nr.r.listPrefix())
	} else {
		_, _ = w.WriteString("</li>\n")
	}
	return ast.WalkContinue, nil
}

// ---- Inlines ----

func (nr *nodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	r := nr.r
	dest := string(n.Destination)
	title := string(n.Title)
	alt := plainText(n, source)
	caption := r.opts.Legend.caption(alt, title)

	_, _ = w.WriteString(`<figure><img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" title="` + escapeHTML(title) + `" alt="` + escapeHTML(alt) + `"`)
	if r.opts.ImageSizes && r.images != nil {
		if size, err := r.images.Probe(dest, r.opts.BaseDir); err == nil {
			_, _ = w.WriteString(` width="` + strconv.Itoa(size.Width) + `" height="` + strconv.Itoa(size.Height) + `"`)
		} else {
			tracer().Debugf("image size %s: %v", dest, err)
		}
	}
	_, _ = w.WriteString(`/><figcaption class="md-figcaption">` + escapeHTML(caption) + `</figcaption></figure>`)
	return ast.WalkSkipChildren, nil
}

// weixinArticle matches links into the host platform's own articles.
var weixinArticle = regexp.MustCompile(`^https?://mp\.weixin\.qq\.com`)

type linkMode int

const (
	linkAnchor linkMode = iota
	linkText
	linkCite
)

func (r *Renderer) linkMode(href, text string) linkMode {
	switch {
	case weixinArticle.MatchString(href):
		return linkAnchor
	case text == href:
		return linkText
	case r.opts.Cite:
		return linkCite
	}
	return linkAnchor
}

func (nr *nodeRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	r := nr.r
	href := string(n.Destination)
	text := plainText(n, source)
	mode := r.linkMode(href, text)
	if entering {
		if mode == linkAnchor {
			title := string(n.Title)
			if title == "" {
				title = text
			}
			_, _ = w.WriteString(`<a href="`)
			_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
			_, _ = w.WriteString(`" title="` + escapeHTML(title) + `">`)
		}
		return ast.WalkContinue, nil
	}
	switch mode {
	case linkAnchor:
		_, _ = w.WriteString("</a>")
	case linkCite:
		title := string(n.Title)
		if title == "" {
			title = text
		}
		idx := r.ensureFootnote(title, href)
		_, _ = w.WriteString(`<sup>[` + strconv.Itoa(idx) + `]</sup>`)
	}
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.AutoLink)
	url, label := n.URL(source), n.Label(source)
	if nr.r.linkMode(string(url), string(label)) == linkText {
		_, _ = w.Write(util.EscapeHTML(label))
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(url, false)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkSkipChildren, nil
}

func (nr *nodeRenderer) renderEmphasis(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	tag, class := "em", "md-em"
	if n.Level == 2 {
		tag, class = "strong", "md-strong"
	}
	if entering {
		_, _ = w.WriteString("<" + tag + ` class="` + class + `">`)
	} else {
		_, _ = w.WriteString("</" + tag + ">")
	}
	return ast.WalkContinue, nil
}

// plainText concatenates the text of n's descendants.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		case *ast.CodeSpan:
			b.WriteString(plainText(t, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// ---- Tables ----

func (nr *nodeRenderer) renderTable(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<section style="max-width: 100%; overflow: auto"><table class="preview-table">` + "\n")
		return ast.WalkContinue, nil
	}
	if node.LastChild() != nil && node.LastChild().Kind() == east.KindTableRow {
		_, _ = w.WriteString("</tbody>\n")
	}
	_, _ = w.WriteString("</table></section>\n")
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderTableHeader(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<thead>` + "\n" + `<tr class="md-tr">` + "\n")
	} else {
		_, _ = w.WriteString("</tr>\n</thead>\n")
	}
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderTableRow(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</tr>\n")
		return ast.WalkContinue, nil
	}
	if prev := node.PreviousSibling(); prev != nil && prev.Kind() == east.KindTableHeader {
		_, _ = w.WriteString("<tbody>\n")
	}
	_, _ = w.WriteString(`<tr class="md-tr">` + "\n")
	return ast.WalkContinue, nil
}

func (nr *nodeRenderer) renderTableCell(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.TableCell)
	tag := "td"
	if node.Parent() != nil && node.Parent().Kind() == east.KindTableHeader {
		tag = "th"
	}
	if !entering {
		_, _ = w.WriteString("</" + tag + ">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("<" + tag + ` class="md-` + tag + `"`)
	if n.Alignment != east.AlignNone {
		_, _ = w.WriteString(` style="text-align: ` + n.Alignment.String() + `"`)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}
