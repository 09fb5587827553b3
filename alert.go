package md2html

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type alertVariant struct {
	Type  string
	Title string
	Icon  string
}

func lookupAlertVariant(name string) (alertVariant, bool) {
	name = strings.ToLower(name)
	for _, v := range alertVariants {
		if v.Type == name {
			return v, true
		}
	}
	return alertVariant{}, false
}

var titleCaser = cases.Title(language.Und)

// KindAlert is the NodeKind of Alert nodes.
var KindAlert = ast.NewNodeKind("Alert")

// Alert is a callout block. Both the blockquote form "> [!TIP]" and the
// container form ":::tip" produce one.
type Alert struct {
	ast.BaseBlock
	Variant       string
	Title         string
	Icon          string
	FromContainer bool
}

func (n *Alert) Kind() ast.NodeKind {
	return KindAlert
}

func (n *Alert) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Variant":       n.Variant,
		"Title":         n.Title,
		"FromContainer": boolString(n.FromContainer),
	}, nil)
}

// NewAlert creates an Alert for a known variant.
func NewAlert(variant string, fromContainer bool) (*Alert, bool) {
	v, ok := lookupAlertVariant(variant)
	if !ok {
		return nil, false
	}
	title := v.Title
	if title == "" {
		title = titleCaser.String(v.Type)
	}
	return &Alert{
		Variant:       v.Type,
		Title:         title,
		Icon:          alertIcon(v),
		FromContainer: fromContainer,
	}, true
}

func alertIcon(v alertVariant) string {
	path, ok := octiconPaths[v.Icon]
	if !ok {
		return ""
	}
	return `<svg class="alert-icon-` + v.Type + ` octicon octicon-` + v.Icon +
		`" style="margin-right: 0.25em;" viewBox="0 0 16 16" width="16" height="16" aria-hidden="true"><path d="` +
		path + `"></path></svg>`
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ---- Blockquote form ----

var alertMarker = regexp.MustCompile(`^\[!(\w+)\]`)

type alertQuoteParser struct{}

func (b *alertQuoteParser) Trigger() []byte {
	return []byte{'>'}
}

func (b *alertQuoteParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 || pos >= len(line) || line[pos] != '>' {
		return nil, parser.NoChildren
	}
	pos++
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	m := alertMarker.FindSubmatch(line[pos:])
	if m == nil {
		return nil, parser.NoChildren
	}
	node, ok := NewAlert(string(m[1]), false)
	if !ok {
		return nil, parser.NoChildren
	}
	pos += len(m[0])
	for pos < len(line) && (line[pos] == ' ' || line[pos] == '\t') {
		pos++
	}
	reader.Advance(pos)
	return node, parser.HasChildren
}

func (b *alertQuoteParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	w, pos := util.IndentWidth(line, reader.LineOffset())
	if w > 3 || pos >= len(line) || line[pos] != '>' {
		return parser.Close
	}
	pos++
	if pos >= len(line) || line[pos] == '\n' {
		reader.Advance(pos)
		return parser.Continue | parser.HasChildren
	}
	reader.Advance(pos)
	if line[pos] == ' ' || line[pos] == '\t' {
		padding := 0
		if line[pos] == '\t' {
			padding = util.TabWidth(reader.LineOffset()) - 1
		}
		reader.AdvanceAndSetPadding(1, padding)
	}
	return parser.Continue | parser.HasChildren
}

func (b *alertQuoteParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *alertQuoteParser) CanInterruptParagraph() bool {
	return true
}

func (b *alertQuoteParser) CanAcceptIndentedLine() bool {
	return false
}

// ---- Container form ----

var (
	containerOpen  = regexp.MustCompile(`^:::\s*(\w+)\s*$`)
	containerFence = []byte(":::")
)

type alertContainerParser struct{}

func (b *alertContainerParser) Trigger() []byte {
	return []byte{':'}
}

func (b *alertContainerParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}
	m := containerOpen.FindSubmatch(bytes.TrimRight(line[pos:], "\r\n"))
	if m == nil {
		return nil, parser.NoChildren
	}
	if !hasClosingFence(reader.Source()[segment.Stop:]) {
		return nil, parser.NoChildren
	}
	node, ok := NewAlert(string(m[1]), true)
	if !ok {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.HasChildren
}

func hasClosingFence(rest []byte) bool {
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			rest = nil
		}
		if bytes.Equal(bytes.TrimSpace(line), containerFence) {
			return true
		}
	}
	return false
}

func (b *alertContainerParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if bytes.Equal(bytes.TrimSpace(line), containerFence) {
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

func (b *alertContainerParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *alertContainerParser) CanInterruptParagraph() bool {
	return true
}

func (b *alertContainerParser) CanAcceptIndentedLine() bool {
	return false
}

// ---- Rendering ----

type alertRenderer struct{}

func (r *alertRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAlert, r.renderAlert)
}

func (r *alertRenderer) renderAlert(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Alert)
	if !entering {
		_, _ = w.WriteString("</blockquote>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<blockquote class="markdown-alert markdown-alert-` + n.Variant + "\">\n")
	_, _ = w.WriteString(`<p class="markdown-alert-title alert-title-` + n.Variant + `">`)
	_, _ = w.WriteString(n.Icon)
	_, _ = w.WriteString(escapeHTML(n.Title))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

type alerts struct{}

// Alerts renders GitHub alerts and Obsidian callouts in both blockquote
// and ":::" container syntax. Unknown types stay ordinary blockquotes.
var Alerts = &alerts{}

func (e *alerts) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&alertQuoteParser{}, 790),
		util.Prioritized(&alertContainerParser{}, 710),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&alertRenderer{}, 200),
	))
}
