package md2html

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MathConverter turns TeX into HTML. display selects display style over
// inline style.
type MathConverter interface {
	Convert(w io.Writer, tex []byte, display bool) error
}

// MathConverterFunc adapts a function to MathConverter.
type MathConverterFunc func(w io.Writer, tex []byte, display bool) error

func (f MathConverterFunc) Convert(w io.Writer, tex []byte, display bool) error {
	return f(w, tex, display)
}

// PassthroughMath writes the escaped TeX between \( \) or \[ \] so that a
// KaTeX or MathJax runtime in the host page can typeset it.
var PassthroughMath = MathConverterFunc(func(w io.Writer, tex []byte, display bool) error {
	start, end := `\(`, `\)`
	if display {
		start, end = `\[`, `\]`
	}
	if _, err := io.WriteString(w, start); err != nil {
		return err
	}
	if _, err := w.Write(util.EscapeHTML(tex)); err != nil {
		return err
	}
	_, err := io.WriteString(w, end)
	return err
})

// KindMath is the NodeKind of inline Math nodes.
var KindMath = ast.NewNodeKind("Math")

// Math is an inline formula. A $$…$$ span inside a paragraph is still
// inline in the tree but is typeset in display style.
type Math struct {
	ast.BaseInline
	TeX     []byte
	Display bool
}

func (n *Math) Kind() ast.NodeKind {
	return KindMath
}

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"TeX":     string(n.TeX),
		"Display": boolString(n.Display),
	}, nil)
}

// KindMathBlock is the NodeKind of MathBlock nodes.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is a formula fenced by $$, $ or \[ \] lines.
type MathBlock struct {
	ast.BaseBlock
	Display bool
	closing []byte
}

func (n *MathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

func (n *MathBlock) IsRaw() bool {
	return true
}

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": boolString(n.Display),
	}, nil)
}

// TeX returns the formula source without its fences.
func (n *MathBlock) TeX(source []byte) []byte {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return bytes.TrimSpace(b.Bytes())
}

// ---- Inline ----

var inlineLatexMath = regexp.MustCompile(`^\\\(([^\\]*(?:\\.[^\\]*)*?)\\\)`)

// mathBoundary lists the characters besides white space that may follow
// a closing dollar delimiter.
const mathBoundary = "?!.,:？！。，："

type mathInlineParser struct{}

func (s *mathInlineParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (s *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if bytes.HasPrefix(line, []byte(`\(`)) {
		m := inlineLatexMath.FindSubmatch(line)
		if m == nil {
			return nil
		}
		block.Advance(len(m[0]))
		return &Math{TeX: bytes.TrimSpace(m[1])}
	}
	delim := 1
	if bytes.HasPrefix(line, []byte("$$")) {
		delim = 2
	}
	if len(line) <= delim || line[0] != '$' || line[delim] == '$' {
		return nil
	}
	tex, end, ok := scanDollarMath(line, delim)
	if !ok {
		return nil
	}
	block.Advance(end)
	return &Math{TeX: bytes.TrimSpace(tex), Display: delim == 2}
}

// scanDollarMath finds the closing delimiter of a formula opened by delim
// dollar signs. The formula must not end in an unescaped dollar sign and
// the closing delimiter must be followed by white space, punctuation or
// the end of the line.
func scanDollarMath(line []byte, delim int) ([]byte, int, bool) {
	closing := line[:delim]
	lastDollar := false
	for i := delim; i < len(line) && line[i] != '\n'; {
		if i > delim && !lastDollar && bytes.HasPrefix(line[i:], closing) && atMathBoundary(line[i+delim:]) {
			return line[delim:i], i + delim, true
		}
		if line[i] == '\\' {
			if i+1 >= len(line) || line[i+1] == '\n' {
				return nil, 0, false
			}
			lastDollar = false
			i += 2
			continue
		}
		lastDollar = line[i] == '$'
		i++
	}
	return nil, 0, false
}

func atMathBoundary(rest []byte) bool {
	if len(rest) == 0 {
		return true
	}
	r, _ := utf8.DecodeRune(rest)
	return unicode.IsSpace(r) || strings.ContainsRune(mathBoundary, r)
}

// ---- Block ----

var (
	mathFence       = regexp.MustCompile(`^(\${1,2})[ \t]*$`)
	latexBlockOpen  = []byte(`\[`)
	latexBlockClose = []byte(`\]`)
)

type mathBlockParser struct{}

func (b *mathBlockParser) Trigger() []byte {
	return []byte{'$', '\\'}
}

func (b *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}
	rest := bytes.TrimRight(line[pos:], " \t\r\n")
	if bytes.HasPrefix(rest, latexBlockOpen) {
		node := &MathBlock{Display: true, closing: latexBlockClose}
		inner := rest[len(latexBlockOpen):]
		start := segment.Start + pos + len(latexBlockOpen)
		if bytes.HasSuffix(inner, latexBlockClose) {
			node.Lines().Append(text.NewSegment(start, start+len(inner)-len(latexBlockClose)))
			reader.Advance(segment.Len() - 1)
			node.closing = nil
			return node, parser.NoChildren
		}
		if !hasMathClose(reader.Source()[segment.Stop:], latexBlockClose) {
			return nil, parser.NoChildren
		}
		if len(bytes.TrimSpace(inner)) > 0 {
			node.Lines().Append(text.NewSegment(start, segment.Stop))
		}
		reader.Advance(segment.Len() - 1)
		return node, parser.NoChildren
	}
	m := mathFence.FindSubmatch(rest)
	if m == nil {
		return nil, parser.NoChildren
	}
	fence := append([]byte(nil), m[1]...)
	if !hasMathClose(reader.Source()[segment.Stop:], fence) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &MathBlock{Display: len(fence) == 2, closing: fence}, parser.NoChildren
}

// hasMathClose reports whether a later line ends the block.
func hasMathClose(rest, closing []byte) bool {
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			rest = nil
		}
		line = bytes.TrimSpace(line)
		if bytes.Equal(closing, latexBlockClose) {
			if bytes.HasSuffix(line, closing) {
				return true
			}
		} else if bytes.Equal(line, closing) {
			return true
		}
	}
	return false
}

func (b *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	n := node.(*MathBlock)
	if n.closing == nil {
		return parser.Close
	}
	line, segment := reader.PeekLine()
	trimmed := bytes.TrimSpace(line)
	newline := 0
	if len(line) > 0 && line[len(line)-1] == '\n' {
		newline = 1
	}
	if bytes.Equal(n.closing, latexBlockClose) && bytes.HasSuffix(trimmed, latexBlockClose) {
		end := bytes.LastIndex(line, latexBlockClose)
		if end > 0 {
			n.Lines().Append(text.NewSegment(segment.Start, segment.Start+end))
		}
		reader.Advance(segment.Len() - newline)
		n.closing = nil
		return parser.Close
	}
	if bytes.Equal(trimmed, n.closing) {
		reader.Advance(segment.Len() - newline)
		n.closing = nil
		return parser.Close
	}
	n.Lines().Append(segment)
	reader.Advance(segment.Len() - newline)
	return parser.Continue | parser.NoChildren
}

func (b *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (b *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

// ---- Rendering ----

type mathRenderer struct {
	converter MathConverter
}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
	reg.Register(KindMathBlock, r.renderMathBlock)
}

func (r *mathRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Math)
	r.write(w, n.TeX, n.Display)
	return ast.WalkSkipChildren, nil
}

func (r *mathRenderer) renderMathBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathBlock)
	r.write(w, n.TeX(source), n.Display)
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// write converts tex into a scratch buffer. A converter failure is logged
// and the TeX source is shown in an error span instead.
func (r *mathRenderer) write(w util.BufWriter, tex []byte, display bool) {
	start, end := `<span class="inline_katex">`, `</span>`
	if display {
		start, end = `<section class="block_katex">`, `</section>`
	}
	_, _ = w.WriteString(start)
	var buf bytes.Buffer
	if err := r.converter.Convert(&buf, tex, display); err != nil {
		tracer().Errorf("md2html: math: %v", err)
		_, _ = w.WriteString(`<span class="katex-error" title="` + escapeHTML(err.Error()) + `">`)
		_, _ = w.Write(util.EscapeHTML(tex))
		_, _ = w.WriteString(`</span>`)
	} else {
		_, _ = w.Write(buf.Bytes())
	}
	_, _ = w.WriteString(end)
}

type mathExt struct {
	converter MathConverter
}

// NewMath returns the math extension. A nil converter uses PassthroughMath.
func NewMath(c MathConverter) goldmark.Extender {
	if c == nil {
		c = PassthroughMath
	}
	return &mathExt{converter: c}
}

func (e *mathExt) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 720)),
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 100)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathRenderer{converter: e.converter}, 200),
	))
}
