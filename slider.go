package md2html

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindSlider is the NodeKind of Slider nodes.
var KindSlider = ast.NewNodeKind("Slider")

// SliderImage is one image of a Slider.
type SliderImage struct {
	Alt string
	Src string
}

// Slider is a horizontally scrolling row of images written as
// <![alt](src),![alt](src)>.
type Slider struct {
	ast.BaseBlock
	Images []SliderImage
}

func (n *Slider) Kind() ast.NodeKind {
	return KindSlider
}

func (n *Slider) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

var (
	sliderLine  = regexp.MustCompile(`^<(!\[.*?\]\(.*?\)(?:,!\[.*?\]\(.*?\))*)>`)
	sliderImage = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
)

type sliderParser struct{}

func (b *sliderParser) Trigger() []byte {
	return []byte{'<'}
}

func (b *sliderParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}
	m := sliderLine.FindSubmatch(bytes.TrimRight(line[pos:], "\r\n"))
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &Slider{}
	for _, img := range sliderImage.FindAllSubmatch(m[1], -1) {
		node.Images = append(node.Images, SliderImage{Alt: string(img[1]), Src: string(img[2])})
	}
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (b *sliderParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (b *sliderParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *sliderParser) CanInterruptParagraph() bool {
	return true
}

func (b *sliderParser) CanAcceptIndentedLine() bool {
	return false
}

type sliderRenderer struct{}

func (r *sliderRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSlider, r.renderSlider)
}

func (r *sliderRenderer) renderSlider(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Slider)
	if len(n.Images) == 0 {
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<section style="box-sizing: border-box; font-size: 16px;">`)
	_, _ = w.WriteString(`<section data-role="outer" style="font-size: 16px;">`)
	_, _ = w.WriteString(`<section data-role="paragraph" style="margin: 0px auto; box-sizing: border-box; width: 100%;">`)
	_, _ = w.WriteString(`<section style="margin: 0px auto; text-align: center;">`)
	_, _ = w.WriteString(`<section style="display: inline-block; width: 100%;">`)
	_, _ = w.WriteString(`<section style="overflow-x: scroll; -webkit-overflow-scrolling: touch; white-space: nowrap; width: 100%; text-align: center;">`)
	for _, img := range n.Images {
		alt := escapeHTML(img.Alt)
		_, _ = w.WriteString(`<section style="display: inline-block; width: 100%; margin-right: 0; vertical-align: top;">`)
		_, _ = w.WriteString(`<img src="` + escapeHTML(img.Src) + `" alt="` + alt + `" title="` + alt + `" style="width: 100%; height: auto; border-radius: 4px; vertical-align: top;"/>`)
		_, _ = w.WriteString(`<p style="margin-top: 5px; font-size: 14px; color: #666; text-align: center; white-space: normal;">` + alt + `</p>`)
		_, _ = w.WriteString(`</section>`)
	}
	_, _ = w.WriteString(`</section></section></section></section></section>`)
	_, _ = w.WriteString(`<p style="font-size: 14px; color: #999; text-align: center; margin-top: 5px;">&lt;&lt;&lt; swipe for more &gt;&gt;&gt;</p>`)
	_, _ = w.WriteString("</section>\n")
	return ast.WalkSkipChildren, nil
}

type sliderExt struct{}

// ImageSlider adds the <![a](u),![b](v)> horizontal image slider.
var ImageSlider = &sliderExt{}

func (e *sliderExt) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&sliderParser{}, 880),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&sliderRenderer{}, 200),
	))
}
