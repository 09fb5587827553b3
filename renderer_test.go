package md2html

import (
	"context"
	"strings"
	"testing"

	"github.com/arran4/md2html/theme"
)

func renderBody(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	r := New(opts...)
	defer r.Close()
	out, err := r.RenderBody([]byte(src))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return out
}

func expectContains(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(out, p) {
			t.Fatalf("expected output to contain %q, got:\n%s", p, out)
		}
	}
}

func expectMissing(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(out, p) {
			t.Fatalf("expected output not to contain %q, got:\n%s", p, out)
		}
	}
}

func TestRenderHeadingsAndParagraphs(t *testing.T) {
	out := renderBody(t, "# Title\n\nHello *there* **you**\n\n###### Six\n")
	expectContains(t, out,
		`<h1 class="md-h1" data-heading="true" id="title">Title</h1>`,
		`<p class="md-p">Hello <em class="md-em">there</em> <strong class="md-strong">you</strong></p>`,
		`<h6 class="md-h6" data-heading="true" id="six">Six</h6>`,
	)
}

func TestClampHeading(t *testing.T) {
	cases := map[int]int{-1: 1, 0: 1, 1: 1, 3: 3, 6: 6, 9: 6}
	for in, want := range cases {
		if got := clampHeading(in); got != want {
			t.Fatalf("clampHeading(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRenderBlockquoteRuleAndCodespan(t *testing.T) {
	out := renderBody(t, "> quoted\n\n***\n\nuse `a<b` here\n")
	expectContains(t, out,
		`<blockquote class="md-blockquote">`,
		`<p class="md-p">quoted</p>`,
		`<section class="md-hr"></section>`,
		`<code class="md-codespan">a&lt;b</code>`,
	)
}

func TestNestedOrderedListsRestartNumbering(t *testing.T) {
	out := renderBody(t, "1. a\n2. b\n   1. c\n   2. d\n3. e\n\n- x\n- y\n")
	expectContains(t, out,
		`<ol class="md-ol">`,
		`<li class="md-listitem">1. a`,
		`<li class="md-listitem">2. b`,
		`<li class="md-listitem">1. c`,
		`<li class="md-listitem">2. d`,
		`<li class="md-listitem">3. e`,
		`<ul class="md-ul">`,
		`<li class="md-listitem">• x`,
	)
	if strings.Index(out, "1. c") > strings.Index(out, "3. e") {
		t.Fatalf("expected nested list before the third item, got:\n%s", out)
	}
}

func TestOrderedListStart(t *testing.T) {
	out := renderBody(t, "4. four\n5. five\n")
	expectContains(t, out, `<li class="md-listitem">4. four`, `<li class="md-listitem">5. five`)
}

func TestRenderTable(t *testing.T) {
	out := renderBody(t, "| a | b | c |\n|:--|--:|---|\n| 1 | 2 | 3 |\n")
	expectContains(t, out,
		`<section style="max-width: 100%; overflow: auto"><table class="preview-table">`,
		`<thead>`,
		`<th class="md-th" style="text-align: left">a</th>`,
		`<th class="md-th" style="text-align: right">b</th>`,
		`<th class="md-th">c</th>`,
		`<tbody>`,
		`<td class="md-td" style="text-align: right">2</td>`,
		`</tbody>`,
		`</table></section>`,
	)
}

func TestRenderCodeBlocks(t *testing.T) {
	out := renderBody(t, "```go\nfmt.Println(1)\n```\n")
	expectContains(t, out, `<pre class="hljs code__pre">`, `class="mac-sign"`, `<code class="language-go chroma">`, `Println`)
	expectMissing(t, out, "data-language-pending")

	out = renderBody(t, "```zzlang\nx := 1\n```\n", WithMacCodeBlock(false))
	expectContains(t, out, `data-language-pending="zzlang"`, `data-raw-code="x := 1"`, `data-show-line-number="false"`)
	expectMissing(t, out, "mac-sign")

	out = renderBody(t, "```go\na\nb\n```\n", WithLineNumbers(true))
	expectContains(t, out, `class="line-numbers"`, `>1</section>`, `>2</section>`)
}

func TestRenderMermaidWithoutRenderer(t *testing.T) {
	out := renderBody(t, "```mermaid\ngraph TD;A-->B\n```\n")
	expectContains(t, out, `<pre class="mermaid">graph TD;A--&gt;B</pre>`)
}

func TestRenderPlantUMLFallbackImage(t *testing.T) {
	out := renderBody(t, "```plantuml\nA -> B\n```\n")
	expectContains(t, out, `class="plantuml-diagram"`, `<img src="https://www.plantuml.com/plantuml/svg/`)
}

func TestImageLegend(t *testing.T) {
	src := "![cap](a.png \"t\")\n"
	cases := []struct {
		legend Legend
		want   string
	}{
		{LegendAlt, "cap"},
		{LegendTitle, "t"},
		{LegendAltTitle, "cap"},
		{LegendTitleAlt, "t"},
		{LegendNone, ""},
	}
	for _, c := range cases {
		out := renderBody(t, src, WithLegend(c.legend))
		expectContains(t, out,
			`<figure><img src="a.png" title="t" alt="cap"/>`,
			`<figcaption class="md-figcaption">`+c.want+`</figcaption></figure>`,
		)
		expectMissing(t, out, `<p class="md-p">`)
	}
	if got := ParseLegend("bogus"); got != LegendAlt {
		t.Fatalf("expected unknown legend to fall back to alt, got %q", got)
	}
	if got := LegendTitleAlt.caption("cap", ""); got != "cap" {
		t.Fatalf("expected title-alt to fall back to alt, got %q", got)
	}
}

func TestLinksAndCitations(t *testing.T) {
	src := "[a](https://x.com) and [b](https://x.com) and [c](https://y.com \"Why\") and [w](https://mp.weixin.qq.com/s/abc)\n"

	out := renderBody(t, src)
	expectContains(t, out, `<a href="https://x.com" title="a">a</a>`, `<a href="https://y.com" title="Why">c</a>`)

	r := New(WithCite(true))
	defer r.Close()
	out, err := r.RenderBody([]byte(src))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectContains(t, out,
		`a<sup>[1]</sup>`,
		`b<sup>[1]</sup>`,
		`c<sup>[2]</sup>`,
		`<a href="https://mp.weixin.qq.com/s/abc" title="w">w</a>`,
	)
	expectMissing(t, out, `href="https://x.com"`)
	cited := r.CitedLinks()
	if len(cited) != 2 {
		t.Fatalf("expected 2 cited links, got %v", cited)
	}
	if cited[0] != (Footnote{Index: 1, Title: "a", Link: "https://x.com"}) {
		t.Fatalf("unexpected first footnote %+v", cited[0])
	}
	if cited[1] != (Footnote{Index: 2, Title: "Why", Link: "https://y.com"}) {
		t.Fatalf("unexpected second footnote %+v", cited[1])
	}
}

func TestLinkWithURLAsText(t *testing.T) {
	out := renderBody(t, "see [https://x.com](https://x.com) and <https://y.com>\n", WithCite(true))
	expectContains(t, out, "see https://x.com and https://y.com")
	expectMissing(t, out, "<a ", "<sup>")
}

func TestRenderWrapsDocument(t *testing.T) {
	r := New(WithCount(true))
	defer r.Close()
	res, err := r.Render([]byte("---\ntitle: T\n---\nhello world\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(res.HTML, `<section class="md-container">`) || !strings.HasSuffix(res.HTML, `</section>`) {
		t.Fatalf("expected md-container wrapper, got:\n%s", res.HTML)
	}
	expectContains(t, res.HTML, "2 words, about 1 min read", `display: flex;`)
	expectMissing(t, res.HTML, "title: T", "References")
	if res.FrontMatter.String("title") != "T" {
		t.Fatalf("expected front matter title, got %v", res.FrontMatter)
	}
	if res.ReadingTime.Words != 2 {
		t.Fatalf("expected 2 words, got %d", res.ReadingTime.Words)
	}

	r.SetOptions(WithCount(false), WithMacCodeBlock(false), WithCite(true))
	res, err = r.Render([]byte("hello [world](https://x.com)\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectMissing(t, res.HTML, "min read")
	expectContains(t, res.HTML,
		`display: none;`,
		`<h4 class="md-h4" data-heading="true">References</h4>`,
		`[1]</code> world: <i style="word-break: break-all">https://x.com</i>`,
	)

	if _, err := r.Render([]byte("plain\n")); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(r.CitedLinks()) != 0 {
		t.Fatalf("expected footnotes to be reset between renders")
	}
}

func TestRenderMalformedFrontMatterKeepsBody(t *testing.T) {
	src := "---\ntitle: \"unclosed\n---\nbody text\n"
	if _, _, err := SplitFrontMatter([]byte(src)); err == nil {
		t.Fatalf("expected the front matter block to be rejected")
	}
	r := New()
	defer r.Close()
	res, err := r.Render([]byte(src))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if res.FrontMatter != nil {
		t.Fatalf("expected no front matter, got %v", res.FrontMatter)
	}
	expectContains(t, res.HTML, "unclosed", "body text")
}

func TestOptionsResetAndSet(t *testing.T) {
	r := New(WithCite(true), WithLegend(LegendNone), WithMacCodeBlock(false))
	defer r.Close()
	if o := r.Options(); !o.Cite || o.Legend != LegendNone {
		t.Fatalf("unexpected options %+v", o)
	}
	r.SetOptions(WithJustify(true))
	if o := r.Options(); !o.Cite || !o.Justify {
		t.Fatalf("expected SetOptions to merge, got %+v", o)
	}
	if _, err := r.Render([]byte("[a](https://example.com)\n")); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	r.Reset(WithIndent(true))
	o := r.Options()
	if !o.Cite || !o.Justify || !o.Indent || o.Legend != LegendNone || o.MacCodeBlock {
		t.Fatalf("expected Reset to keep earlier options, got %+v", o)
	}
	if len(r.CitedLinks()) != 0 {
		t.Fatalf("expected Reset to drop footnotes, got %v", r.CitedLinks())
	}
}

func TestThemeCSSOption(t *testing.T) {
	r := New(WithThemeCSS("  #output p { color: red; }\n"))
	defer r.Close()
	res, err := r.Render([]byte("hi\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(res.HTML, "<section class=\"md-container\"><style>\n#output p { color: red; }\n</style>") {
		t.Fatalf("expected theme css at the top of the fragment, got:\n%s", res.HTML)
	}
	r.SetOptions(WithThemeCSS(""))
	if res, _ = r.Render([]byte("hi\n")); strings.HasPrefix(res.HTML, "<section class=\"md-container\"><style>") {
		t.Fatalf("expected no theme css, got:\n%s", res.HTML)
	}
}

func TestOptionsVariables(t *testing.T) {
	o := applyOptions(DefaultRenderOptions(), []Option{WithFont("Georgia", "18px"), WithIndent(true), WithJustify(true)})
	vars := o.Variables(theme.DefaultVariableConfig())
	if vars.FontFamily != "Georgia" || vars.FontSize != "18px" || !vars.Indent || !vars.Justify {
		t.Fatalf("unexpected variables %+v", vars)
	}
	if vars.PrimaryColor != theme.DefaultVariableConfig().PrimaryColor {
		t.Fatalf("expected primary color to be kept, got %q", vars.PrimaryColor)
	}
	vars = RenderOptions{}.Variables(vars)
	if vars.FontFamily != "Georgia" || vars.Indent {
		t.Fatalf("expected empty fonts to keep the base, got %+v", vars)
	}
}

func TestSanitize(t *testing.T) {
	r := New(WithSanitize(true))
	defer r.Close()
	res, err := r.Render([]byte("<script>alert(1)</script>\n\nhi <b onclick=\"x()\">there</b>\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectMissing(t, res.HTML, "<script", "onclick")
	expectContains(t, res.HTML, `<p class="md-p">hi <b>there</b></p>`)
}

func TestSanitizeKeepsRenderedDiagrams(t *testing.T) {
	r := New(WithSanitize(true))
	defer r.Close()
	r.DiagramCache().Register(FamilyMermaid, DiagramRendererFunc(func(ctx context.Context, source string) (string, error) {
		return `<svg onload="y"><g></g></svg>`, nil
	}))
	src := "```mermaid\ngraph TD\n```\n"
	if _, err := r.Render([]byte(src)); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	r.DiagramCache().Wait()
	res, err := r.Render([]byte(src))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectContains(t, res.HTML, `<!--mermaid-start--><div class="mermaid-diagram"><svg onload="y"><g></g></svg></div><!--mermaid-end-->`)
	expectMissing(t, res.HTML, "md2html-diagram-")
}

func TestSanitizeIgnoresAuthorDiagramMarkers(t *testing.T) {
	r := New(WithSanitize(true))
	defer r.Close()
	res, err := r.Render([]byte("<!--mermaid-start--><script>alert(1)</script><img src=x onerror=alert(2)><!--mermaid-end-->\n\nmd2html-diagram-0.\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectMissing(t, res.HTML, "<script", "onerror", "<!--mermaid-start-->")
	expectContains(t, res.HTML, "md2html-diagram-0.")
}
