package md2html

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestContainerAlert(t *testing.T) {
	out := renderBody(t, ":::tip\nHello\n:::\n")
	expectContains(t, out,
		`<blockquote class="markdown-alert markdown-alert-tip">`,
		`<p class="markdown-alert-title alert-title-tip"><svg class="alert-icon-tip octicon octicon-light-bulb"`,
		`</svg>Tip</p>`,
		`<p class="md-p">Hello</p>`,
	)
	expectMissing(t, out, ":::")
}

func TestQuoteAlert(t *testing.T) {
	out := renderBody(t, "> [!NOTE]\n> Body text\n")
	expectContains(t, out,
		`<blockquote class="markdown-alert markdown-alert-note">`,
		`</svg>Note</p>`,
		`<p class="md-p">Body text</p>`,
	)
	expectMissing(t, out, "[!NOTE]")

	out = renderBody(t, "> [!TLDR]\n> short\n")
	expectContains(t, out, `markdown-alert-tldr`, `</svg>TL;DR</p>`)
}

func TestUnknownAlertStaysBlockquote(t *testing.T) {
	out := renderBody(t, "> [!FOO]\n> x\n")
	expectContains(t, out, `<blockquote class="md-blockquote">`, "[!FOO]")
	expectMissing(t, out, "markdown-alert")

	out = renderBody(t, ":::custom\nUnsupported block\n:::\n")
	expectMissing(t, out, "markdown-alert")
	expectContains(t, out, "Unsupported block")
}

func TestUnclosedContainerIsText(t *testing.T) {
	out := renderBody(t, ":::tip\nnever closed\n")
	expectMissing(t, out, "markdown-alert")
	expectContains(t, out, ":::tip")
}

func TestSplitRuby(t *testing.T) {
	cases := []struct {
		base, annotation string
		pairs            []RubyPair
		rest             string
	}{
		{"漢字", "かんじ", []RubyPair{{"漢字", "かんじ"}}, ""},
		{"漢字", "かん・じ", []RubyPair{{"漢", "かん"}, {"字", "じ"}}, ""},
		{"東京都", "とう・きょう", []RubyPair{{"東", "とう"}, {"京都", "きょう"}}, ""},
		{"a", "x・y・z", []RubyPair{{"a", "x"}}, ""},
		{"日本", "に-ほん", []RubyPair{{"日", "に"}, {"本", "ほん"}}, ""},
	}
	for _, c := range cases {
		pairs, rest := SplitRuby(c.base, c.annotation)
		if !reflect.DeepEqual(pairs, c.pairs) || rest != c.rest {
			t.Fatalf("SplitRuby(%q, %q) = %v, %q; want %v, %q", c.base, c.annotation, pairs, rest, c.pairs, c.rest)
		}
	}
}

func TestRenderRuby(t *testing.T) {
	out := renderBody(t, "[漢字]{かんじ} and [東京]^(とう・きょう)\n")
	expectContains(t, out,
		`<ruby data-text="漢字" data-ruby="かんじ" data-format="basic">漢字<rp>(</rp><rt>かんじ</rt><rp>)</rp></ruby>`,
		`<ruby data-text="東" data-ruby="とう" data-format="basic-hat">東<rp>(</rp><rt>とう</rt><rp>)</rp></ruby>`,
		`<ruby data-text="京" data-ruby="きょう" data-format="basic-hat">`,
	)

	out = renderBody(t, "[<b>]{x&y}\n")
	expectContains(t, out, `<ruby data-text="&lt;b&gt;" data-ruby="x&amp;y" data-format="basic">&lt;b&gt;`)

	out = renderBody(t, "[link](https://x.com)\n")
	expectMissing(t, out, "<ruby")
}

func TestRenderMarkup(t *testing.T) {
	out := renderBody(t, "==mark== ++under++ ~wavy~ ~~gone~~\n")
	expectContains(t, out,
		`<span class="markup-highlight">mark</span>`,
		`<span class="markup-underline">under</span>`,
		`<span class="markup-wavyline">wavy</span>`,
		`<del>gone</del>`,
	)
}

func TestRenderMath(t *testing.T) {
	out := renderBody(t, "inline $x^2$ and $$y<1$$ here\n\n$$\na+b\n$$\n")
	expectContains(t, out,
		`<span class="inline_katex">\(x^2\)</span>`,
		`<section class="block_katex">\[y&lt;1\]</section>`,
		`<section class="block_katex">\[a+b\]</section>`,
	)

	out = renderBody(t, "costs $5 and $6\n")
	expectMissing(t, out, "katex")
}

func TestMathConverter(t *testing.T) {
	r := New()
	defer r.Close()
	r.UseMathConverter(MathConverterFunc(func(w io.Writer, tex []byte, display bool) error {
		_, err := io.WriteString(w, "<math>"+string(tex)+"</math>")
		return err
	}))
	out, err := r.RenderBody([]byte("$E$\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectContains(t, out, `<span class="inline_katex"><math>E</math></span>`)
}

func TestMathConverterErrorIsRendered(t *testing.T) {
	r := New()
	defer r.Close()
	r.UseMathConverter(MathConverterFunc(func(w io.Writer, tex []byte, display bool) error {
		_, _ = io.WriteString(w, "<partial>")
		return errors.New("bad tex")
	}))
	res, err := r.Render([]byte("before $\\frac{<}$ after\n\n$$\nx\n$$\n"))
	if err != nil {
		t.Fatalf("expected converter errors to stay inside the output, got %v", err)
	}
	expectContains(t, res.HTML,
		`before <span class="inline_katex"><span class="katex-error" title="bad tex">\frac{&lt;}</span></span> after`,
		`<section class="block_katex"><span class="katex-error" title="bad tex">x</span></section>`,
	)
	expectMissing(t, res.HTML, "<partial>")
}

func TestRenderTOC(t *testing.T) {
	out := renderBody(t, "[TOC]\n\n# Alpha\n\n## Beta\n\n# Gamma\n")
	expectContains(t, out,
		`<nav class="markdown-toc"><ul class="toc-ul toc-level-1">`,
		`<li class="toc-li toc-level-1"><a href="#alpha">Alpha</a></li>`,
		`<ul class="toc-ul toc-level-2"><li class="toc-li toc-level-2"><a href="#beta">Beta</a></li></ul>`,
		`<a href="#gamma">Gamma</a>`,
	)
	expectMissing(t, out, "[TOC]")
}

func TestRenderSlider(t *testing.T) {
	out := renderBody(t, "<![one](1.png),![two](2.png)>\n")
	expectContains(t, out,
		`<img src="1.png" alt="one" title="one"`,
		`<img src="2.png" alt="two" title="two"`,
		`&lt;&lt;&lt; swipe for more &gt;&gt;&gt;`,
	)
}

func TestRenderFootnotes(t *testing.T) {
	out := renderBody(t, "text[^a] again[^a]\n\n[^a]: the note\n")
	expectContains(t, out,
		`<sup style="color: var(--md-primary-color);"><a href="#fnDef-1" id="fnRef-1">[1]</a></sup>`,
		`<code>1.</code> <span>the note</span>`,
		`<a id="fnDef-1" href="#fnRef-1"`,
	)
}

func TestRegistry(t *testing.T) {
	g := DefaultRegistry(nil)
	want := []string{"markup", "toc", "slider", "alert", "math", "footnotes", "diagrams", "ruby"}
	if !reflect.DeepEqual(g.Names(), want) {
		t.Fatalf("unexpected default extensions %v", g.Names())
	}
	g.Use("toc", ImageSlider)
	if !reflect.DeepEqual(g.Names(), want) {
		t.Fatalf("expected replacement in place, got %v", g.Names())
	}
	g.Remove("slider")
	g.Use("markup", nil)
	if got := g.Names(); len(got) != 6 || got[0] != "toc" {
		t.Fatalf("unexpected extensions after removal %v", got)
	}
	if len(g.Extenders()) != 6 {
		t.Fatalf("expected 6 extenders")
	}
}

func TestRendererUseRebuildsPipeline(t *testing.T) {
	r := New()
	defer r.Close()
	r.Use("markup", nil)
	out, err := r.RenderBody([]byte("==plain==\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectMissing(t, out, "markup-highlight")
	for _, name := range r.Extensions() {
		if name == "markup" {
			t.Fatalf("expected markup to be removed, got %v", r.Extensions())
		}
	}
	r.Use("markup", InlineMarkup)
	out, err = r.RenderBody([]byte("==mark==\n"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	expectContains(t, out, `<span class="markup-highlight">mark</span>`)
}
