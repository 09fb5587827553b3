package md2html

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultDiagramRuntimeDelay is how long the diagram runtime callback waits
// for further renders before it fires.
const DefaultDiagramRuntimeDelay = 30 * time.Millisecond

// Result is the output of Renderer.Render.
type Result struct {
	HTML        string
	ReadingTime ReadingTime
	FrontMatter FrontMatter
	// Pending lists the diagrams that were emitted as placeholders. Their
	// markup is delivered through the DiagramCache committer.
	Pending []*PendingJob
}

// Renderer converts Markdown to themed HTML fragments. A Renderer is safe
// for concurrent use, renders are serialized.
type Renderer struct {
	mu          sync.Mutex
	opts        RenderOptions
	md          goldmark.Markdown
	registry    *Registry
	highlighter *Highlighter
	diagrams    *DiagramCache
	kick        *Debouncer
	images      *imageProber
	plantUML    string

	footnotes     []Footnote
	footnoteIndex map[string]int
	lists         []listFrame
	pending       []*PendingJob
	protected     *protector
}

// New creates a Renderer with the built-in extensions, a Highlighter that
// loads chroma lexers on demand and an empty DiagramCache.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		opts:        applyOptions(DefaultRenderOptions(), opts),
		registry:    DefaultRegistry(nil),
		highlighter: NewHighlighter(nil),
		diagrams:    NewDiagramCache(),
		images:      newImageProber(NewHTTPFetcher()),
		plantUML:    DefaultPlantUMLServer,
	}
	r.build()
	return r
}

func (r *Renderer) build() {
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithExtensions(r.registry.Extenders()...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			html.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(&nodeRenderer{r: r}, 100)),
		),
	)
}

// Options returns the current render options.
func (r *Renderer) Options() RenderOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// SetOptions applies opts on top of the current options.
func (r *Renderer) SetOptions(opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = applyOptions(r.opts, opts)
}

// Reset merges opts into the current options and drops the collected
// footnotes.
func (r *Renderer) Reset(opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = applyOptions(r.opts, opts)
	r.clearState()
}

// Use registers ext under name, replacing an extension of the same name.
// A nil ext removes it. The Markdown pipeline is rebuilt.
func (r *Renderer) Use(name string, ext goldmark.Extender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry.Use(name, ext)
	r.build()
}

// Extensions lists the registered extension names in order.
func (r *Renderer) Extensions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.Names()
}

// UseMathConverter replaces the TeX converter of the math extension.
func (r *Renderer) UseMathConverter(c MathConverter) {
	r.Use("math", NewMath(c))
}

// UseHighlighter replaces the code highlighter. A nil h restores a
// highlighter backed by the chroma lexer registry.
func (r *Renderer) UseHighlighter(h *Highlighter) {
	if h == nil {
		h = NewHighlighter(nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlighter = h
}

// Highlighter returns the code highlighter.
func (r *Renderer) Highlighter() *Highlighter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.highlighter
}

// UseDiagramCache replaces the diagram cache.
func (r *Renderer) UseDiagramCache(c *DiagramCache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagrams = c
}

// DiagramCache returns the diagram cache.
func (r *Renderer) DiagramCache() *DiagramCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diagrams
}

// UsePlantUMLServer sets the server used for PlantUML image fallbacks.
func (r *Renderer) UsePlantUMLServer(server string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plantUML = server
}

// OnDiagramRuntime registers fn to run once after a burst of renders that
// emitted mermaid blocks for a client-side runtime. A zero delay uses
// DefaultDiagramRuntimeDelay.
func (r *Renderer) OnDiagramRuntime(fn func(), delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDiagramRuntimeDelay
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kick.Stop()
	r.kick = NewDebouncer(delay, fn)
}

// Close stops background diagram work.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kick.Stop()
	if r.diagrams != nil {
		r.diagrams.Close()
	}
}

func (r *Renderer) clearState() {
	r.footnotes = nil
	r.footnoteIndex = nil
	r.lists = r.lists[:0]
	r.pending = nil
	r.protected = nil
}

// RenderBody renders a Markdown body without front matter handling or
// post-processing. Footnotes collected by the previous render are
// discarded.
func (r *Renderer) RenderBody(body []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearState()
	return r.renderBody(body)
}

func (r *Renderer) renderBody(body []byte) (string, error) {
	var buf bytes.Buffer
	doc := r.md.Parser().Parse(text.NewReader(body))
	if err := r.md.Renderer().Render(&buf, body, doc); err != nil {
		return "", fmt.Errorf("md2html: render: %w", err)
	}
	return buf.String(), nil
}

// Render converts a Markdown document to an HTML fragment wrapped in
// <section class="md-container">. Front matter is split off first; a
// malformed block is logged and rendered as part of the body.
func (r *Renderer) Render(src []byte) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fm, body, err := SplitFrontMatter(src)
	if err != nil {
		tracer().Errorf("%v", err)
	}
	r.clearState()
	if r.opts.Sanitize {
		r.protected = newProtector()
	}
	out, err := r.renderBody(body)
	if err != nil {
		return nil, err
	}
	if r.opts.Sanitize {
		out = sanitizeHTML(out, r.protected)
		r.protected = nil
	}
	rt := CountReadingTime(body)

	var b strings.Builder
	b.WriteString(`<section class="md-container">`)
	if css := strings.TrimSpace(r.opts.ThemeCSS); css != "" {
		b.WriteString("<style>\n" + css + "\n</style>")
	}
	b.WriteString(r.readingTimeBanner(rt))
	b.WriteString(out)
	b.WriteString(r.references())
	b.WriteString(r.addition())
	b.WriteString(`</section>`)

	res := &Result{
		HTML:        b.String(),
		ReadingTime: rt,
		FrontMatter: fm,
		Pending:     r.pending,
	}
	r.pending = nil
	tracer().Debugf("rendered %d bytes, %d footnotes, %d pending diagrams", len(res.HTML), len(r.footnotes), len(res.Pending))
	return res, nil
}

func (r *Renderer) readingTimeBanner(rt ReadingTime) string {
	if !r.opts.Count || rt.Words == 0 {
		return ""
	}
	return fmt.Sprintf(`<blockquote class="md-blockquote"><p class="md-blockquote-p">%d words, about %d min read</p></blockquote>`, rt.Words, rt.RoundedMinutes())
}

// references renders the cited links collected during the render.
func (r *Renderer) references() string {
	if len(r.footnotes) == 0 {
		return ""
	}
	lines := make([]string, len(r.footnotes))
	for i, fn := range r.footnotes {
		idx := `<code style="font-size: 90%; opacity: 0.6;">[` + strconv.Itoa(fn.Index) + `]</code>`
		if fn.Title == fn.Link {
			lines[i] = idx + `: <i style="word-break: break-all">` + escapeHTML(fn.Title) + `</i><br/>`
		} else {
			lines[i] = idx + ` ` + escapeHTML(fn.Title) + `: <i style="word-break: break-all">` + escapeHTML(fn.Link) + `</i><br/>`
		}
	}
	return `<h4 class="md-h4" data-heading="true">References</h4><p class="md-footnotes">` + strings.Join(lines, "\n") + `</p>`
}

// addition is the style block appended to every document.
func (r *Renderer) addition() string {
	display := "none"
	if r.opts.MacCodeBlock {
		display = "flex"
	}
	return `<style>
  .preview-wrapper pre::before {
    position: absolute;
    top: 0;
    right: 0;
    color: #ccc;
    text-align: center;
    font-size: 0.8em;
    padding: 5px 10px 0;
    line-height: 15px;
    height: 15px;
    font-weight: 600;
  }
  .hljs.code__pre > .mac-sign {
    display: ` + display + `;
  }
  h2 strong {
    color: inherit !important;
  }
</style>`
}
