package md2html

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// commonLanguages are registered with every new Highlighter. Names chroma
// does not know are skipped.
var commonLanguages = []string{
	"bash", "c", "cpp", "csharp", "css", "diff", "go", "graphql", "ini",
	"java", "javascript", "json", "kotlin", "less", "lua", "makefile",
	"markdown", "objectivec", "perl", "php", "plaintext", "python", "r",
	"ruby", "rust", "scss", "shell", "sql", "swift", "typescript", "vbnet",
	"wasm", "xml", "yaml",
}

// GrammarLoader fetches the lexer for a language that is not registered yet.
type GrammarLoader interface {
	LoadGrammar(ctx context.Context, name string) (chroma.Lexer, error)
}

// GrammarLoaderFunc adapts a function to GrammarLoader.
type GrammarLoaderFunc func(ctx context.Context, name string) (chroma.Lexer, error)

func (f GrammarLoaderFunc) LoadGrammar(ctx context.Context, name string) (chroma.Lexer, error) {
	return f(ctx, name)
}

// registryLoader resolves grammars from chroma's built-in lexer registry.
var registryLoader = GrammarLoaderFunc(func(ctx context.Context, name string) (chroma.Lexer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lx := lexers.Get(name); lx != nil {
		return lx, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
})

// Highlighter owns the set of languages which are highlighted while
// rendering. Code in any other language is emitted raw and marked pending;
// HighlightPendingBlocks later loads the grammar and patches it in place.
type Highlighter struct {
	mu         sync.RWMutex
	registered map[string]chroma.Lexer
	loader     GrammarLoader
	loads      singleflight.Group
}

// NewHighlighter creates a highlighter with the common languages
// registered. A nil loader resolves grammars from chroma's registry.
func NewHighlighter(loader GrammarLoader) *Highlighter {
	if loader == nil {
		loader = registryLoader
	}
	h := &Highlighter{
		registered: make(map[string]chroma.Lexer, len(commonLanguages)),
		loader:     loader,
	}
	for _, name := range commonLanguages {
		if name == "plaintext" {
			h.registered[name] = lexers.Fallback
			continue
		}
		if lx := lexers.Get(name); lx != nil {
			h.registered[name] = lx
		}
	}
	return h
}

// Register adds or replaces the lexer used for name.
func (h *Highlighter) Register(name string, lx chroma.Lexer) {
	if lx == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered[strings.ToLower(name)] = chroma.Coalesce(lx)
}

// IsRegistered reports whether name is highlighted synchronously.
func (h *Highlighter) IsRegistered(name string) bool {
	_, ok := h.lexer(name)
	return ok
}

func (h *Highlighter) lexer(name string) (chroma.Lexer, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	lx, ok := h.registered[strings.ToLower(name)]
	return lx, ok
}

// LoadAndRegisterLanguage loads the grammar for name through the loader
// and registers it. Concurrent calls for the same language share one load.
func (h *Highlighter) LoadAndRegisterLanguage(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownLanguage)
	}
	if h.IsRegistered(name) {
		return nil
	}
	_, err, _ := h.loads.Do(name, func() (interface{}, error) {
		lx, err := h.loader.LoadGrammar(ctx, name)
		if err != nil {
			return nil, err
		}
		h.Register(name, lx)
		tracer().Debugf("registered grammar %q", name)
		return nil, nil
	})
	return err
}

// Highlight renders code in language name as class-annotated spans. Spaces
// become non-breaking and newlines become <br/> so that hosts which
// collapse whitespace keep the layout. With lineNumbers the code is laid
// out next to a column of line numbers.
func (h *Highlighter) Highlight(code, name string, lineNumbers bool) (string, error) {
	lx, ok := h.lexer(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
	}
	if !lineNumbers {
		return formatTokens(lx, code, true)
	}
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	formatted := make([]string, len(lines))
	for i, line := range lines {
		s, err := formatTokens(lx, line, false)
		if err != nil {
			return "", err
		}
		if s == "" {
			s = "&nbsp;"
		}
		formatted[i] = s
	}
	return layoutLineNumbers(formatted), nil
}

func formatTokens(lx chroma.Lexer, code string, preserveNewlines bool) (string, error) {
	it, err := lx.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for tok := it(); tok != chroma.EOF; tok = it() {
		value := strings.ReplaceAll(tok.Value, "\t", "    ")
		if !preserveNewlines {
			value = strings.TrimRight(value, "\n")
		}
		if value == "" {
			continue
		}
		value = escapeHTML(value)
		value = strings.ReplaceAll(value, " ", "&nbsp;")
		if preserveNewlines {
			value = strings.ReplaceAll(value, "\r\n", "<br/>")
			value = strings.ReplaceAll(value, "\n", "<br/>")
		}
		if cls := tokenClass(tok.Type); cls != "" {
			b.WriteString(`<span class="`)
			b.WriteString(cls)
			b.WriteString(`">`)
			b.WriteString(value)
			b.WriteString(`</span>`)
		} else {
			b.WriteString(value)
		}
	}
	return strings.TrimSuffix(b.String(), "<br/>"), nil
}

func tokenClass(t chroma.TokenType) string {
	for t != 0 {
		if cls, ok := chroma.StandardTypes[t]; ok {
			return cls
		}
		t = t.Parent()
	}
	return ""
}

const lineNumberColumnStyle = "text-align:right;padding:8px 0;border-right:1px solid rgba(0,0,0,0.04);user-select:none;background:var(--code-bg,transparent);"

func layoutLineNumbers(lines []string) string {
	var nums strings.Builder
	for i := range lines {
		nums.WriteString(`<section style="padding:0 10px 0 0;line-height:1.75">`)
		nums.WriteString(strconv.Itoa(i + 1))
		nums.WriteString(`</section>`)
	}
	return `<section style="display:flex;align-items:flex-start;overflow-x:hidden;overflow-y:auto;width:100%;max-width:100%;padding:0;box-sizing:border-box">` +
		`<section class="line-numbers" style="` + lineNumberColumnStyle + `">` + nums.String() + `</section>` +
		`<section class="code-scroll" style="flex:1 1 auto;overflow-x:auto;overflow-y:visible;padding:8px;min-width:0;box-sizing:border-box">` +
		`<div style="white-space:pre;min-width:max-content;line-height:1.75">` + strings.Join(lines, "<br/>") + `</div>` +
		`</section></section>`
}

// WriteCSS writes the class-based stylesheet of the chroma style name.
// Unknown names fall back to chroma's default style.
func (h *Highlighter) WriteCSS(w io.Writer, name string) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, styles.Get(name))
}

// ---- Pending blocks ----

var pendingCode = cascadia.MustCompile("code[data-language-pending]")

const (
	attrLanguagePending = "data-language-pending"
	attrRawCode         = "data-raw-code"
	attrShowLineNumber  = "data-show-line-number"
)

// HighlightPendingBlocks finds code elements below root which were emitted
// with a pending language, loads their grammars and replaces their content
// with highlighted markup. Blocks whose grammar cannot be loaded stay as
// they are. It returns the number of blocks highlighted.
func (h *Highlighter) HighlightPendingBlocks(ctx context.Context, root *html.Node) (int, error) {
	if root == nil {
		return 0, nil
	}
	count := 0
	for _, code := range pendingCode.MatchAll(root) {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		lang := attrValue(code, attrLanguagePending)
		if lang == "" {
			continue
		}
		if err := h.LoadAndRegisterLanguage(ctx, lang); err != nil {
			tracer().Infof("pending code block %q: %v", lang, err)
			continue
		}
		raw := attrValue(code, attrRawCode)
		highlighted, err := h.Highlight(raw, lang, attrValue(code, attrShowLineNumber) == "true")
		if err != nil {
			tracer().Errorf("highlight %q: %v", lang, err)
			continue
		}
		nodes, err := html.ParseFragment(strings.NewReader(highlighted), code)
		if err != nil {
			return count, err
		}
		for c := code.FirstChild; c != nil; c = code.FirstChild {
			code.RemoveChild(c)
		}
		for _, n := range nodes {
			code.AppendChild(n)
		}
		removeAttr(code, attrLanguagePending)
		removeAttr(code, attrRawCode)
		removeAttr(code, attrShowLineNumber)
		count++
	}
	return count, nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
