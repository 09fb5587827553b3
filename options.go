package md2html

import (
	"strings"

	"github.com/arran4/md2html/theme"
)

// Legend selects which image attribute becomes the figure caption.
type Legend string

const (
	LegendAlt      Legend = "alt"
	LegendTitle    Legend = "title"
	LegendAltTitle Legend = "alt-title"
	LegendTitleAlt Legend = "title-alt"
	LegendNone     Legend = "none"
)

// ParseLegend maps a user supplied legend name to a Legend. Unknown names
// fall back to LegendAlt.
func ParseLegend(name string) Legend {
	switch l := Legend(strings.ToLower(strings.TrimSpace(name))); l {
	case LegendAlt, LegendTitle, LegendAltTitle, LegendTitleAlt, LegendNone:
		return l
	default:
		return LegendAlt
	}
}

// caption picks the caption text for an image. Options are tried in the
// order they appear in the legend name; the first non-empty one wins.
func (l Legend) caption(alt, title string) string {
	for _, part := range strings.Split(string(l), "-") {
		switch {
		case part == "alt" && alt != "":
			return alt
		case part == "title" && title != "":
			return title
		}
	}
	return ""
}

// RenderOptions configure how Markdown is rendered to HTML. The zero value is
// usable; DefaultRenderOptions returns the settings a fresh editor session
// starts with.
type RenderOptions struct {
	ThemeCSS     string // stylesheet emitted at the top of each rendered fragment
	FontFamily   string
	FontSize     string
	Indent       bool // first-line paragraph indent
	Justify      bool
	MacCodeBlock bool // traffic-light chrome above code blocks
	LineNumbers  bool
	Legend       Legend
	Cite         bool // rewrite external links into numbered references
	Count        bool // prepend a word count and reading time banner
	Sanitize     bool
	ImageSizes   bool   // probe local images for width and height
	BaseDir      string // resolves relative image paths when ImageSizes is set
	CodeStyle    string // chroma style used for code CSS
}

// DefaultRenderOptions returns the options used when New is called without
// arguments.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		FontFamily:   "-apple-system-font,BlinkMacSystemFont, Helvetica Neue, PingFang SC, Hiragino Sans GB , Microsoft YaHei UI , Microsoft YaHei ,Arial,sans-serif",
		FontSize:     "16px",
		MacCodeBlock: true,
		Legend:       LegendAlt,
		CodeStyle:    "github",
	}
}

// Variables carries the typography settings of o over to vars, the
// settings the theme variables are generated from.
func (o RenderOptions) Variables(vars theme.VariableConfig) theme.VariableConfig {
	if o.FontFamily != "" {
		vars.FontFamily = o.FontFamily
	}
	if o.FontSize != "" {
		vars.FontSize = o.FontSize
	}
	vars.Indent = o.Indent
	vars.Justify = o.Justify
	return vars
}

// Option changes a single field of RenderOptions.
type Option func(*RenderOptions)

// WithThemeCSS makes Render emit css in a style element ahead of the
// content, producing a self-contained fragment.
func WithThemeCSS(css string) Option {
	return func(o *RenderOptions) { o.ThemeCSS = css }
}

func WithFont(family, size string) Option {
	return func(o *RenderOptions) {
		if family != "" {
			o.FontFamily = family
		}
		if size != "" {
			o.FontSize = size
		}
	}
}

func WithIndent(on bool) Option {
	return func(o *RenderOptions) { o.Indent = on }
}

func WithJustify(on bool) Option {
	return func(o *RenderOptions) { o.Justify = on }
}

func WithMacCodeBlock(on bool) Option {
	return func(o *RenderOptions) { o.MacCodeBlock = on }
}

func WithLineNumbers(on bool) Option {
	return func(o *RenderOptions) { o.LineNumbers = on }
}

func WithLegend(l Legend) Option {
	return func(o *RenderOptions) { o.Legend = l }
}

func WithCite(on bool) Option {
	return func(o *RenderOptions) { o.Cite = on }
}

func WithCount(on bool) Option {
	return func(o *RenderOptions) { o.Count = on }
}

func WithSanitize(on bool) Option {
	return func(o *RenderOptions) { o.Sanitize = on }
}

// WithImageSizes enables width/height probing for local images relative to
// baseDir.
func WithImageSizes(on bool, baseDir string) Option {
	return func(o *RenderOptions) {
		o.ImageSizes = on
		o.BaseDir = baseDir
	}
}

func WithCodeStyle(name string) Option {
	return func(o *RenderOptions) { o.CodeStyle = name }
}

func applyOptions(base RenderOptions, opts []Option) RenderOptions {
	for _, opt := range opts {
		if opt != nil {
			opt(&base)
		}
	}
	if base.Legend == "" {
		base.Legend = LegendAlt
	}
	return base
}
