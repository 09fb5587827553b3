package md2html

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/arran4/md2html/theme"
)

// Config is the on-disk form of a rendering session's settings.
type Config struct {
	Theme          string            `yaml:"theme"`
	CustomCSS      string            `yaml:"customCSS"`
	CustomCSSFile  string            `yaml:"customCSSFile"`
	PrimaryColor   string            `yaml:"primaryColor"`
	FontFamily     string            `yaml:"fontFamily"`
	FontSize       string            `yaml:"fontSize"`
	Indent         bool              `yaml:"indent"`
	Justify        bool              `yaml:"justify"`
	MacCodeBlock   bool              `yaml:"macCodeBlock"`
	LineNumbers    bool              `yaml:"lineNumbers"`
	Legend         string            `yaml:"legend"`
	Cite           bool              `yaml:"cite"`
	Count          bool              `yaml:"count"`
	Sanitize       bool              `yaml:"sanitize"`
	ImageSizes     bool              `yaml:"imageSizes"`
	CodeStyle      string            `yaml:"codeStyle"`
	PlantUMLServer string            `yaml:"plantumlServer"`
	Headings       map[string]string `yaml:"headings"`
	HeadingCSS     map[string]string `yaml:"headingCSS"`

	dir string
}

// DefaultConfig returns the settings of a fresh session.
func DefaultConfig() Config {
	opts := DefaultRenderOptions()
	vars := theme.DefaultVariableConfig()
	return Config{
		Theme:          theme.DefaultTheme,
		PrimaryColor:   vars.PrimaryColor,
		FontFamily:     opts.FontFamily,
		FontSize:       opts.FontSize,
		MacCodeBlock:   opts.MacCodeBlock,
		Legend:         string(opts.Legend),
		CodeStyle:      opts.CodeStyle,
		PlantUMLServer: DefaultPlantUMLServer,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("md2html: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("md2html: parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Options converts the config to render options.
func (c Config) Options() []Option {
	return []Option{
		WithFont(c.FontFamily, c.FontSize),
		WithIndent(c.Indent),
		WithJustify(c.Justify),
		WithMacCodeBlock(c.MacCodeBlock),
		WithLineNumbers(c.LineNumbers),
		WithLegend(ParseLegend(c.Legend)),
		WithCite(c.Cite),
		WithCount(c.Count),
		WithSanitize(c.Sanitize),
		WithImageSizes(c.ImageSizes, c.dir),
		WithCodeStyle(c.CodeStyle),
	}
}

// Variables converts the config to the theme's variable settings. Heading
// keys are "h1" to "h6" or the bare level number; unknown styles are
// logged and ignored.
func (c Config) Variables() theme.VariableConfig {
	vars := theme.DefaultVariableConfig()
	if c.PrimaryColor != "" {
		vars.PrimaryColor = c.PrimaryColor
	}
	if c.FontFamily != "" {
		vars.FontFamily = c.FontFamily
	}
	if c.FontSize != "" {
		vars.FontSize = c.FontSize
	}
	vars.Indent = c.Indent
	vars.Justify = c.Justify
	for key, name := range c.Headings {
		level, ok := headingLevel(key)
		if !ok {
			tracer().Infof("config: unknown heading %q", key)
			continue
		}
		style, ok := theme.ParseHeadingStyle(name)
		if !ok {
			tracer().Infof("config: unknown heading style %q for %s", name, key)
		}
		vars.Headings[level-1] = style
	}
	for key, css := range c.HeadingCSS {
		if level, ok := headingLevel(key); ok {
			if vars.CustomHeadingCSS == nil {
				vars.CustomHeadingCSS = make(map[int]string)
			}
			vars.CustomHeadingCSS[level] = css
		}
	}
	return vars
}

// CustomStyles returns the inline custom CSS followed by the content of
// CustomCSSFile, resolved relative to the config file.
func (c Config) CustomStyles() (string, error) {
	if c.CustomCSSFile == "" {
		return c.CustomCSS, nil
	}
	path := c.CustomCSSFile
	if !filepath.IsAbs(path) && c.dir != "" {
		path = filepath.Join(c.dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("md2html: read custom css: %w", err)
	}
	return strings.TrimSpace(c.CustomCSS + "\n\n" + string(b)), nil
}

func headingLevel(key string) (int, bool) {
	key = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(key)), "h")
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > 6 {
		return 0, false
	}
	return n, true
}
