package theme

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/net/html"

	"github.com/arran4/md2html/dom"
)

// --- Test Suite Preparation ------------------------------------------------

type ThemeTestEnviron struct {
	suite.Suite
	doc      *dom.Document
	composer *Composer
}

// listen for 'go test' command --> run test methods
func TestThemeComposer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "md2html.theme")
	defer teardown()
	suite.Run(t, new(ThemeTestEnviron))
}

// run once, before test suite methods
func (env *ThemeTestEnviron) SetupSuite() {
	tracing.Select("md2html.theme").SetTraceLevel(tracing.LevelInfo)
}

func (env *ThemeTestEnviron) SetupTest() {
	env.doc = dom.New()
	env.composer = NewComposer(NewStyleInjector(env.doc))
}

func (env *ThemeTestEnviron) styleCount() int {
	var n int
	_ = env.doc.Do(func(root *html.Node) error {
		n = len(cascadia.MustCompile("style").MatchAll(root))
		return nil
	})
	return n
}

// --- Tests -----------------------------------------------------------------

func (env *ThemeTestEnviron) TestNames() {
	env.Equal([]string{"default", "grace", "simple"}, Names())
	css, err := CSS(" Grace ")
	env.NoError(err)
	env.NotEmpty(css)
	for _, name := range []string{"", "base", "neon"} {
		_, err := CSS(name)
		env.True(errors.Is(err, ErrUnknownTheme), name)
	}
	env.Contains(BaseCSS(), "var(--md-font-size)")
}

func (env *ThemeTestEnviron) TestApplyIsIdempotent() {
	inj := env.composer.Injector
	env.False(inj.Injected())
	cfg := DefaultVariableConfig()
	env.Require().NoError(env.composer.Apply(context.Background(), "grace", "", cfg))
	first := inj.CSS()
	env.Require().NoError(env.composer.Apply(context.Background(), "grace", "", cfg))
	env.True(inj.Injected())
	env.Equal(1, env.styleCount())
	env.Equal(first, inj.CSS())

	node, err := env.doc.Query("head > style#theme")
	env.NoError(err)
	env.NotNil(node)

	inj.Remove()
	env.False(inj.Injected())
	env.Equal("", inj.CSS())
	env.Equal(0, env.styleCount())
	inj.Remove()
}

func (env *ThemeTestEnviron) TestApplySwitchesTheme() {
	cfg := DefaultVariableConfig()
	env.Require().NoError(env.composer.Apply(context.Background(), "default", "", cfg))
	plain := env.composer.Injector.CSS()
	env.Require().NoError(env.composer.Apply(context.Background(), "simple", "", cfg))
	env.NotEqual(plain, env.composer.Injector.CSS())
	env.Equal(1, env.styleCount())
}

func (env *ThemeTestEnviron) TestApplyErrors() {
	cfg := DefaultVariableConfig()
	err := env.composer.Apply(context.Background(), "neon", "", cfg)
	env.ErrorIs(err, ErrUnknownTheme)
	env.False(env.composer.Injector.Injected())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env.ErrorIs(env.composer.Apply(ctx, "default", "", cfg), context.Canceled)
	env.False(env.composer.Injector.Injected())
}

func (env *ThemeTestEnviron) TestComposeLayers() {
	cfg := DefaultVariableConfig()
	cfg.Headings[1] = HeadingBorderLeft
	cfg.Headings[2] = HeadingCustom
	cfg.CustomHeadingCSS = map[int]string{3: "letter-spacing: 2px;"}
	css, err := env.composer.Compose("simple", "h1 { color: red; }", cfg)
	env.Require().NoError(err)

	env.True(strings.HasPrefix(css, ":root {\n  --md-primary-color: #0F4C81;"))
	env.Contains(css, "--md-h1-size: 19.2px;")
	env.Contains(css, "font-size: 22.40064px;")
	env.Contains(css, "#output h2 {\n  color: #0F4C81 !important;")
	env.Contains(css, "border-left: 4px solid #0F4C81 !important;")
	env.Contains(css, "#output h3 {\n  letter-spacing: 2px;\n}")
	env.NotContains(css, "var(--md-primary-color)")
	env.NotContains(css, "calc(")
	env.True(strings.HasSuffix(css, "#output h1 {\n  color: red;\n}"))

	simple := strings.Index(css, "text-shadow")
	custom := strings.Index(css, "letter-spacing: 2px;")
	user := strings.LastIndex(css, "color: red;")
	env.True(simple > 0 && simple < custom && custom < user)
}

func (env *ThemeTestEnviron) TestComposeCustomScope() {
	env.composer.Scope = ".preview"
	css, err := env.composer.Compose("", "p { margin: 0; }", DefaultVariableConfig())
	env.Require().NoError(err)
	env.Contains(css, ".preview h1 {")
	env.NotContains(css, "#output h1")
	env.True(strings.HasSuffix(css, ".preview p {\n  margin: 0;\n}"))

	env.composer.Scope = ""
	css, err = env.composer.Compose("", "", DefaultVariableConfig())
	env.Require().NoError(err)
	env.Contains(css, "#output h1 {")
}

func (env *ThemeTestEnviron) TestComposeKeepsUnparsableCustomCSS() {
	css, err := env.composer.Compose("default", "p { color: red; } /* open", DefaultVariableConfig())
	env.Require().NoError(err)
	env.Contains(css, "/* open")
	env.Contains(css, "var(--md-primary-color)")
}

func (env *ThemeTestEnviron) TestExport() {
	cfg := DefaultVariableConfig()
	cfg.Headings[0] = HeadingDoubleLine
	out, err := env.composer.Export("grace", "a { color: green; }", cfg)
	env.Require().NoError(err)
	env.True(strings.HasPrefix(out, "/**\n * md2html theme export: grace\n"))
	env.True(strings.HasSuffix(out, "a { color: green; }\n"))
	env.Contains(out, "var(--md-primary-color)")
	env.Contains(out, "h1 {\n  color: #0F4C81 !important;")
	env.NotContains(out, "#output")

	out, err = env.composer.Export("", "", cfg)
	env.Require().NoError(err)
	env.Contains(out, "md2html theme export: default")

	cfg.Headings[1] = HeadingCustom
	cfg.CustomHeadingCSS = map[int]string{2: "margin: 0;"}
	out, err = env.composer.Export("simple", "h2 { color: red; }", cfg)
	env.Require().NoError(err)
	env.True(strings.HasSuffix(out, "h2 {\n  margin: 0;\n}\n\nh2 { color: red; }\n"))

	_, err = env.composer.Export("neon", "", cfg)
	env.ErrorIs(err, ErrUnknownTheme)
}
