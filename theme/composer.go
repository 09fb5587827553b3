package theme

import (
	"context"
	"strings"
)

// Composer merges the theme layers and pushes the result through a
// StyleInjector.
type Composer struct {
	Scope    string
	Injector *StyleInjector
}

// NewComposer returns a Composer scoping to DefaultScope.
func NewComposer(inj *StyleInjector) *Composer {
	return &Composer{Scope: DefaultScope, Injector: inj}
}

func (c *Composer) scope() string {
	if c.Scope == "" {
		return DefaultScope
	}
	return c.Scope
}

// Compose builds the stylesheet for theme name. The layers are, in order:
// variables, base CSS, the scoped theme on top of the default theme,
// heading variants, then the per-level heading CSS and the custom CSS,
// both scoped, with the custom CSS last. The transform pass is best
// effort; when it fails the merged sheet is returned as is.
func (c *Composer) Compose(name, customCSS string, cfg VariableConfig) (string, error) {
	themeCSS, err := layered(name)
	if err != nil {
		return "", err
	}
	scope := c.scope()
	custom := joinLayers(CustomHeadingCSS(cfg.Headings, cfg.CustomHeadingCSS), customCSS)
	merged := joinLayers(
		Variables(cfg),
		BaseCSS(),
		Scope(themeCSS, scope),
		HeadingCSS(cfg.Headings, cfg.PrimaryColor, scope),
		Scope(custom, scope),
	)
	processed, err := Process(merged)
	if err != nil {
		tracer().Errorf("%v, using untransformed css", err)
		return merged, nil
	}
	return processed, nil
}

// Apply composes the stylesheet and injects it.
func (c *Composer) Apply(ctx context.Context, name, customCSS string, cfg VariableConfig) error {
	css, err := c.Compose(name, customCSS, cfg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Injector.Inject(css)
}

// Export returns a standalone stylesheet for download. It is unscoped and
// untransformed so that it can be edited and reused as custom CSS.
func (c *Composer) Export(name, customCSS string, cfg VariableConfig) (string, error) {
	themeCSS, err := layered(name)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = DefaultTheme
	}
	header := strings.Join([]string{
		"/**",
		" * md2html theme export: " + name,
		" * Contains the complete theme and can be used as is.",
		" */",
	}, "\n")
	return joinLayers(
		header,
		Variables(cfg),
		themeCSS,
		HeadingCSS(cfg.Headings, cfg.PrimaryColor, ""),
		CustomHeadingCSS(cfg.Headings, cfg.CustomHeadingCSS),
		customCSS,
	) + "\n", nil
}

func joinLayers(layers ...string) string {
	var kept []string
	for _, l := range layers {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n\n")
}
