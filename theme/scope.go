package theme

import (
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// DefaultScope is the selector of the preview container.
const DefaultScope = "#output"

// Scope prefixes every top-level selector of src with scope. Selectors
// that already start with scope, :root rules and at-rules other than
// @media and @supports are left alone. Sheets the CSS parser rejects are
// scoped textually.
func Scope(src, scope string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	sheet, err := parser.Parse(src)
	if err != nil {
		tracer().Infof("scope: %v, scoping textually", err)
		return scopeText(src, scope)
	}
	scopeRules(sheet.Rules, scope)
	return sheet.String()
}

func scopeRules(rules []*css.Rule, scope string) {
	for _, r := range rules {
		switch {
		case r.Kind == css.QualifiedRule:
			for i, sel := range r.Selectors {
				r.Selectors[i] = scopeSelector(sel, scope)
			}
		case r.Name == "@media" || r.Name == "@supports":
			scopeRules(r.Rules, scope)
		}
	}
}

func scopeSelector(sel, scope string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" || strings.HasPrefix(sel, scope) || strings.HasPrefix(sel, ":root") {
		return sel
	}
	return scope + " " + sel
}

var cssBlock = regexp.MustCompile(`([^{}]+)\{([^}]*)\}`)

func scopeText(src, scope string) string {
	return cssBlock.ReplaceAllStringFunc(src, func(block string) string {
		m := cssBlock.FindStringSubmatch(block)
		prelude := strings.TrimSpace(m[1])
		if strings.HasPrefix(prelude, "@") || strings.HasPrefix(prelude, ":root") {
			return block
		}
		sels := strings.Split(prelude, ",")
		scoped := sels[:0]
		for _, s := range sels {
			if s = scopeSelector(s, scope); s != "" {
				scoped = append(scoped, s)
			}
		}
		return strings.Join(scoped, ",\n") + " {" + m[2] + "}"
	})
}
