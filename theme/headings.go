package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// HeadingStyle names a generated heading look.
type HeadingStyle string

const (
	HeadingDefault      HeadingStyle = "default"
	HeadingColorOnly    HeadingStyle = "color-only"
	HeadingBorderBottom HeadingStyle = "border-bottom"
	HeadingBorderLeft   HeadingStyle = "border-left"
	HeadingCustomTag    HeadingStyle = "custom-tag"
	HeadingDoubleLine   HeadingStyle = "double-line"
	HeadingCustom       HeadingStyle = "custom"
)

// HeadingStyles selects a style per heading level, index 0 being h1.
type HeadingStyles [6]HeadingStyle

// ParseHeadingStyle maps a style name to a HeadingStyle. Unknown names
// yield HeadingDefault and false.
func ParseHeadingStyle(name string) (HeadingStyle, bool) {
	switch s := HeadingStyle(strings.ToLower(strings.TrimSpace(name))); s {
	case HeadingDefault, HeadingColorOnly, HeadingBorderBottom, HeadingBorderLeft,
		HeadingCustomTag, HeadingDoubleLine, HeadingCustom:
		return s, true
	case "":
		return HeadingDefault, true
	}
	return HeadingDefault, false
}

// headingTemplates are parameterised by the primary color only. The
// generated rules reset the theme's heading box so that the variant looks
// the same under every theme.
var headingTemplates = map[HeadingStyle]string{
	HeadingColorOnly: `  color: %[1]s !important;
  background: transparent !important;
  border: none !important;
  padding: 0 !important;
  box-shadow: none !important;`,
	HeadingBorderBottom: `  color: %[1]s !important;
  background: transparent !important;
  border: none !important;
  border-bottom: 2px solid %[1]s !important;
  padding: 0 0 0.3em !important;
  box-shadow: none !important;`,
	HeadingBorderLeft: `  color: %[1]s !important;
  background: transparent !important;
  border: none !important;
  border-left: 4px solid %[1]s !important;
  padding: 0 0 0 0.6em !important;
  box-shadow: none !important;`,
	HeadingCustomTag: `  display: table !important;
  color: #fff !important;
  background: %[1]s !important;
  border: none !important;
  border-radius: 4px !important;
  padding: 0.2em 0.8em !important;
  margin-left: auto !important;
  margin-right: auto !important;
  box-shadow: 0 -1px 0 0 %[1]s, 0 1px 0 0 %[1]s !important;`,
	HeadingDoubleLine: `  color: %[1]s !important;
  background: transparent !important;
  border: none !important;
  border-top: 3px double %[1]s !important;
  border-bottom: 3px double %[1]s !important;
  padding: 0.3em 0 !important;
  box-shadow: none !important;`,
}

// HeadingCSS generates the rules for every level with a generated style.
// Levels set to HeadingDefault or HeadingCustom produce nothing.
func HeadingCSS(styles HeadingStyles, primary, scope string) string {
	var rules []string
	for i, style := range styles {
		tpl, ok := headingTemplates[style]
		if !ok {
			continue
		}
		sel := headingSelector(scope, i+1)
		rules = append(rules, sel+" {\n"+fmt.Sprintf(tpl, primary)+"\n}")
	}
	return strings.Join(rules, "\n\n")
}

// CustomHeadingCSS wraps the user's declarations for levels styled
// HeadingCustom. The result is unscoped and joins the custom layer.
func CustomHeadingCSS(styles HeadingStyles, custom map[int]string) string {
	var rules []string
	for i, style := range styles {
		decls := strings.TrimSpace(custom[i+1])
		if style != HeadingCustom || decls == "" {
			continue
		}
		rules = append(rules, headingSelector("", i+1)+" {\n  "+decls+"\n}")
	}
	return strings.Join(rules, "\n\n")
}

func headingSelector(scope string, level int) string {
	sel := "h" + strconv.Itoa(level)
	if scope != "" {
		sel = scope + " " + sel
	}
	return sel
}
