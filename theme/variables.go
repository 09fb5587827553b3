package theme

import (
	"math"
	"strconv"
	"strings"
)

// VariableConfig carries the user settings that are turned into CSS
// variables and generated rules.
type VariableConfig struct {
	PrimaryColor string
	FontFamily   string
	FontSize     string
	Indent       bool
	Justify      bool
	Headings     HeadingStyles
	// CustomHeadingCSS holds declarations for levels whose style is
	// HeadingCustom, keyed by level 1 to 6.
	CustomHeadingCSS map[int]string
}

// DefaultVariableConfig returns the settings of a fresh session.
func DefaultVariableConfig() VariableConfig {
	return VariableConfig{
		PrimaryColor: "#0F4C81",
		FontFamily:   "-apple-system-font,BlinkMacSystemFont, Helvetica Neue, PingFang SC, Hiragino Sans GB , Microsoft YaHei UI , Microsoft YaHei ,Arial,sans-serif",
		FontSize:     "16px",
	}
}

// headingScale is the size of each heading level relative to the body
// font size.
var headingScale = [6]float64{1.2, 1.2, 1.1, 1, 1, 1}

// Variables generates the :root block of CSS custom properties and, when
// indent or justify is set, the paragraph rule for them.
func Variables(cfg VariableConfig) string {
	size := parsePixels(cfg.FontSize)
	var b strings.Builder
	b.WriteString(":root {\n")
	b.WriteString("  --md-primary-color: " + cfg.PrimaryColor + ";\n")
	b.WriteString("  --md-font-family: " + cfg.FontFamily + ";\n")
	b.WriteString("  --md-font-size: " + cfg.FontSize + ";\n")
	for i, scale := range headingScale {
		b.WriteString("  --md-h" + strconv.Itoa(i+1) + "-size: " + formatNumber(size*scale) + "px;\n")
	}
	b.WriteString("}")
	if cfg.Indent || cfg.Justify {
		b.WriteString("\n\n#output p {\n")
		if cfg.Indent {
			b.WriteString("  text-indent: 2em;\n")
		}
		if cfg.Justify {
			b.WriteString("  text-align: justify;\n")
		}
		b.WriteString("}")
	}
	return b.String()
}

// parsePixels reads the leading number of a size such as "16px". Sizes
// without a number count as 16.
func parsePixels(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] >= '0' && s[end] <= '9') {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || v <= 0 {
		return 16
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
