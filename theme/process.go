package theme

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Process resolves var() references to custom properties declared on
// :root and folds calc() expressions whose operands are constants. The
// custom property declarations themselves are kept so that inline styles
// of rendered markup still resolve. On a parse failure src is returned
// unchanged together with the error.
func Process(src string) (string, error) {
	sheet, err := parser.Parse(src)
	if err != nil {
		return src, fmt.Errorf("md2html: css transform: %w", err)
	}
	vars := collectVariables(sheet.Rules)
	transformRules(sheet.Rules, vars)
	return sheet.String(), nil
}

func collectVariables(rules []*css.Rule) map[string]string {
	vars := make(map[string]string)
	for _, r := range rules {
		if r.Kind != css.QualifiedRule || !hasRootSelector(r) {
			continue
		}
		for _, d := range r.Declarations {
			if strings.HasPrefix(d.Property, "--") {
				vars[d.Property] = d.Value
			}
		}
	}
	return vars
}

func hasRootSelector(r *css.Rule) bool {
	for _, sel := range r.Selectors {
		if strings.TrimSpace(sel) == ":root" {
			return true
		}
	}
	return false
}

func transformRules(rules []*css.Rule, vars map[string]string) {
	for _, r := range rules {
		for _, d := range r.Declarations {
			if strings.HasPrefix(d.Property, "--") {
				continue
			}
			d.Value = FoldCalc(ResolveVariables(d.Value, vars))
		}
		transformRules(r.Rules, vars)
	}
}

const maxVarDepth = 8

// ResolveVariables replaces var(--name) and var(--name, fallback) in
// value. Unknown names without a fallback are left in place.
func ResolveVariables(value string, vars map[string]string) string {
	return resolveVariables(value, vars, 0)
}

func resolveVariables(value string, vars map[string]string, depth int) string {
	if depth > maxVarDepth || !strings.Contains(value, "var(") {
		return value
	}
	var b strings.Builder
	rest := value
	for {
		i := strings.Index(rest, "var(")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		end := matchParen(rest, i+len("var("))
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		arg := rest[i+len("var(") : end]
		name, fallback, hasFallback := strings.Cut(arg, ",")
		name = strings.TrimSpace(name)
		switch v, ok := vars[name]; {
		case ok:
			b.WriteString(resolveVariables(v, vars, depth+1))
		case hasFallback:
			b.WriteString(resolveVariables(strings.TrimSpace(fallback), vars, depth+1))
		default:
			b.WriteString(rest[i : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

// matchParen returns the index of the parenthesis closing the one opened
// just before start, or -1.
func matchParen(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// FoldCalc evaluates calc() expressions made of numbers with compatible
// units. Expressions it cannot evaluate are left unchanged.
func FoldCalc(value string) string {
	if !strings.Contains(value, "calc(") {
		return value
	}
	var b strings.Builder
	rest := value
	for {
		i := strings.Index(rest, "calc(")
		if i < 0 {
			b.WriteString(rest)
			break
		}
		end := matchParen(rest, i+len("calc("))
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		if q, err := evalCalc(rest[i+len("calc(") : end]); err == nil {
			b.WriteString(q.String())
		} else {
			b.WriteString(rest[i : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

type quantity struct {
	n    float64
	unit string
}

func (q quantity) String() string {
	return strconv.FormatFloat(math.Round(q.n*1e5)/1e5, 'f', -1, 64) + q.unit
}

var errCalc = errors.New("calc: not constant")

type calcParser struct {
	s   string
	pos int
}

func evalCalc(expr string) (quantity, error) {
	p := &calcParser{s: expr}
	q, err := p.expr()
	if err != nil {
		return quantity{}, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return quantity{}, errCalc
	}
	return q, nil
}

func (p *calcParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *calcParser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *calcParser) expr() (quantity, error) {
	left, err := p.term()
	if err != nil {
		return left, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return left, err
		}
		if left.unit != right.unit {
			switch {
			case left.n == 0 && left.unit == "":
				left.unit = right.unit
			case right.n == 0 && right.unit == "":
			default:
				return left, errCalc
			}
		}
		if op == '+' {
			left.n += right.n
		} else {
			left.n -= right.n
		}
	}
}

func (p *calcParser) term() (quantity, error) {
	left, err := p.factor()
	if err != nil {
		return left, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return left, err
		}
		switch {
		case op == '*' && right.unit == "":
			left.n *= right.n
		case op == '*' && left.unit == "":
			left = quantity{n: left.n * right.n, unit: right.unit}
		case op == '/' && right.unit == "" && right.n != 0:
			left.n /= right.n
		default:
			return left, errCalc
		}
	}
}

func (p *calcParser) factor() (quantity, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		return p.group()
	case strings.HasPrefix(p.s[p.pos:], "calc("):
		p.pos += len("calc(")
		return p.group()
	case c == '-':
		p.pos++
		q, err := p.factor()
		q.n = -q.n
		return q, err
	case c == '+':
		p.pos++
		return p.factor()
	}
	return p.number()
}

func (p *calcParser) group() (quantity, error) {
	q, err := p.expr()
	if err != nil {
		return q, err
	}
	if p.peek() != ')' {
		return q, errCalc
	}
	p.pos++
	return q, nil
}

func (p *calcParser) number() (quantity, error) {
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] == '.' || p.s[p.pos] >= '0' && p.s[p.pos] <= '9') {
		p.pos++
	}
	n, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return quantity{}, errCalc
	}
	ustart := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] == '%' || p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z') {
		p.pos++
	}
	return quantity{n: n, unit: p.s[ustart:p.pos]}, nil
}
