package md2html

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizeOnce   sync.Once
	sanitizePolicy *bluemonday.Policy
)

// policy is the user generated content policy extended with the
// presentational markup the renderer emits itself.
func policy() *bluemonday.Policy {
	sanitizeOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class", "style", "id", "title").Globally()
		p.AllowDataAttributes()
		p.AllowElements("section", "figure", "figcaption", "ruby", "rt", "rp", "nav", "span", "sup")
		p.AllowAttrs("width", "height").OnElements("img")
		sanitizePolicy = p
	})
	return sanitizePolicy
}

// protector holds diagram markup produced by trusted renderers while the
// rest of a body is sanitized. Each block is replaced by a slot name
// carrying a random per-render token, so markers written by an author
// never match.
type protector struct {
	token  string
	blocks []string
}

func newProtector() *protector {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		tracer().Errorf("md2html: sanitize token: %v", err)
	}
	return &protector{token: "md2html-diagram-" + hex.EncodeToString(b[:]) + "-"}
}

// protect stores markup and returns the slot written in its place. A nil
// protector returns markup unchanged.
func (p *protector) protect(markup string) string {
	if p == nil {
		return markup
	}
	p.blocks = append(p.blocks, markup)
	return p.slot(len(p.blocks) - 1)
}

func (p *protector) slot(i int) string {
	return p.token + strconv.Itoa(i) + "."
}

// sanitizeHTML removes unsafe markup from a rendered body and puts the
// protected diagram blocks back.
func sanitizeHTML(body string, p *protector) string {
	out := policy().Sanitize(body)
	if p == nil {
		return out
	}
	for i, m := range p.blocks {
		out = strings.Replace(out, p.slot(i), m, 1)
	}
	return out
}
