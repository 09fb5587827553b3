package md2html

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultPlantUMLServer is used when PlantUML.Server is empty.
const DefaultPlantUMLServer = "https://www.plantuml.com/plantuml"

// WrapPlantUML adds @startuml/@enduml around source unless it already
// carries start and end markers.
func WrapPlantUML(source string) string {
	trimmed := strings.TrimSpace(source)
	if strings.Contains(trimmed, "@start") && strings.Contains(trimmed, "@end") {
		return source
	}
	return "@startuml\n" + trimmed + "\n@enduml"
}

// EncodePlantUML compresses source with raw deflate and encodes it with
// PlantUML's base64 alphabet.
func EncodePlantUML(source string) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write([]byte(source)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return encode64(buf.Bytes()), nil
}

// PlantUMLURL returns the SVG URL for source on server.
func PlantUMLURL(server, source string) (string, error) {
	if server == "" {
		server = DefaultPlantUMLServer
	}
	enc, err := EncodePlantUML(WrapPlantUML(source))
	if err != nil {
		return "", fmt.Errorf("md2html: encode plantuml: %w", err)
	}
	return strings.TrimRight(server, "/") + "/svg/" + enc, nil
}

func encode6bit(b byte) byte {
	switch {
	case b < 10:
		return '0' + b
	case b < 36:
		return 'A' + b - 10
	case b < 62:
		return 'a' + b - 36
	case b == 62:
		return '-'
	case b == 63:
		return '_'
	}
	return '?'
}

func encode64(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		b.WriteByte(encode6bit(b1 >> 2))
		b.WriteByte(encode6bit(((b1 & 0x3) << 4) | (b2 >> 4)))
		b.WriteByte(encode6bit(((b2 & 0xF) << 2) | (b3 >> 6)))
		b.WriteByte(encode6bit(b3 & 0x3F))
	}
	return b.String()
}

// ---- Fetching ----

// Fetcher retrieves a remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP with a bounded timeout.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a 15 second timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 15 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("md2html: fetching %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// PlantUML renders diagrams through a PlantUML server and inlines the SVG.
type PlantUML struct {
	Server  string
	Fetcher Fetcher
}

var (
	svgWidthAttr   = regexp.MustCompile(`(<svg[^>]*)\swidth="[^"]*"`)
	svgHeightAttr  = regexp.MustCompile(`(<svg[^>]*)\sheight="[^"]*"`)
	svgWidthStyle  = regexp.MustCompile(`(<svg[^>]*style="[^"]*?)width:[^;"]*;?`)
	svgHeightStyle = regexp.MustCompile(`(<svg[^>]*style="[^"]*?)height:[^;"]*;?`)
)

func (p PlantUML) RenderDiagram(ctx context.Context, source string) (string, error) {
	if p.Fetcher == nil {
		return "", fmt.Errorf("md2html: plantuml: no fetcher")
	}
	url, err := PlantUMLURL(p.Server, source)
	if err != nil {
		return "", err
	}
	body, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return stripSVGSize(string(body)), nil
}

// stripSVGSize removes the fixed size of the root svg element so that it
// scales with its container.
func stripSVGSize(svg string) string {
	svg = svgWidthAttr.ReplaceAllString(svg, "$1")
	svg = svgHeightAttr.ReplaceAllString(svg, "$1")
	svg = svgWidthStyle.ReplaceAllString(svg, "$1")
	return svgHeightStyle.ReplaceAllString(svg, "$1")
}

// plantUMLImage is the static fallback used when no renderer is registered.
func plantUMLImage(server, source string) string {
	spec := familySpecs[FamilyPlantUML]
	url, err := PlantUMLURL(server, source)
	if err != nil {
		return `<div class="` + spec.class + `" style="` + spec.style + `">` + diagramError(err) + `</div>`
	}
	return `<div class="` + spec.class + `" style="` + spec.style + `"><img src="` + url + `" alt="PlantUML Diagram" style="max-width: 100%; height: auto;" /></div>`
}
