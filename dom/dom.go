/*
Package dom holds a parsed HTML document that rendered Markdown is mounted
into and that asynchronous diagram results are committed to.

All access goes through a Document, which serializes mutations so that
background diagram jobs and the caller can patch the tree concurrently.
*/
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tracer writes to trace with key 'md2html.dom'
func tracer() tracing.Trace {
	return tracing.Select("md2html.dom")
}

// ErrNotFound is returned when no element matches an id or selector.
var ErrNotFound = errors.New("md2html: element not found")

// OutputID is the id of the container rendered Markdown is mounted into.
const OutputID = "output"

const skeleton = `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body><div id="output"></div></body></html>`

// Document is an HTML document safe for concurrent use.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// New returns an empty document with an #output container.
func New() *Document {
	doc, err := Parse(strings.NewReader(skeleton))
	if err != nil {
		panic(err)
	}
	return doc
}

// Parse reads an HTML document. A missing #output container is appended
// to the body.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("md2html: parse document: %w", err)
	}
	d := &Document{root: root}
	if byID(root, OutputID) == nil {
		body := cascadia.MustCompile("body").MatchFirst(root)
		if body == nil {
			return nil, fmt.Errorf("md2html: parse document: no body")
		}
		body.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Div,
			Data:     "div",
			Attr:     []html.Attribute{{Key: "id", Val: OutputID}},
		})
	}
	return d, nil
}

// Do runs fn with exclusive access to the document tree.
func (d *Document) Do(fn func(root *html.Node) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.root)
}

// Mount replaces the content of the #output container with markup.
func (d *Document) Mount(markup string) error {
	return d.Commit(OutputID, markup)
}

// Commit replaces the content of the element with the given id. It returns
// ErrNotFound when the element is gone, which happens when a later render
// replaced the node a diagram job was started for.
func (d *Document) Commit(id, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := byID(d.root, id)
	if n == nil {
		return fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	if err := setInnerHTML(n, markup); err != nil {
		return err
	}
	tracer().Debugf("committed %d bytes to #%s", len(markup), id)
	return nil
}

// Query returns the first element matching sel, or nil.
func (d *Document) Query(sel string) (*html.Node, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("md2html: selector %q: %w", sel, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return s.MatchFirst(d.root), nil
}

// InnerHTML returns the serialized content of the element with the given
// id.
func (d *Document) InnerHTML(id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := byID(d.root, id)
	if n == nil {
		return "", fmt.Errorf("%w: #%s", ErrNotFound, id)
	}
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Head returns the head element. The caller must hold the tree through Do
// when mutating it.
func Head(root *html.Node) *html.Node {
	return cascadia.MustCompile("head").MatchFirst(root)
}

func byID(root *html.Node, id string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == id {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func setInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("md2html: parse fragment: %w", err)
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}
