package theme

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/arran4/md2html/dom"
)

// StyleID is the id of the injected style element.
const StyleID = "theme"

var themeStyle = cascadia.MustCompile("style#" + StyleID)

// StyleInjector owns the single <style id="theme"> element of a document.
type StyleInjector struct {
	doc *dom.Document
}

// NewStyleInjector returns an injector for doc.
func NewStyleInjector(doc *dom.Document) *StyleInjector {
	return &StyleInjector{doc: doc}
}

// Inject creates the style element on first use and replaces its text
// with css afterwards.
func (s *StyleInjector) Inject(css string) error {
	return s.doc.Do(func(root *html.Node) error {
		el := themeStyle.MatchFirst(root)
		if el == nil {
			head := dom.Head(root)
			if head == nil {
				return dom.ErrNotFound
			}
			el = &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.Style,
				Data:     "style",
				Attr:     []html.Attribute{{Key: "id", Val: StyleID}},
			}
			head.AppendChild(el)
			tracer().Debugf("created style#%s", StyleID)
		}
		for c := el.FirstChild; c != nil; c = el.FirstChild {
			el.RemoveChild(c)
		}
		el.AppendChild(&html.Node{Type: html.TextNode, Data: css})
		return nil
	})
}

// Remove deletes the style element if present.
func (s *StyleInjector) Remove() {
	_ = s.doc.Do(func(root *html.Node) error {
		if el := themeStyle.MatchFirst(root); el != nil && el.Parent != nil {
			el.Parent.RemoveChild(el)
		}
		return nil
	})
}

// Injected reports whether the style element exists.
func (s *StyleInjector) Injected() bool {
	found := false
	_ = s.doc.Do(func(root *html.Node) error {
		found = themeStyle.MatchFirst(root) != nil
		return nil
	})
	return found
}

// CSS returns the text of the style element.
func (s *StyleInjector) CSS() string {
	var css string
	_ = s.doc.Do(func(root *html.Node) error {
		if el := themeStyle.MatchFirst(root); el != nil && el.FirstChild != nil {
			css = el.FirstChild.Data
		}
		return nil
	})
	return css
}
