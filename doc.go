// Package md2html renders Markdown into themed, self-contained HTML suitable
// for pasting into rich-text hosts that strip external stylesheets.
//
// The engine is built around a single goldmark instance which is rebuilt
// whenever the set of extensions changes. Alerts, diagrams, math, ruby,
// footnotes and the table of contents are goldmark extenders registered
// into that instance. Diagrams are rendered asynchronously through a
// content-addressed DiagramCache; the HTML returned from Render carries
// placeholders which are later patched through a Committer.
//
// Themes are composed separately by package theme.
package md2html

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'md2html'
func tracer() tracing.Trace {
	return tracing.Select("md2html")
}
