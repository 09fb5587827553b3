/*
Package theme composes the stylesheet that styles rendered Markdown.

A stylesheet is merged from fixed layers: generated CSS variables, base
structural CSS, the selected theme on top of the default theme, generated
heading variants and finally the user's custom CSS. Theme and custom CSS
are scoped under the preview container so that no rule leaks into the
host page. The merged sheet is then passed through a transform that
resolves custom properties and folds constant calc() expressions.

The composed CSS is carried into a document by a StyleInjector, which owns
exactly one <style id="theme"> element.
*/
package theme

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'md2html.theme'
func tracer() tracing.Trace {
	return tracing.Select("md2html.theme")
}
