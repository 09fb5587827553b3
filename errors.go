package md2html

import "errors"

var (
	// ErrUnknownLanguage is returned when no grammar can be found for a
	// code block language.
	ErrUnknownLanguage = errors.New("md2html: unknown language")
	// ErrNoRenderer is returned when a diagram family has no renderer
	// registered with the cache.
	ErrNoRenderer = errors.New("md2html: no diagram renderer")
)
