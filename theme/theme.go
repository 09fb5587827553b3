package theme

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed css/*.css
var themeFS embed.FS

// DefaultTheme is always part of a composed stylesheet; other themes are
// layered on top of it.
const DefaultTheme = "default"

// ErrUnknownTheme is returned for theme names without embedded CSS.
var ErrUnknownTheme = errors.New("md2html: unknown theme")

// Names lists the available themes.
func Names() []string {
	entries, err := themeFS.ReadDir("css")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".css")
		if name != "base" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BaseCSS returns the structural CSS shared by all themes.
func BaseCSS() string {
	b, _ := themeFS.ReadFile("css/base.css")
	return string(b)
}

// CSS returns the unscoped CSS of the named theme.
func CSS(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "base" {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	b, err := themeFS.ReadFile("css/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	return string(b), nil
}

// layered returns the default theme followed by name when name is a
// different theme.
func layered(name string) (string, error) {
	css, err := CSS(DefaultTheme)
	if err != nil {
		return "", err
	}
	if name == "" || strings.EqualFold(name, DefaultTheme) {
		return css, nil
	}
	extra, err := CSS(name)
	if err != nil {
		return "", err
	}
	return css + "\n\n" + extra, nil
}
