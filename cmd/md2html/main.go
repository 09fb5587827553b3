package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/pflag"
	"golang.org/x/net/html"

	"github.com/arran4/md2html"
	"github.com/arran4/md2html/dom"
	"github.com/arran4/md2html/theme"
)

const mermaidScript = `<script type="module">import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs"; mermaid.initialize({startOnLoad: true});</script>`

func main() {
	var (
		configPath     string
		outPath        string
		themeName      string
		customCSSPath  string
		primaryColor   string
		fontFamily     string
		fontSize       string
		indent         bool
		justify        bool
		macCodeBlock   bool
		lineNumbers    bool
		legend         string
		cite           bool
		count          bool
		sanitize       bool
		imageSizes     bool
		codeStyle      string
		plantumlServer string
		plantumlInline bool
		fragment       bool
		embedTheme     bool
		exportTheme    bool
		listThemes     bool
		copyOut        bool
	)

	defaults := md2html.DefaultConfig()
	flags := pflag.NewFlagSet("md2html", pflag.ExitOnError)
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.StringVarP(&themeName, "theme", "t", defaults.Theme, "Theme name")
	flags.StringVar(&customCSSPath, "custom-css", "", "File with custom CSS applied after the theme")
	flags.StringVar(&primaryColor, "primary-color", defaults.PrimaryColor, "Primary theme color")
	flags.StringVar(&fontFamily, "font-family", defaults.FontFamily, "Body font family")
	flags.StringVar(&fontSize, "font-size", defaults.FontSize, "Body font size")
	flags.BoolVar(&indent, "indent", false, "Indent the first line of paragraphs")
	flags.BoolVar(&justify, "justify", false, "Justify paragraphs")
	flags.BoolVar(&macCodeBlock, "mac-code-block", defaults.MacCodeBlock, "Draw window buttons above code blocks")
	flags.BoolVar(&lineNumbers, "line-numbers", false, "Number code block lines")
	flags.StringVar(&legend, "legend", defaults.Legend, "Image caption: alt|title|alt-title|title-alt|none")
	flags.BoolVar(&cite, "cite", false, "Turn external links into numbered references")
	flags.BoolVar(&count, "count", false, "Prepend word count and reading time")
	flags.BoolVar(&sanitize, "sanitize", false, "Remove unsafe HTML from the output")
	flags.BoolVar(&imageSizes, "image-sizes", false, "Add width and height to images")
	flags.StringVar(&codeStyle, "code-style", defaults.CodeStyle, "Chroma style for code blocks")
	flags.StringVar(&plantumlServer, "plantuml-server", defaults.PlantUMLServer, "PlantUML server URL")
	flags.BoolVar(&plantumlInline, "plantuml-inline", false, "Fetch PlantUML diagrams and inline the SVG")
	flags.BoolVar(&fragment, "fragment", false, "Write only the rendered fragment without document and stylesheet")
	flags.BoolVar(&embedTheme, "embed-theme", false, "With --fragment, put the composed theme in a style element inside the fragment")
	flags.BoolVar(&exportTheme, "export-theme", false, "Write the composed theme CSS and exit")
	flags.BoolVar(&listThemes, "list-themes", false, "List available themes")
	flags.BoolVar(&copyOut, "copy", false, "Copy the output to the clipboard")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: md2html [flags] [input]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if listThemes {
		for _, name := range theme.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg := defaults
	if configPath != "" {
		var err error
		if cfg, err = md2html.LoadConfig(configPath); err != nil {
			fatal(err)
		}
	}
	override := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	override("theme", func() { cfg.Theme = themeName })
	override("custom-css", func() { cfg.CustomCSSFile, _ = filepath.Abs(customCSSPath) })
	override("primary-color", func() { cfg.PrimaryColor = primaryColor })
	override("font-family", func() { cfg.FontFamily = fontFamily })
	override("font-size", func() { cfg.FontSize = fontSize })
	override("indent", func() { cfg.Indent = indent })
	override("justify", func() { cfg.Justify = justify })
	override("mac-code-block", func() { cfg.MacCodeBlock = macCodeBlock })
	override("line-numbers", func() { cfg.LineNumbers = lineNumbers })
	override("legend", func() { cfg.Legend = legend })
	override("cite", func() { cfg.Cite = cite })
	override("count", func() { cfg.Count = count })
	override("sanitize", func() { cfg.Sanitize = sanitize })
	override("image-sizes", func() { cfg.ImageSizes = imageSizes })
	override("code-style", func() { cfg.CodeStyle = codeStyle })
	override("plantuml-server", func() { cfg.PlantUMLServer = plantumlServer })

	customCSS, err := cfg.CustomStyles()
	if err != nil {
		fatal(err)
	}

	doc := dom.New()
	composer := theme.NewComposer(theme.NewStyleInjector(doc))
	if exportTheme {
		css, err := composer.Export(cfg.Theme, customCSS, cfg.Variables())
		if err != nil {
			fatal(err)
		}
		if err := writeOutput(outPath, css, copyOut); err != nil {
			fatal(err)
		}
		return
	}

	args := flags.Args()
	data, baseDir, err := readInput(args)
	if err != nil {
		fatal(err)
	}

	opts := cfg.Options()
	if cfg.ImageSizes {
		opts = append(opts, md2html.WithImageSizes(true, baseDir))
	}
	r := md2html.New(opts...)
	defer r.Close()
	r.UsePlantUMLServer(cfg.PlantUMLServer)
	cache := r.DiagramCache()
	cache.SetCommitter(doc)
	if plantumlInline {
		cache.Register(md2html.FamilyPlantUML, md2html.PlantUML{
			Server:  cfg.PlantUMLServer,
			Fetcher: md2html.NewHTTPFetcher(),
		})
	}

	var codeCSS bytes.Buffer
	if err := r.Highlighter().WriteCSS(&codeCSS, cfg.CodeStyle); err != nil {
		fatal(err)
	}
	themeCustom := codeCSS.String() + "\n\n" + customCSS
	vars := r.Options().Variables(cfg.Variables())
	if fragment && embedTheme {
		css, err := composer.Compose(cfg.Theme, themeCustom, vars)
		if err != nil {
			fatal(err)
		}
		r.SetOptions(md2html.WithThemeCSS(css))
	}

	ctx := context.Background()
	res, err := r.Render(data)
	if err != nil {
		fatal(err)
	}
	if err := doc.Mount(res.HTML); err != nil {
		fatal(err)
	}
	if len(res.Pending) > 0 {
		// Jobs may finish before the placeholders were mounted. Rendering
		// again serves every finished diagram from the cache.
		cache.Wait()
		if res, err = r.Render(data); err != nil {
			fatal(err)
		}
		if err := doc.Mount(res.HTML); err != nil {
			fatal(err)
		}
	}
	err = doc.Do(func(root *html.Node) error {
		n, err := r.Highlighter().HighlightPendingBlocks(ctx, root)
		if n > 0 {
			fmt.Fprintf(os.Stderr, "highlighted %d code blocks after loading their grammars\n", n)
		}
		return err
	})
	if err != nil {
		fatal(err)
	}

	if fragment {
		out, err := doc.InnerHTML(dom.OutputID)
		if err != nil {
			fatal(err)
		}
		if err := writeOutput(outPath, out, copyOut); err != nil {
			fatal(err)
		}
		return
	}

	if err := composer.Apply(ctx, cfg.Theme, themeCustom, vars); err != nil {
		fatal(err)
	}
	out := doc.String()
	if n, _ := doc.Query("pre.mermaid"); n != nil {
		out = strings.Replace(out, "</body>", mermaidScript+"</body>", 1)
	}
	if err := writeOutput(outPath, out, copyOut); err != nil {
		fatal(err)
	}
}

// readInput returns the Markdown and the directory relative image paths
// resolve against.
func readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		wd, _ := os.Getwd()
		return data, wd, err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Dir(args[0]), nil
}

func writeOutput(path, out string, copyOut bool) error {
	if copyOut {
		if err := clipboard.WriteAll(out); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	if path == "" {
		if copyOut {
			return nil
		}
		_, err := io.WriteString(os.Stdout, out)
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("md2html: " + err.Error() + "\n")
	os.Exit(1)
}
