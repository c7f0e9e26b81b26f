package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/abiosoft/mold"
	"github.com/russross/blackfriday/v2"
)

//go:embed templates assets/style.css
var templateFS embed.FS

// templateSet wraps the layout engine. Pages live under templates/pages and
// render into templates/layout.html; the stylesheet is inlined through the
// css template func so every page is a self-contained document.
type templateSet struct {
	engine mold.Engine
}

func newTemplateSet() (*templateSet, error) {
	css, err := templateFS.ReadFile("assets/style.css")
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet: %w", err)
	}

	funcs := templateFuncs()
	funcs["css"] = func() template.CSS { return template.CSS(css) }

	engine, err := mold.New(templateFS,
		mold.WithLayout("templates/layout.html"),
		mold.WithFuncMap(funcs),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &templateSet{engine: engine}, nil
}

func (t *templateSet) render(w io.Writer, page string, data map[string]any) error {
	if data == nil {
		data = make(map[string]any)
	}
	return t.engine.Render(w, "templates/pages/"+page, data)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"deref": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"markdown": func(text string) template.HTML {
			return template.HTML(blackfriday.Run([]byte(text)))
		},
		"mediaURL": func(quality, src string) string {
			return "/media/" + quality + "?src=" + url.QueryEscape(src)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
	}
}
