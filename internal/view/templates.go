package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/quantix/quantix-console/internal/shared"
	"github.com/quantix/quantix-console/web"
)

// Engine renders HTML pages. Every page is parsed into its own set together
// with the shared layouts and partials so pages can all define "content".
type Engine struct {
	pages map[string]*template.Template
}

// Nav is one entry of the console's side menu.
type Nav struct {
	Path  string
	Label string
}

// Menu lists the console screens in display order.
var Menu = []Nav{
	{Path: "/", Label: "Inicio"},
	{Path: "/users", Label: "Usuarios"},
	{Path: "/profiles", Label: "Perfiles"},
	{Path: "/customers", Label: "Clientes"},
	{Path: "/categories", Label: "Categorías"},
	{Path: "/products", Label: "Productos"},
	{Path: "/suppliers", Label: "Proveedores"},
	{Path: "/credits", Label: "Créditos"},
	{Path: "/intake", Label: "Ingresos"},
	{Path: "/reports", Label: "Reportes"},
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	UserEmail   string
	Data        any
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":      Money,
		"number":     Number,
		"percent":    Percent,
		"formatDate": Date,
		"yesNo":      YesNo,
		"menu":       func() []Nav { return Menu },
		"active": func(current, target string) bool {
			if target == "/" {
				return current == "/"
			}
			return current == target || strings.HasPrefix(current, target+"/")
		},
	}
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return newEngine(web.Templates)
}

func newEngine(fsys fs.FS) (*Engine, error) {
	base, err := template.New("root").Funcs(Funcs()).ParseFS(fsys, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	engine := &Engine{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		set, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := set.ParseFS(fsys, page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		engine.pages["pages/"+path.Base(page)] = set
	}
	return engine, nil
}

// Render executes page name with status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes page name into a buffer and writes it with status.
// Nothing is written when execution fails.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	set, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, path.Base(name), data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// HTML executes page name and returns the markup, for PDF rendering.
func (e *Engine) HTML(name string, data TemplateData) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("template engine not initialised")
	}
	set, ok := e.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, path.Base(name), data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
