package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tmplPage       = "page"
	tmplProducts   = "products"
	tmplTrending   = "trending"
	tmplCart       = "cart"
	tmplDetail     = "detail"
	tmplCategories = "categories"
)

// Renderer executes the storefront templates. It is safe for concurrent use.
type Renderer struct {
	tmpl   *template.Template
	limits Limits
}

func NewRenderer(limits Limits) (*Renderer, error) {
	tmpl, err := template.New("storefront").Funcs(template.FuncMap{
		"noProducts": func() string { return MsgNoProducts },
		"cartEmpty":  func() string { return MsgCartEmpty },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, limits: limits.WithDefaults()}, nil
}

// Limits returns the title truncation lengths in effect.
func (r *Renderer) Limits() Limits { return r.limits }

func (r *Renderer) Page(w io.Writer, page Page) error {
	return r.execute(w, tmplPage, page)
}

func (r *Renderer) Products(w io.Writer, grid ProductGrid) error {
	return r.execute(w, tmplProducts, grid)
}

func (r *Renderer) Trending(w io.Writer, trending Trending) error {
	return r.execute(w, tmplTrending, trending)
}

func (r *Renderer) Cart(w io.Writer, view CartView) error {
	return r.execute(w, tmplCart, view)
}

func (r *Renderer) Detail(w io.Writer, view DetailView) error {
	return r.execute(w, tmplDetail, view)
}

func (r *Renderer) Categories(w io.Writer, bar CategoryBar) error {
	return r.execute(w, tmplCategories, bar)
}

// execute buffers the output; nothing reaches w when the template fails.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
