// Package views рендерит серверные страницы сайта из встроенных шаблонов.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"tourbook/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{"overview", "tour", "login", "signup", "account", "error"}

// Page - общие данные для любой страницы.
type Page struct {
	Title   string
	User    *models.User
	Tours   []*models.Tour
	Tour    *models.Tour
	Reviews []*models.Review
	Message string
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"firstName": func(name string) string {
		first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
		return first
	},
	"date": func(t time.Time) string { return t.Format("January 2006") },
	"price": func(p float64) string { return fmt.Sprintf("$%.0f", p) },
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render пишет страницу целиком; при ошибке шаблона в ответ ничего не уходит.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
