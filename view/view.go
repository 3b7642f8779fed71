// Package view renders the server side pages.
package view

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutName = "layout.html"

// Page is the data every template receives.
type Page struct {
	Title    string
	SiteName string
	SignedIn bool
	Flashes  map[string][]string
	Data     interface{}
}

// Renderer writes a named page to the response.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, page *Page) error
}

// Templates is a Renderer over the embedded page templates. Each page is
// parsed together with the shared layout.
type Templates struct {
	siteName string
	pages    map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(ms int64) string {
		return time.Unix(0, ms*int64(time.Millisecond)).UTC().Format("Jan 2, 2006")
	},
	"inc": func(i int) int { return i + 1 },
}

// New parses all embedded templates.
func New(siteName string) (*Templates, error) {
	return parse(templateFS, siteName)
}

func parse(fsys fs.FS, siteName string) (*Templates, error) {
	layout, err := template.New(layoutName).Funcs(funcs).ParseFS(fsys, "templates/"+layoutName)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse layout")
	}
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "could not list templates")
	}
	t := &Templates{
		siteName: siteName,
		pages:    make(map[string]*template.Template),
	}
	for _, f := range files {
		base := path.Base(f)
		if base == layoutName {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "could not clone layout for %s", base)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, errors.Wrapf(err, "could not parse %s", base)
		}
		t.pages[strings.TrimSuffix(base, ".html")] = clone
	}
	return t, nil
}

// Render executes the page into a buffer first so a template error still
// yields a clean 500.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return errors.Errorf("unknown template %q", name)
	}
	if page.SiteName == "" {
		page.SiteName = t.siteName
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutName, page); err != nil {
		log.Errorf("Could not render %s: %s", name, err)
		return errors.Wrapf(err, "could not render %s", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
