package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/Masterminds/sprig/v3"
)

// Pages holds a parsed set of HTML templates with the sprig function map
type Pages struct {
	tmpl *template.Template
}

// ParseFS parses every template matching patterns in fsys
func ParseFS(fsys fs.FS, patterns ...string) (*Pages, error) {
	tmpl, err := template.New("pages").Funcs(sprig.FuncMap()).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

// Render executes the named template into a buffer so a failing template
// never leaves a half-written response.
func (p *Pages) Render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
