// Package web embeds the catalogue's HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Templates parses every page template. Pages are addressed by file name,
// e.g. "form.gohtml".
func Templates() (*template.Template, error) {
	return template.New("catalogue").Funcs(template.FuncMap{
		"today": func() string { return time.Now().Format("2006-01-02") },
	}).ParseFS(templateFS, "templates/*.gohtml")
}

func Static() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
