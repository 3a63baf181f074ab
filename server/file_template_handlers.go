package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

type pages struct {
	index     *template.Template
	dashboard *template.Template
	token     *template.Template
	pricing   *template.Template
	errorPage *template.Template
}

func parsePages() (*pages, error) {
	p := &pages{}
	for name, dst := range map[string]**template.Template{
		"index.html":     &p.index,
		"dashboard.html": &p.dashboard,
		"token.html":     &p.token,
		"pricing.html":   &p.pricing,
		"error.html":     &p.errorPage,
	} {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		*dst = tmpl
	}
	return p, nil
}

// render executes a page into a buffer first so a template failure can still produce a 500.
func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPageData struct {
	AppName      string
	ErrorCode    int
	ErrorMessage string
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, s.pages.errorPage, errorPageData{
		AppName:      s.config.GetAppName(),
		ErrorCode:    status,
		ErrorMessage: message,
	})
}
