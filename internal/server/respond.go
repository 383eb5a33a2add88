package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/unrolled/render"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Responder writes HTML, JSON and plain text responses.
type Responder struct {
	*render.Render
}

// NewResponder compiles the embedded page templates.
func NewResponder() *Responder {
	return &Responder{render.New(render.Options{
		Directory:  "templates",
		Extensions: []string{".tmpl"},
		Asset: func(name string) ([]byte, error) {
			return templateFS.ReadFile(name)
		},
		AssetNames: func() []string {
			names, _ := fs.Glob(templateFS, "templates/*.tmpl")
			return names
		},
	})}
}

// PlainError writes msg as a text/plain body.
func (r *Responder) PlainError(w http.ResponseWriter, status int, msg string) {
	_ = r.Text(w, status, msg)
}
