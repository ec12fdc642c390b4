package utils

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/rishugupta23/word-guessing-game/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	pagesMu sync.Mutex
	pages   = make(map[string]*template.Template)
)

// GenerateID returns a new random session identifier.
func GenerateID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like a value produced by GenerateID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Static returns the embedded static assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func page(file string) (*template.Template, error) {
	pagesMu.Lock()
	defer pagesMu.Unlock()
	if t, ok := pages[file]; ok {
		return t, nil
	}
	t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+file)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}
	pages[file] = t
	return t, nil
}

// RenderPage executes the named page inside the base layout.
func RenderPage(w http.ResponseWriter, file string, data any) {
	tmpl, err := page(file)
	if err != nil {
		logger.Error("TEMPLATE PARSE ERROR: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	// render to a buffer so a failed template never sends a half page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("TEMPLATE EXEC ERROR: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
