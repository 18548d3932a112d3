package web

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"xray-insights/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const msgNoFile = "Please upload an X-ray image"

// pageData — всё, что нужно шаблону для отрисовки одной фазы.
type pageData struct {
	Submitting    bool
	ShowingResult bool
	FileName      string
	Message       string
	Alert         string
}

func newPageData(session *entity.Session, alert string) pageData {
	data := pageData{
		Submitting:    session.Phase == entity.PhaseSubmitting,
		ShowingResult: session.Phase == entity.PhaseShowingResult,
		Message:       session.Message,
		Alert:         alert,
	}
	if session.File != nil {
		data.FileName = session.File.Name
	}
	return data
}

// renderPage рендерит страницу в буфер, чтобы ошибка шаблона не оставила полу-ответ.
func renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
