package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"xray-insights/internal/domain/entity"
	"xray-insights/internal/infrastructure/analyzer"
	"xray-insights/internal/infrastructure/vision"
)

var errNoUpload = errors.New("no file in request")

const msgTooLarge = "The selected file is too large."

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// Без cookie показываем пустую страницу, сессия появится при первом действии.
	session := entity.NewSession("")
	if id, ok := cookieSessionID(r); ok {
		stored, err := s.scans.Session(r.Context(), id)
		if err != nil {
			log.Printf("Error getting session: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		session = stored
	}

	renderPage(w, http.StatusOK, newPageData(session, ""))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	file, err := s.readUpload(w, r)
	switch {
	case errors.Is(err, errNoUpload):
		// Пользователь закрыл диалог выбора без файла.
		redirectHome(w, r)
		return
	case err != nil:
		s.renderUploadError(w, r, id, err)
		return
	}

	if _, err := s.scans.SelectFile(r.Context(), id, file); err != nil && !errors.Is(err, entity.ErrSubmitInProgress) {
		log.Printf("Error selecting file: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	redirectHome(w, r)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	// Без JavaScript файл приходит вместе с отправкой формы.
	if isMultipart(r) {
		file, err := s.readUpload(w, r)
		switch {
		case errors.Is(err, errNoUpload):
		case err != nil:
			s.renderUploadError(w, r, id, err)
			return
		default:
			if _, err := s.scans.SelectFile(r.Context(), id, file); err != nil && !errors.Is(err, entity.ErrSubmitInProgress) {
				log.Printf("Error selecting file: %v", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}
	}

	session, err := s.scans.Submit(r.Context(), id)
	switch {
	case errors.Is(err, entity.ErrNoFileSelected):
		renderPage(w, http.StatusBadRequest, newPageData(session, msgNoFile))
		return
	case errors.Is(err, entity.ErrSubmitInProgress), errors.Is(err, entity.ErrResultShown):
		// Повторное нажатие ничего не меняет.
	case err != nil:
		log.Printf("Error submitting file: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	redirectHome(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)

	if _, err := s.scans.Reset(r.Context(), id); err != nil && !errors.Is(err, entity.ErrNothingToReset) {
		log.Printf("Error resetting session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	redirectHome(w, r)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := cookieSessionID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	session, err := s.scans.Session(r.Context(), id)
	if err != nil || session.File == nil || s.previewer == nil {
		http.NotFound(w, r)
		return
	}

	preview, err := s.previewer.Preview(session.File.Data)
	if err != nil {
		if !errors.Is(err, vision.ErrPreviewUnavailable) {
			log.Printf("Error building preview for %s: %v", session.File.Name, err)
		}
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(preview)
}

type healthResponse struct {
	Status    string `json:"status"`
	Analyzer  string `json:"analyzer"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Analyzer:  "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := s.scans.Health(r.Context()); err != nil {
		resp.Analyzer = "unavailable: " + err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// readUpload читает файл из multipart-поля xray с ограничением размера.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*entity.SelectedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	file, header, err := r.FormFile(analyzer.FieldName)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errNoUpload
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 || header.Filename == "" {
		return nil, errNoUpload
	}

	log.Printf("Received file: %s (%d bytes)", header.Filename, len(data))

	return &entity.SelectedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (s *Server) renderUploadError(w http.ResponseWriter, r *http.Request, id string, err error) {
	session, getErr := s.scans.Session(r.Context(), id)
	if getErr != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		renderPage(w, http.StatusRequestEntityTooLarge, newPageData(session, msgTooLarge))
		return
	}

	log.Printf("Error reading upload: %v", err)
	renderPage(w, http.StatusBadRequest, newPageData(session, msgNoFile))
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
