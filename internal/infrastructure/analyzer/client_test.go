package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"xray-insights/internal/domain/entity"
)

func chestFile() *entity.SelectedFile {
	return &entity.SelectedFile{Name: "chest.png", ContentType: "image/png", Data: []byte("\x89PNG fake")}
}

func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *HTTPAnalyzer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewHTTPAnalyzer(srv.URL+"/analyze", "", 0)
	require.NoError(t, err)
	return a
}

// receivedPart — то, что тестовый сервер увидел в запросе.
type receivedPart struct {
	method      string
	path        string
	formName    string
	fileName    string
	contentType string
	data        string
	parts       int
	err         error
}

// recordParts читает multipart-тело и запоминает все части.
func recordParts(r *http.Request) receivedPart {
	got := receivedPart{method: r.Method, path: r.URL.Path}

	reader, err := r.MultipartReader()
	if err != nil {
		got.err = err
		return got
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return got
		}
		if err != nil {
			got.err = err
			return got
		}
		got.parts++
		data, err := io.ReadAll(part)
		if err != nil {
			got.err = err
			return got
		}
		if got.parts == 1 {
			got.formName = part.FormName()
			got.fileName = part.FileName()
			got.contentType = part.Header.Get("Content-Type")
			got.data = string(data)
		}
	}
}

func TestAnalyze_SendsSingleXrayPart(t *testing.T) {
	received := make(chan receivedPart, 1)
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		received <- recordParts(r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"insights": "Pneumonia detected (0.82)"})
	})

	insights, err := a.Analyze(context.Background(), chestFile())
	require.NoError(t, err)
	require.Equal(t, "Pneumonia detected (0.82)", insights.Text)

	got := <-received
	require.NoError(t, got.err)
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/analyze", got.path)
	require.Equal(t, 1, got.parts)
	require.Equal(t, FieldName, got.formName)
	require.Equal(t, "chest.png", got.fileName)
	require.Equal(t, "image/png", got.contentType)
	require.Equal(t, "\x89PNG fake", got.data)
}

func TestAnalyze_DefaultContentType(t *testing.T) {
	received := make(chan receivedPart, 1)
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		received <- recordParts(r)
		_, _ = w.Write([]byte(`{"insights":"ok"}`))
	})

	f := chestFile()
	f.ContentType = ""
	_, err := a.Analyze(context.Background(), f)
	require.NoError(t, err)

	got := <-received
	require.NoError(t, got.err)
	require.Equal(t, "application/octet-stream", got.contentType)
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"No file uploaded"}`, wantErr: "No file uploaded"},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: "500"},
		{name: "malformed json", status: http.StatusOK, body: "<html>", wantErr: "decode response"},
		{name: "missing insights", status: http.StatusOK, body: `{"status":"ok"}`, wantErr: ErrEmptyInsights.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			insights, err := a.Analyze(context.Background(), chestFile())
			require.Error(t, err)
			require.Nil(t, insights)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalyze_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/analyze"
	srv.Close()

	a, err := NewHTTPAnalyzer(endpoint, "", 0)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), chestFile())
	require.Error(t, err)
	require.Contains(t, err.Error(), "send to analyzer")
}

func TestAnalyze_NilFile(t *testing.T) {
	a, err := NewHTTPAnalyzer("http://localhost:5000/analyze", "", 0)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrNoFileSelected)
}

func TestPing(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	paths := make(chan string, 2)
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	require.NoError(t, a.Ping(context.Background()))

	healthy.Store(false)
	require.Error(t, a.Ping(context.Background()))

	require.Equal(t, "/health", <-paths)
	require.Equal(t, "/health", <-paths)
}

func TestNewHTTPAnalyzer_HealthURL(t *testing.T) {
	a, err := NewHTTPAnalyzer("http://localhost:5000/analyze?v=1", "", 0)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/health", a.healthURL)

	a, err = NewHTTPAnalyzer("http://localhost:5000/analyze", "http://monitor:9000/ready", 0)
	require.NoError(t, err)
	require.Equal(t, "http://monitor:9000/ready", a.healthURL)
}
