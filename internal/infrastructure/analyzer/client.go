package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"xray-insights/internal/domain/entity"
	"xray-insights/internal/domain/port"
)

// FieldName — имя multipart-поля с файлом снимка.
const FieldName = "xray"

var ErrEmptyInsights = errors.New("response has no insights")

type analyzeResponse struct {
	Insights string `json:"insights"`
	Error    string `json:"error"`
}

// HTTPAnalyzer отправляет снимки во внешний сервис анализа.
type HTTPAnalyzer struct {
	endpoint  string
	healthURL string
	client    *http.Client
}

// NewHTTPAnalyzer создаёт клиента. Пустой healthURL выводится из endpoint,
// нулевой timeout оставляет таймаут транспорта по умолчанию.
func NewHTTPAnalyzer(endpoint, healthURL string, timeout time.Duration) (*HTTPAnalyzer, error) {
	if healthURL == "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse analyze url: %w", err)
		}
		u.Path = "/health"
		u.RawQuery = ""
		healthURL = u.String()
	}

	return &HTTPAnalyzer{
		endpoint:  endpoint,
		healthURL: healthURL,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Analyze отправляет файл одним multipart POST и возвращает поле insights.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, file *entity.SelectedFile) (*entity.Insights, error) {
	if file == nil {
		return nil, entity.ErrNoFileSelected
	}

	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send to analyzer: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded analyzeResponse
	decodeErr := json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && decoded.Error != "" {
			return nil, fmt.Errorf("analyzer returned %d: %s", resp.StatusCode, decoded.Error)
		}
		return nil, fmt.Errorf("analyzer returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if strings.TrimSpace(decoded.Insights) == "" {
		return nil, ErrEmptyInsights
	}

	return &entity.Insights{Text: decoded.Insights}, nil
}

// Ping проверяет health-эндпоинт сервиса анализа.
func (a *HTTPAnalyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.healthURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping analyzer: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("analyzer health returned %d", resp.StatusCode)
	}
	return nil
}

func encodeFile(file *entity.SelectedFile) (io.Reader, string, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldName, file.Name))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buffer, writer.FormDataContentType(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ port.Analyzer = (*HTTPAnalyzer)(nil)
