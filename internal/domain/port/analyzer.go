package port

import (
	"context"

	"xray-insights/internal/domain/entity"
)

// Analyzer интерфейс внешнего сервиса анализа снимков
type Analyzer interface {
	// Analyze отправляет файл на анализ и возвращает текст результата
	Analyze(ctx context.Context, file *entity.SelectedFile) (*entity.Insights, error)

	// Ping проверяет доступность сервиса
	Ping(ctx context.Context) error
}
