package port

import (
	"context"

	"xray-insights/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает копию сессии по ID или новую несохранённую сессию
	Get(ctx context.Context, id string) (*entity.Session, error)

	// Save сохраняет состояние сессии
	Save(ctx context.Context, session *entity.Session) error

	// Delete удаляет сессию
	Delete(ctx context.Context, id string) error
}
