package app

import (
	"context"
	"errors"
	"log"
	"sync"

	"xray-insights/internal/domain/entity"
	"xray-insights/internal/domain/port"
)

var ErrAnalyzerNotConfigured = errors.New("analyzer is not configured")

// ScanService ведёт сессию пользователя по сценарию: выбор файла, отправка, результат.
type ScanService struct {
	repo     port.SessionRepository
	analyzer port.Analyzer
	mu       sync.Mutex // переходы состояний; на время запроса к анализатору не удерживается
}

func NewScanService(repo port.SessionRepository, analyzer port.Analyzer) *ScanService {
	return &ScanService{repo: repo, analyzer: analyzer}
}

func (s *ScanService) Session(ctx context.Context, sessionID string) (*entity.Session, error) {
	return s.repo.Get(ctx, sessionID)
}

// SelectFile запоминает выбранный файл и сбрасывает прошлый результат.
func (s *ScanService) SelectFile(ctx context.Context, sessionID string, file *entity.SelectedFile) (*entity.Session, error) {
	return s.update(ctx, sessionID, func(session *entity.Session) error {
		return session.SelectFile(file)
	})
}

// Submit отправляет выбранный файл на анализ и ждёт ответа.
// Любая ошибка анализатора превращается в entity.FailureMessage.
func (s *ScanService) Submit(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := s.update(ctx, sessionID, func(session *entity.Session) error {
		return session.BeginSubmit()
	})
	if err != nil {
		return session, err
	}

	// Отмена запроса не поддерживается: сессия всегда должна дойти до результата.
	message := s.analyze(context.WithoutCancel(ctx), session)

	return s.update(context.WithoutCancel(ctx), sessionID, func(stored *entity.Session) error {
		stored.Complete(message)
		return nil
	})
}

// Reset возвращает сессию в исходное состояние после показа результата.
func (s *ScanService) Reset(ctx context.Context, sessionID string) (*entity.Session, error) {
	return s.update(ctx, sessionID, func(session *entity.Session) error {
		return session.Reset()
	})
}

// Forget удаляет сессию целиком.
func (s *ScanService) Forget(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, sessionID)
}

// Health проверяет доступность анализатора.
func (s *ScanService) Health(ctx context.Context) error {
	if s.analyzer == nil {
		return ErrAnalyzerNotConfigured
	}
	return s.analyzer.Ping(ctx)
}

func (s *ScanService) analyze(ctx context.Context, session *entity.Session) string {
	if s.analyzer == nil {
		log.Printf("Upload failed for session %s: %v", session.ID, ErrAnalyzerNotConfigured)
		return entity.FailureMessage
	}

	insights, err := s.analyzer.Analyze(ctx, session.File)
	if err != nil {
		log.Printf("Upload failed for session %s: %v", session.ID, err)
		return entity.FailureMessage
	}

	log.Printf("Analyzed %s for session %s (%d bytes)", session.File.Name, session.ID, session.File.Size())
	return insights.Text
}

// update применяет переход к сессии и сохраняет её. При ошибке перехода
// возвращается неизменённая сессия вместе с ошибкой.
func (s *ScanService) update(ctx context.Context, sessionID string, transition func(*entity.Session) error) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := transition(session); err != nil {
		current, getErr := s.repo.Get(ctx, sessionID)
		if getErr != nil {
			return nil, getErr
		}
		return current, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session.Clone(), nil
}
