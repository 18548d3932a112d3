package entity

import "errors"

// Phase состояние сессии анализа снимка
type Phase string

const (
	PhaseIdle          Phase = "idle"           // Ожидание выбора файла и отправки
	PhaseSubmitting    Phase = "submitting"     // Запрос к анализатору выполняется
	PhaseShowingResult Phase = "showing_result" // Показываем результат анализа
)

// FailureMessage показывается пользователю при любой ошибке анализа.
const FailureMessage = "Failed to analyze image."

var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrSubmitInProgress = errors.New("submit already in progress")
	ErrResultShown      = errors.New("result is shown, reset first")
	ErrNothingToReset   = errors.New("no result to reset")
)

// SelectedFile выбранный пользователем файл снимка
type SelectedFile struct {
	Name        string // имя файла
	ContentType string // MIME-тип, как его сообщил клиент
	Data        []byte // содержимое файла
}

// Size возвращает размер файла в байтах
func (f *SelectedFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// Session хранит состояние одного пользователя: фазу, файл и результат.
type Session struct {
	ID      string
	Phase   Phase
	File    *SelectedFile
	Message string
}

// NewSession создаёт новую сессию в начальном состоянии
func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		Phase: PhaseIdle,
	}
}

// SelectFile запоминает файл и возвращает сессию в исходное состояние.
func (s *Session) SelectFile(file *SelectedFile) error {
	if s.Phase == PhaseSubmitting {
		return ErrSubmitInProgress
	}
	s.File = file
	s.Message = ""
	s.Phase = PhaseIdle
	return nil
}

// BeginSubmit переводит сессию в фазу отправки.
func (s *Session) BeginSubmit() error {
	switch s.Phase {
	case PhaseSubmitting:
		return ErrSubmitInProgress
	case PhaseShowingResult:
		return ErrResultShown
	}
	if s.File == nil {
		return ErrNoFileSelected
	}
	s.Phase = PhaseSubmitting
	return nil
}

// Complete завершает отправку. Пустое сообщение заменяется на FailureMessage.
func (s *Session) Complete(message string) {
	if message == "" {
		message = FailureMessage
	}
	s.Message = message
	s.Phase = PhaseShowingResult
}

// Reset очищает результат и файл после показа результата.
func (s *Session) Reset() error {
	if s.Phase != PhaseShowingResult {
		return ErrNothingToReset
	}
	s.Message = ""
	s.File = nil
	s.Phase = PhaseIdle
	return nil
}

// Clone возвращает копию сессии. Данные файла не копируются, они неизменяемы.
func (s *Session) Clone() *Session {
	c := *s
	if s.File != nil {
		f := *s.File
		c.File = &f
	}
	return &c
}
