package web

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SessionCookie — имя cookie с идентификатором сессии браузера.
const SessionCookie = "xray_session"

// cookieSessionID возвращает ID сессии из cookie, если он корректен.
func cookieSessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// sessionID возвращает ID сессии из cookie или выдаёт новый.
// Вызывается только из изменяющих обработчиков.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := cookieSessionID(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
