package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/internal/render"
)

const (
	flashCookie = "swiftcart_flash"
	flashMaxAge = 60
)

// flashMessage survives exactly one redirect.
type flashMessage struct {
	Level      string `json:"level,omitempty"`
	Message    string `json:"message,omitempty"`
	Newsletter string `json:"newsletter,omitempty"`
}

func setFlash(w http.ResponseWriter, msg flashMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func flashFrom(flash *render.Flash) flashMessage {
	if flash == nil {
		return flashMessage{}
	}
	return flashMessage{Level: flash.Level, Message: flash.Message}
}

// consumeFlash reads and clears the pending flash. Unreadable cookies are dropped.
func consumeFlash(w http.ResponseWriter, r *http.Request) (flashMessage, bool) {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return flashMessage{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return flashMessage{}, false
	}
	var msg flashMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return flashMessage{}, false
	}
	return msg, msg.Message != "" || msg.Newsletter != ""
}

func (m flashMessage) apply(page *render.Page) {
	if m.Newsletter != "" {
		page.Newsletter = m.Newsletter
	}
	if m.Message != "" && page.Flash == nil {
		level := m.Level
		if level == "" {
			level = render.FlashNotice
		}
		page.Flash = &render.Flash{Level: level, Message: m.Message}
	}
}
