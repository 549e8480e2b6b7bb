package session

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"` // "success", "danger", "warning", "info"
	Message  string `json:"message"`
}

// SetFlash stores a flash message in a short-lived cookie.
func SetFlash(c *gin.Context, category, message string) {
	payload, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(payload), 300, "/", "", false, true)
}

// TakeFlash returns the pending flash message, if any, and clears it.
func TakeFlash(c *gin.Context) (Flash, bool) {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return Flash{}, false
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	payload, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Flash{}, false
	}

	var flash Flash
	if err := json.Unmarshal(payload, &flash); err != nil {
		return Flash{}, false
	}
	return flash, true
}
