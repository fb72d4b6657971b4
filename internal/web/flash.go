package web

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Flash categories, used as CSS classes in the templates
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a one-time message shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

func init() {
	// cookie sessions are gob encoded
	gob.Register(Flash{})
}

func addFlash(as *AppState, c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(Flash{Category: category, Message: message})
	if err := session.Save(); err != nil {
		as.Logger.Error("Failed to save flash message",
			zap.String("category", category),
			zap.Error(err))
	}
}

// consumeFlashes returns and clears pending flashes. It must run before the
// response is written so the cleared session cookie is sent.
func consumeFlashes(as *AppState, c *gin.Context) []Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		switch f := v.(type) {
		case Flash:
			flashes = append(flashes, f)
		case string:
			flashes = append(flashes, Flash{Category: FlashSuccess, Message: f})
		}
	}

	if err := session.Save(); err != nil {
		as.Logger.Error("Failed to clear flash messages", zap.Error(err))
	}
	return flashes
}
