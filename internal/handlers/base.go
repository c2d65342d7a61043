package handlers

import (
	"errors"
	"net/http"
	"strings"

	"lostfound/internal/middleware"
	"lostfound/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// FlashMessage is one flash entry popped from the session.
type FlashMessage struct {
	Category string // success, info, warning, danger
	Text     string
}

// Flash queues a message for the next rendered page.
func Flash(c *gin.Context, category, text string) {
	session := sessions.Default(c)
	session.AddFlash(category + "|" + text)
	session.Save()
}

func popFlashes(c *gin.Context) []FlashMessage {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save()

	messages := make([]FlashMessage, 0, len(raw))
	for _, f := range raw {
		s, ok := f.(string)
		if !ok {
			continue
		}
		category, text, found := strings.Cut(s, "|")
		if !found {
			category, text = "info", s
		}
		messages = append(messages, FlashMessage{Category: category, Text: text})
	}
	return messages
}

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	obj["Flashes"] = popFlashes(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// RenderServiceError maps the service error taxonomy onto HTTP
// responses. Validation errors are expected to be handled closer to the
// form; anything landing here gets the generic treatment.
func RenderServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthentication):
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, services.ErrAuthorization):
		RenderError(c, http.StatusForbidden, "Нямате права за това действие.")
	case errors.Is(err, services.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Търсеният ресурс не съществува.")
	case errors.Is(err, services.ErrValidation):
		RenderError(c, http.StatusBadRequest, "Невалидни данни.")
	default:
		RenderError(c, http.StatusInternalServerError, "Възникна неочаквана грешка.")
	}
}
