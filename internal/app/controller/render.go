package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/internal/middleware"
)

// page renders an HTML view, or its data as JSON when negotiated. Flashes
// carried by the request are shown before the inline notices.
func (ctrl *AuthController) page(c *gin.Context, status int, view, title string, data gin.H, notices ...apperrors.Notice) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = map[string]string{}
	}

	if middleware.WantsJSON(c) {
		body := gin.H{"view": view}
		if len(notices) > 0 {
			body["notices"] = notices
		}
		if sess, ok := middleware.GetSession(c); ok {
			body["session"] = sess
		}
		c.JSON(status, body)
		return
	}

	sess, _ := middleware.GetSession(c)
	data["Title"] = title
	data["Session"] = sess
	data["Notices"] = append(ctrl.sessions.PopFlashes(c), notices...)
	c.HTML(status, view, data)
}

// redirect ends a successful (or restarting) flow: a flash plus 302 for
// browsers, the notice and target for JSON clients.
func (ctrl *AuthController) redirect(c *gin.Context, status int, location string, notice apperrors.Notice, extra gin.H) {
	if middleware.WantsJSON(c) {
		body := gin.H{
			"message":  notice.Message,
			"category": notice.Category,
			"redirect": location,
		}
		for k, v := range extra {
			body[k] = v
		}
		c.JSON(status, body)
		return
	}

	ctrl.sessions.AddFlash(c, notice)
	c.Redirect(http.StatusFound, location)
}

// fail re-renders view with the error's notice. JSON clients get the
// standard error body.
func (ctrl *AuthController) fail(c *gin.Context, err error, fallback, view, title string, data gin.H) {
	logFailure(c, err)

	if middleware.WantsJSON(c) {
		apperrors.Respond(c, err, fallback)
		return
	}
	ctrl.page(c, apperrors.KindOf(err).HTTPStatus(), view, title, data, apperrors.NoticeFor(err, fallback))
}

// failRedirect sends the user elsewhere with the error's notice.
func (ctrl *AuthController) failRedirect(c *gin.Context, err error, fallback, location string) {
	logFailure(c, err)

	if middleware.WantsJSON(c) {
		apperrors.Respond(c, err, fallback)
		return
	}
	ctrl.sessions.AddFlash(c, apperrors.NoticeFor(err, fallback))
	c.Redirect(http.StatusFound, location)
}

func logFailure(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)
	kind := apperrors.KindOf(err)

	switch kind {
	case apperrors.KindStorage, apperrors.KindMail:
		log.Error("Request failed", err, map[string]interface{}{
			"kind": kind,
		})
	default:
		log.Warn("Request rejected", map[string]interface{}{
			"kind":   kind,
			"reason": err.Error(),
		})
	}
}
