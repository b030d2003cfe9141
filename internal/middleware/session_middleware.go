package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/internal/session"
)

// Context keys
const (
	SessionKey   = "session"
	SessionIDKey = "session_id"
	flashKey     = "pending_flash"
)

const (
	FlashCookieName = "flash"
	LoginPath       = "/login"
	loginRequired   = "Please log in to access this page."
)

// CookieConfig shapes the session cookie. It carries no Max-Age, so it
// lasts as long as the browser session; the server-side TTL bounds it too.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware resolves the session cookie and carries flash notices
// across redirects.
type SessionMiddleware struct {
	sessions *session.Manager
	flash    *session.FlashCodec
	cookie   CookieConfig
}

func NewSessionMiddleware(sessions *session.Manager, flash *session.FlashCodec, cookie CookieConfig) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "session_id"
	}
	return &SessionMiddleware{
		sessions: sessions,
		flash:    flash,
		cookie:   cookie,
	}
}

// Load attaches the current session, if any, to the context. Unknown or
// expired ids clear the cookie; store failures leave the request anonymous.
func (m *SessionMiddleware) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		id, err := c.Cookie(m.cookie.Name)
		if err != nil || id == "" {
			c.Next()
			return
		}

		data, err := m.sessions.Get(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(SessionKey, data)
			c.Set(SessionIDKey, id)
			log.Debug("Session loaded", map[string]interface{}{
				"user_id": data.UserID,
			})
		case errors.Is(err, session.ErrNotFound):
			log.Debug("Discarding stale session cookie", nil)
			m.clearCookie(c, m.cookie.Name)
		default:
			log.Error("Failed to load session", err, nil)
		}

		c.Next()
	}
}

// RequireSession sends anonymous clients to the login page, or answers 401
// when they asked for JSON.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSession(c); ok {
			c.Next()
			return
		}

		GetLoggerFromContext(c).Warn("Session required", map[string]interface{}{
			"path": c.Request.URL.Path,
		})

		if WantsJSON(c) {
			apperrors.Unauthorized(c, loginRequired)
			c.Abort()
			return
		}

		m.AddFlash(c, apperrors.Info(loginRequired))
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}

// StartSession hands the session id to the client.
func (m *SessionMiddleware) StartSession(c *gin.Context, id string, data *session.Data) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(SessionKey, data)
	c.Set(SessionIDKey, id)
}

// EndSession removes the session cookie and forgets the session for the
// rest of the request.
func (m *SessionMiddleware) EndSession(c *gin.Context) {
	m.clearCookie(c, m.cookie.Name)
	c.Set(SessionKey, nil)
	c.Set(SessionIDKey, "")
}

// AddFlash queues a notice for the next page the client sees.
func (m *SessionMiddleware) AddFlash(c *gin.Context, notice apperrors.Notice) {
	pending := append(pendingFlashes(c), notice)
	c.Set(flashKey, pending)

	value, err := m.flash.Encode(pending)
	if err != nil {
		GetLoggerFromContext(c).Error("Failed to encode flash", err, nil)
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns the notices carried by the request and clears them.
func (m *SessionMiddleware) PopFlashes(c *gin.Context) []apperrors.Notice {
	value, err := c.Cookie(FlashCookieName)
	if err != nil || value == "" {
		return nil
	}
	m.clearCookie(c, FlashCookieName)

	notices, err := m.flash.Decode(value)
	if err != nil {
		GetLoggerFromContext(c).Warn("Ignoring invalid flash cookie", nil)
		return nil
	}
	return notices
}

func (m *SessionMiddleware) clearCookie(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func pendingFlashes(c *gin.Context) []apperrors.Notice {
	if v, ok := c.Get(flashKey); ok {
		if notices, ok := v.([]apperrors.Notice); ok {
			return notices
		}
	}
	return nil
}

// GetSession returns the session attached by Load or StartSession.
func GetSession(c *gin.Context) (*session.Data, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	data, ok := v.(*session.Data)
	return data, ok && data != nil
}

// GetSessionID returns the raw id of the current session, or "".
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// WantsJSON reports whether the client negotiated a JSON response, either
// through Accept or by sending a JSON body.
func WantsJSON(c *gin.Context) bool {
	if c.ContentType() == binding.MIMEJSON {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, binding.MIMEJSON) && !strings.Contains(accept, binding.MIMEHTML)
}
