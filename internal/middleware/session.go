package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookie names the cookie carrying the browsing session ID that
// draft bookings are keyed by.
const SessionCookie = "kit_session"

const ctxSessionID = "session_id"

// Session ensures every request carries a session ID.  A missing or
// malformed cookie is replaced by a fresh UUID.  The cookie has no
// Max-Age, so it lives as long as the browser session.
func Session(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(SessionCookie); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(ctxSessionID, id)
			return next(c)
		}
	}
}

// SessionID returns the ID stored by Session, or "".
func SessionID(c echo.Context) string {
	s, _ := c.Get(ctxSessionID).(string)
	return s
}
