package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ContextGuestID = "guest_id"

// GuestMiddleware gives anonymous shoppers a stable cart identity through a
// cookie.
type GuestMiddleware struct {
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewGuestMiddleware(cookieName string, ttl time.Duration, secure bool) *GuestMiddleware {
	if cookieName == "" {
		cookieName = "guest_id"
	}
	return &GuestMiddleware{
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// GuestID reads the guest cookie into the context. Anonymous requests without
// one get a fresh id and cookie.
func (m *GuestMiddleware) GuestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := m.Read(c); id != "" {
			c.Set(ContextGuestID, id)
			return next(c)
		}
		if UserID(c) != "" {
			return next(c)
		}

		id := uuid.New().String()
		c.SetCookie(&http.Cookie{
			Name:     m.cookieName,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(m.ttl),
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(ContextGuestID, id)
		return next(c)
	}
}

// Read returns the guest id from the request cookie when it is a valid uuid.
func (m *GuestMiddleware) Read(c echo.Context) string {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

// Clear expires the guest cookie.
func (m *GuestMiddleware) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func GuestID(c echo.Context) string {
	id, _ := c.Get(ContextGuestID).(string)
	return id
}
