package ctx

import (
	"github.com/krakosik/userhub/internal/dto"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

func SetSession(c echo.Context, session dto.Session) {
	c.Set(string(SessionContextKey), session)
}

func GetSession(c echo.Context) (dto.Session, bool) {
	session, ok := c.Get(string(SessionContextKey)).(dto.Session)
	return session, ok
}
