package controller

import (
	"crypto/subtle"
	"fmt"
	"strings"

	ctx "github.com/krakosik/userhub/internal/context"
	"github.com/krakosik/userhub/internal/dto"
	"github.com/krakosik/userhub/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const bearerPrefix = "bearer "

// Authenticate resolves the bearer token into a session and stores it on the
// echo context for the handlers downstream.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				return fmt.Errorf("%w: missing bearer token", dto.ErrNotAuthorized)
			}

			session, err := authService.ValidateToken(
				c.Request().Context(),
				strings.TrimSpace(header[len(bearerPrefix):]),
				c.Request().Header.Clone(),
			)
			if err != nil {
				return err
			}

			ctx.SetSession(c, session)
			return next(c)
		}
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := ctx.GetSession(c)
		if !ok {
			return fmt.Errorf("%w: no session", dto.ErrNotAuthorized)
		}
		if !session.IsAdmin() {
			return fmt.Errorf("%w: admin role required", dto.ErrForbidden)
		}
		return next(c)
	}
}

// DocsBasicAuth rejects every request when no docs password is configured.
func DocsBasicAuth(config dto.Config) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: config.AppName + " docs",
		Validator: func(username, password string, _ echo.Context) (bool, error) {
			if config.DocsPassword == "" {
				return false, nil
			}
			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(config.DocsUsername)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(config.DocsPassword)) == 1
			return userOK && passOK, nil
		},
	})
}

func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency.String(),
				"remoteIp":  v.RemoteIP,
				"requestId": v.RequestID,
			})
			if session, ok := ctx.GetSession(c); ok {
				entry = entry.WithField("userId", session.User.ID)
			}
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
