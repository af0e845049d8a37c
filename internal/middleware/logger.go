package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request to logger.
// Server errors log at error level, client errors at warn.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			})
			if v.RequestID != "" {
				entry = entry.WithField("request_id", v.RequestID)
			}
			if email := UserEmail(c); email != "" {
				entry = entry.WithField("user", email)
			}
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			switch {
			case v.Status >= 500:
				entry.Error("request failed")
			case v.Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
			return nil
		},
	})
}
