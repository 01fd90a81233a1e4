package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one key=value line per request through the
// standard logger.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			errText := ""
			if v.Error != nil {
				errText = v.Error.Error()
			}
			log.Printf("http method=%s uri=%s status=%d latency=%s ip=%s user=%s err=%q",
				v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond), v.RemoteIP, identityKey(c), errText)
			return nil
		},
	})
}
