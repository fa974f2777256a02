package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	log "github.com/sirupsen/logrus"
)

// LoggerMiddleware logs every HTTP request with logrus
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		entry := log.WithFields(log.Fields{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      path,
			"query":     query,
			"ip":        c.ClientIP(),
			"latency":   time.Since(start),
			"body_size": c.Writer.Size(),
		})

		if len(c.Errors) > 0 {
			entry.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Warn(c.Errors.String())
			return
		}
		entry.Info("HTTP Request")
	}
}
