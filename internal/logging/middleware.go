package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Middleware logs every handled request. Requests that recorded errors on the
// gin context are logged at error level.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()

		c.Next()

		lvl := zapcore.InfoLevel
		if len(c.Errors) > 0 {
			lvl = zapcore.ErrorLevel
		}

		ce := L.Check(lvl, "handled request")
		if ce == nil {
			return
		}

		errs := make([]error, 0, len(c.Errors))
		for _, err := range c.Errors {
			errs = append(errs, err.Err)
		}

		ce.Write(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("remoteAddr", c.Request.RemoteAddr),
			zap.String("userAgent", c.Request.UserAgent()),
			zap.Int("statusCode", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("elapsed", time.Since(begin)),
			zap.Errors("errors", errs),
		)
	}
}
