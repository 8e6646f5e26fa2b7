package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/data"
)

var errRollback = errors.New("request failed, rolling back")

// TimeoutMiddleware adds a timeout to the request context. Handlers and
// database queries that use the context stop when it expires.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// DatabaseMiddleware runs every request in a transaction. The transaction is
// rolled back when the response is an error.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			access.SetRequestContext(c, access.RequestContext{DB: tx})
			c.Next()

			if c.Writer.Status() >= http.StatusBadRequest {
				return errRollback
			}

			return nil
		})
		if err != nil && !errors.Is(err, errRollback) {
			logging.Debugf("transaction: %v", err)
		}
	}
}

// AuthenticationMiddleware identifies the user from a bearer key. Requests
// without an Authorization header continue as anonymous.
func AuthenticationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.Next()
			return
		}

		key, ok := bearerKey(header)
		if !ok {
			sendAPIError(c, fmt.Errorf("%w: invalid authorization header", internal.ErrUnauthorized))
			return
		}

		rCtx := access.GetRequestContext(c)
		user, err := data.ValidateUserKey(rCtx.DB, key)
		if err != nil {
			sendAPIError(c, err)
			return
		}

		rCtx.User = user
		access.SetRequestContext(c, rCtx)

		c.Next()
	}
}

func bearerKey(header string) (string, bool) {
	scheme, key, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	key = strings.TrimSpace(key)
	return key, key != ""
}
