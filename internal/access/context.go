package access

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/models"
)

const RequestContextKey = "requestContext"

// RequestContext stores the database and the authenticated user of a request.
// User is nil for anonymous requests.
type RequestContext struct {
	DB   *gorm.DB
	User *models.User
}

// GetRequestContext returns the RequestContext set by the server middleware.
func GetRequestContext(c *gin.Context) RequestContext {
	if raw, ok := c.Get(RequestContextKey); ok {
		if rCtx, ok := raw.(RequestContext); ok {
			return rCtx
		}
	}

	return RequestContext{}
}

func SetRequestContext(c *gin.Context, rCtx RequestContext) {
	c.Set(RequestContextKey, rCtx)
}
