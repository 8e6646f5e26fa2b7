package access

import (
	"github.com/gin-gonic/gin"

	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func ListBundles(c *gin.Context) ([]models.Bundle, error) {
	return data.ListBundles(GetRequestContext(c).DB)
}

func CreateBundle(c *gin.Context, bundle *models.Bundle) error {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return err
	}

	if err := RequirePermission(rCtx.DB, user, "create", "bundles", PermissionAdministerBundles); err != nil {
		return err
	}

	return data.CreateBundle(rCtx.DB, bundle)
}

// CreateContent stores a content item owned by the authenticated user.
func CreateContent(c *gin.Context, content *models.Content) error {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return err
	}

	content.OwnerID = user.ID

	return data.CreateContent(rCtx.DB, content)
}

// GetContent returns a content item. Unpublished items are only returned to
// their owner.
func GetContent(c *gin.Context, id uid.ID) (*models.Content, error) {
	rCtx := GetRequestContext(c)

	content, err := data.GetContent(rCtx.DB, id)
	if err != nil {
		return nil, err
	}

	if content.Published {
		return content, nil
	}

	user, err := requireUser(rCtx)
	if err != nil {
		return nil, err
	}

	if err := requireOwnerOr(rCtx.DB, user, content.OwnerID, "view", "unpublished content", PermissionIssueToken); err != nil {
		return nil, err
	}

	return content, nil
}
