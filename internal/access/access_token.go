package access

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func requireUser(rCtx RequestContext) (*models.User, error) {
	if rCtx.User == nil {
		return nil, fmt.Errorf("%w: no authenticated user", internal.ErrUnauthorized)
	}

	return rCtx.User, nil
}

// requireOwnerOr allows the owner of a record, or anyone holding one of the
// permissions.
func requireOwnerOr(db *gorm.DB, user *models.User, owner uid.ID, operation, resource string, oneOf ...string) error {
	if user.ID == owner {
		return nil
	}

	return RequirePermission(db, user, operation, resource, oneOf...)
}

// CreateAccessToken issues a token for an unpublished content item. The owner
// of the content, or a user with the issue token permission, may issue tokens,
// and must also hold the bundle permission of the content.
func CreateAccessToken(c *gin.Context, token *models.AccessToken, policy models.ExpiryPolicy) error {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return err
	}

	content, err := data.GetContent(rCtx.DB, token.ContentID)
	if err != nil {
		return fmt.Errorf("get token content: %w", err)
	}

	if content.Published {
		return fmt.Errorf("%w: content is already published", internal.ErrBadRequest)
	}

	if err := requireOwnerOr(rCtx.DB, user, content.OwnerID, "issue", "access tokens", PermissionIssueToken); err != nil {
		return err
	}

	if err := RequirePermission(rCtx.DB, user, "share", "unpublished "+content.Bundle+" content", PermissionKey(content.Bundle)); err != nil {
		return err
	}

	token.SetOwner(user.ID)

	if err := data.CreateAccessToken(rCtx.DB, token, policy); err != nil {
		return fmt.Errorf("create token: %w", err)
	}

	return nil
}

// ListAccessTokens returns the tokens visible to the user. Users with the
// renew or delete permission see every token, others only their own.
func ListAccessTokens(c *gin.Context, contentID uid.ID, showExpired bool) ([]models.AccessToken, error) {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return nil, err
	}

	manager, err := HasPermission(rCtx.DB, user, PermissionRenewToken, PermissionDeleteToken)
	if err != nil {
		return nil, err
	}

	selectors := []data.SelectorFunc{data.ByOptionalContentID(contentID)}
	if !manager {
		selectors = append(selectors, data.ByOwnerID(user.ID))
	}

	tokens, err := data.ListAccessTokens(rCtx.DB, selectors...)
	if err != nil {
		return nil, err
	}

	if showExpired {
		return tokens, nil
	}

	now := time.Now()
	return lo.Filter(tokens, func(token models.AccessToken, _ int) bool {
		return !token.IsExpiredAt(now)
	}), nil
}

// RenewAccessToken restarts the validity window of a token.
func RenewAccessToken(c *gin.Context, id uid.ID, policy models.ExpiryPolicy) (*models.AccessToken, error) {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return nil, err
	}

	token, err := data.GetAccessToken(rCtx.DB, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwnerOr(rCtx.DB, user, token.OwnerID, "renew", "access tokens", PermissionRenewToken); err != nil {
		return nil, err
	}

	if err := data.RenewAccessToken(rCtx.DB, token, policy); err != nil {
		return nil, fmt.Errorf("renew token: %w", err)
	}

	return token, nil
}

func DeleteAccessToken(c *gin.Context, id uid.ID) error {
	rCtx := GetRequestContext(c)
	user, err := requireUser(rCtx)
	if err != nil {
		return err
	}

	token, err := data.GetAccessToken(rCtx.DB, id)
	if err != nil {
		return err
	}

	if err := requireOwnerOr(rCtx.DB, user, token.OwnerID, "delete", "access tokens", PermissionDeleteToken); err != nil {
		return err
	}

	_, err = data.DeleteAccessTokens(rCtx.DB, data.ByID(token.ID))
	return err
}

// ContentAccess runs CheckContentAccess for the viewer of the request.
func ContentAccess(c *gin.Context, contentID uid.ID, value string) (*models.AccessToken, error) {
	rCtx := GetRequestContext(c)
	return CheckContentAccess(rCtx.DB, rCtx.User, contentID, value)
}
