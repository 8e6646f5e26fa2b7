// Package access decides who may view unpublished content and manage its
// access tokens.
package access

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

// Roles every viewer implicitly holds.
const (
	RoleAnonymous     = "anonymous"
	RoleAuthenticated = "authenticated"
)

var ErrNotAuthorized = errors.New("not authorized")

// AuthorizationError indicates that the viewer does not hold any of the
// required permissions.
type AuthorizationError struct {
	Resource            string
	Operation           string
	RequiredPermissions []string
}

func (e AuthorizationError) Error() string {
	var permissions strings.Builder
	for i, permission := range e.RequiredPermissions {
		permissions.WriteString(fmt.Sprintf("%q", permission))
		switch {
		case i+1 == len(e.RequiredPermissions)-1:
			permissions.WriteString(", or ")
		case i+1 != len(e.RequiredPermissions):
			permissions.WriteString(", ")
		}
	}

	return fmt.Sprintf("you do not have permission to %v %v, requires permission %v",
		e.Operation, e.Resource, permissions.String())
}

func (e AuthorizationError) Is(other error) bool {
	// nolint:errorlint // comparing with == is correct here
	return other == ErrNotAuthorized
}

// viewerRoles returns the roles of user, including the implicit role. A nil
// user is anonymous.
func viewerRoles(user *models.User) *models.User {
	if user == nil {
		return &models.User{Roles: models.CommaSeparatedStrings{RoleAnonymous}}
	}

	roles := make(models.CommaSeparatedStrings, 0, len(user.Roles)+1)
	roles = append(roles, user.Roles...)
	roles = append(roles, RoleAuthenticated)

	withRoles := *user
	withRoles.Roles = roles

	return &withRoles
}

// HasPermission reports whether user holds one of the permissions.
func HasPermission(db *gorm.DB, user *models.User, oneOf ...string) (bool, error) {
	granted, err := data.ListUserPermissions(db, viewerRoles(user))
	if err != nil {
		return false, fmt.Errorf("list permissions: %w", err)
	}

	for _, permission := range oneOf {
		if _, ok := granted[permission]; ok {
			return true, nil
		}
	}

	return false, nil
}

// RequirePermission returns an AuthorizationError unless user holds one of
// the permissions.
func RequirePermission(db *gorm.DB, user *models.User, operation, resource string, oneOf ...string) error {
	ok, err := HasPermission(db, user, oneOf...)
	if err != nil {
		return err
	}

	if !ok {
		return AuthorizationError{
			Resource:            resource,
			Operation:           operation,
			RequiredPermissions: oneOf,
		}
	}

	return nil
}

// CheckContentAccess decides whether viewer may see a content item. Published
// content is always visible. Unpublished content requires a valid, unexpired
// token for the item, and the viewer must hold the bundle permission. The
// token is returned when one was used. viewer is nil for anonymous requests.
func CheckContentAccess(db *gorm.DB, viewer *models.User, contentID uid.ID, value string) (*models.AccessToken, error) {
	content, err := data.GetContent(db, contentID)
	if err != nil {
		return nil, err
	}

	if content.Published {
		return nil, nil
	}

	token, err := data.ValidateAccessToken(db, content.ID, value)
	if err != nil {
		return nil, err
	}

	if err := RequirePermission(db, viewer, "view", "unpublished "+content.Bundle+" content", PermissionKey(content.Bundle)); err != nil {
		return nil, err
	}

	return token, nil
}
