package data

import (
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/models"
)

func CreateRole(db *gorm.DB, role *models.Role) error {
	return add(db, role)
}

func GetRole(db *gorm.DB, name string) (*models.Role, error) {
	return get[models.Role](db, ByName(name))
}

func ListRoles(db *gorm.DB, selectors ...SelectorFunc) ([]models.Role, error) {
	return list[models.Role](db, append(selectors, OrderBy("name ASC"))...)
}

func UpdateRole(db *gorm.DB, role *models.Role) error {
	return save(db, role)
}

// ListUserPermissions returns the union of the permissions of every role
// assigned to user. Roles that do not exist are ignored.
func ListUserPermissions(db *gorm.DB, user *models.User) (map[string]struct{}, error) {
	permissions := make(map[string]struct{})
	if len(user.Roles) == 0 {
		return permissions, nil
	}

	roles, err := ListRoles(db, ByNames([]string(user.Roles)))
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		for _, permission := range role.Permissions {
			permissions[permission] = struct{}{}
		}
	}

	return permissions, nil
}
