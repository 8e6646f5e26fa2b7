package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/infrahq/unpublished/internal/server/models"
)

const permissionPrefix = "access_unpublished node "

// Permissions that do not depend on a bundle.
const (
	PermissionIssueToken        = "issue token"
	PermissionRenewToken        = "renew token"
	PermissionDeleteToken       = "delete token"
	PermissionAdministerBundles = "administer bundles"
)

// BundleCatalog provides the current set of bundles.
type BundleCatalog interface {
	LoadMultiple(ctx context.Context) ([]models.Bundle, error)
}

type Permission struct {
	Title string
}

// PermissionDefinition is a Permission along with its key and, for bundle
// permissions, the bundle it was generated from.
type PermissionDefinition struct {
	Key    string
	Title  string
	Bundle string
}

// PermissionKey returns the permission required to view unpublished content
// of a bundle.
func PermissionKey(bundleID string) string {
	return permissionPrefix + bundleID
}

func bundleTitle(label string) string {
	return fmt.Sprintf("Access unpublished %s nodes", strings.ToLower(label))
}

// StaticPermissions returns the permissions that exist regardless of bundles.
func StaticPermissions() []PermissionDefinition {
	return []PermissionDefinition{
		{Key: PermissionIssueToken, Title: "Issue access tokens for any unpublished content"},
		{Key: PermissionRenewToken, Title: "Renew access tokens"},
		{Key: PermissionDeleteToken, Title: "Delete access tokens"},
		{Key: PermissionAdministerBundles, Title: "Administer bundles"},
	}
}

// PermissionRegistry generates one "access unpublished" permission for each
// bundle known to the catalog.
type PermissionRegistry struct {
	catalog BundleCatalog
}

func NewPermissionRegistry(catalog BundleCatalog) *PermissionRegistry {
	return &PermissionRegistry{catalog: catalog}
}

// Definitions returns the bundle permissions in catalog order.
func (r *PermissionRegistry) Definitions(ctx context.Context) ([]PermissionDefinition, error) {
	bundles, err := r.catalog.LoadMultiple(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundle permissions: %w", err)
	}

	return lo.Map(bundles, func(bundle models.Bundle, _ int) PermissionDefinition {
		return PermissionDefinition{
			Key:    PermissionKey(bundle.ID),
			Title:  bundleTitle(bundle.Label),
			Bundle: bundle.ID,
		}
	}), nil
}

// Permissions returns the bundle permissions keyed by permission name.
func (r *PermissionRegistry) Permissions(ctx context.Context) (map[string]Permission, error) {
	definitions, err := r.Definitions(ctx)
	if err != nil {
		return nil, err
	}

	permissions := make(map[string]Permission, len(definitions))
	for _, definition := range definitions {
		permissions[definition.Key] = Permission{Title: definition.Title}
	}

	return permissions, nil
}
