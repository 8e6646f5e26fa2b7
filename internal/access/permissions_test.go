package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infrahq/unpublished/internal/server/models"
)

type staticCatalog []models.Bundle

func (s staticCatalog) LoadMultiple(context.Context) ([]models.Bundle, error) {
	return s, nil
}

type failingCatalog struct{}

func (failingCatalog) LoadMultiple(context.Context) ([]models.Bundle, error) {
	return nil, errors.New("catalog unreachable")
}

func TestPermissions(t *testing.T) {
	registry := NewPermissionRegistry(staticCatalog{
		{ID: "article", Label: "Article"},
		{ID: "page", Label: "Page"},
	})

	permissions, err := registry.Permissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]Permission{
		"access_unpublished node article": {Title: "Access unpublished article nodes"},
		"access_unpublished node page":    {Title: "Access unpublished page nodes"},
	}, permissions)
}

func TestPermissionsOnePerBundle(t *testing.T) {
	for _, n := range []int{0, 1, 7, 50} {
		t.Run(fmt.Sprintf("%d bundles", n), func(t *testing.T) {
			catalog := make(staticCatalog, 0, n)
			for i := 0; i < n; i++ {
				catalog = append(catalog, models.Bundle{ID: fmt.Sprintf("bundle_%d", i), Label: fmt.Sprintf("Bundle %d", i)})
			}

			permissions, err := NewPermissionRegistry(catalog).Permissions(context.Background())
			require.NoError(t, err)
			require.Len(t, permissions, n)

			for _, bundle := range catalog {
				require.Contains(t, permissions, PermissionKey(bundle.ID))
			}
		})
	}
}

func TestPermissionsIdempotent(t *testing.T) {
	registry := NewPermissionRegistry(staticCatalog{
		{ID: "event", Label: "Event"},
		{ID: "landing_page", Label: "Landing Page"},
	})

	first, err := registry.Permissions(context.Background())
	require.NoError(t, err)

	second, err := registry.Permissions(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "Access unpublished landing page nodes", first["access_unpublished node landing_page"].Title)
}

func TestDefinitionsKeepCatalogOrder(t *testing.T) {
	registry := NewPermissionRegistry(staticCatalog{
		{ID: "page", Label: "Page"},
		{ID: "article", Label: "ARTICLE"},
	})

	definitions, err := registry.Definitions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []PermissionDefinition{
		{Key: "access_unpublished node page", Title: "Access unpublished page nodes", Bundle: "page"},
		{Key: "access_unpublished node article", Title: "Access unpublished article nodes", Bundle: "article"},
	}, definitions)
}

func TestPermissionsCatalogFailure(t *testing.T) {
	_, err := NewPermissionRegistry(failingCatalog{}).Permissions(context.Background())
	require.EqualError(t, err, "list bundle permissions: catalog unreachable")
}

func TestStaticPermissionsAreDistinctFromBundlePermissions(t *testing.T) {
	for _, permission := range StaticPermissions() {
		require.NotContains(t, permission.Key, permissionPrefix)
		require.NotEmpty(t, permission.Title)
	}
}
