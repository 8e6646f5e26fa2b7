package data

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/server/models"
)

func CreateBundle(db *gorm.DB, bundle *models.Bundle) error {
	if err := bundle.Validate(); err != nil {
		return fmt.Errorf("%w: %s", internal.ErrBadRequest, err)
	}

	return add(db, bundle)
}

func GetBundle(db *gorm.DB, id string) (*models.Bundle, error) {
	return get[models.Bundle](db, ByBundleID(id))
}

// ListBundles returns every bundle ordered by id.
func ListBundles(db *gorm.DB) ([]models.Bundle, error) {
	return list[models.Bundle](db, OrderBy("id ASC"))
}

// DeleteBundle removes a bundle. A bundle that still has contents can not be
// removed.
func DeleteBundle(db *gorm.DB, id string) error {
	contents, err := count[models.Content](db, ByBundle(id))
	if err != nil {
		return err
	}

	if contents > 0 {
		return fmt.Errorf("%w: bundle %q still has %d content items", internal.ErrBadRequest, id, contents)
	}

	_, err = deleteAll[models.Bundle](db, ByBundleID(id))
	return err
}

// BundleCatalog loads bundles from the database for the permission registry.
type BundleCatalog struct {
	DB *gorm.DB
}

// LoadMultiple returns all defined bundles.
func (c BundleCatalog) LoadMultiple(ctx context.Context) ([]models.Bundle, error) {
	bundles, err := ListBundles(c.DB.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("load bundles: %w", err)
	}

	return bundles, nil
}
