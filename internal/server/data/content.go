package data

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func CreateContent(db *gorm.DB, content *models.Content) error {
	if _, err := GetBundle(db, content.Bundle); err != nil {
		return fmt.Errorf("content bundle %q: %w", content.Bundle, err)
	}

	return add(db, content)
}

func GetContent(db *gorm.DB, id uid.ID) (*models.Content, error) {
	return get[models.Content](db, ByID(id))
}

func ListContents(db *gorm.DB, selectors ...SelectorFunc) ([]models.Content, error) {
	return list[models.Content](db, selectors...)
}

func UpdateContent(db *gorm.DB, content *models.Content) error {
	return save(db, content)
}

// DeleteContent removes a content item along with every access token issued
// for it.
func DeleteContent(db *gorm.DB, id uid.ID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := deleteAll[models.AccessToken](tx, ByContentID(id)); err != nil {
			return fmt.Errorf("delete content tokens: %w", err)
		}

		if _, err := deleteAll[models.Content](tx, ByID(id)); err != nil {
			return err
		}

		return nil
	})
}
