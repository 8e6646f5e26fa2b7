package models

import (
	"fmt"
	"regexp"

	"github.com/infrahq/unpublished/api"
)

var bundleIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// IsBundleID reports whether id is a machine name: lowercase letters, digits
// and underscores. Bundle IDs are part of permission keys, which are stored
// comma separated.
func IsBundleID(id string) bool {
	return bundleIDPattern.MatchString(id)
}

// Bundle is a content category, for example "article" or "page".
type Bundle struct {
	ID    string `gorm:"primaryKey"`
	Label string
}

func (Bundle) IsAModel() {}

func (b *Bundle) Validate() error {
	if !IsBundleID(b.ID) {
		return fmt.Errorf("bundle id %q must contain only lowercase letters, digits and underscores", b.ID)
	}

	return nil
}

func (b *Bundle) ToAPI() *api.Bundle {
	return &api.Bundle{
		ID:    b.ID,
		Label: b.Label,
	}
}
