package models

import (
	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/uid"
)

// Content is a content item. Only unpublished items need an access token to
// be viewed.
type Content struct {
	Model
	Bundle    string `gorm:"index"`
	Title     string
	Published bool
	OwnerID   uid.ID
}

func (c *Content) ToAPI() *api.Content {
	return &api.Content{
		ID:        c.ID,
		Bundle:    c.Bundle,
		Title:     c.Title,
		Published: c.Published,
		Owner:     c.OwnerID,
		Created:   api.Time(c.CreatedAt),
	}
}
