package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/uid"
)

// Modelable is implemented by the records stored with the generic data helpers.
type Modelable interface {
	IsAModel()
}

type Model struct {
	ID uid.ID
	// CreatedAt is set by GORM to time.Now when a record is first created.
	// See https://gorm.io/docs/conventions.html#Timestamp-Tracking
	CreatedAt time.Time
	// UpdatedAt is set by GORM to time.Now when a record is updated.
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}

func (Model) IsAModel() {}

// BeforeCreate sets an ID if one does not already exist. The ID can not use a
// `gorm:"default"` tag since it is generated by the application.
func (m *Model) BeforeCreate(_ *gorm.DB) error {
	if m.ID == 0 {
		m.ID = uid.New()
	}

	return nil
}
