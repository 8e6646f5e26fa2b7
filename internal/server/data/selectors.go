package data

import (
	"time"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

type SelectorFunc func(db *gorm.DB) *gorm.DB

func ByID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func ByIDs(ids []uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", ids)
	}
}

func ByName(name string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name = ?", name)
	}
}

func ByNames(names []string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name IN (?)", names)
	}
}

func ByKeyID(keyID string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("key_id = ?", keyID)
	}
}

func ByBundleID(id string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func ByBundle(bundle string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bundle = ?", bundle)
	}
}

func ByOptionalBundle(bundle string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		if bundle == "" {
			return db
		}

		return db.Where("bundle = ?", bundle)
	}
}

func ByContentID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_id = ?", id)
	}
}

func ByOptionalContentID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}

		return ByContentID(id)(db)
	}
}

func ByOwnerID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", id)
	}
}

func ByOptionalOwnerID(id uid.ID) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		if id == 0 {
			return db
		}

		return ByOwnerID(id)(db)
	}
}

func ByValue(value string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("value = ?", value)
	}
}

// ByNotExpired selects tokens that are unlimited or expire at or after now.
func ByNotExpired(now time.Time) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(expire = ? OR expire >= ?)", models.Unlimited, now.Unix())
	}
}

// ByExpiredBefore selects tokens with a deadline earlier than t.
func ByExpiredBefore(t time.Time) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expire <> ? AND expire < ?", models.Unlimited, t.Unix())
	}
}

func OrderBy(order string) SelectorFunc {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}
