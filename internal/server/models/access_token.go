package models

import (
	"errors"
	"time"

	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/uid"
)

const AccessTokenValueLength = 32

// AccessToken grants temporary access to a single unpublished content item.
// Timestamps are seconds since epoch.
type AccessToken struct {
	ID        uid.ID
	OwnerID   uid.ID `gorm:"index"`
	ContentID uid.ID `gorm:"index"`
	Value     string `gorm:"uniqueIndex"`

	Created int64
	Changed int64
	// Expire is the deadline of the token, or Unlimited.
	Expire int64
}

var (
	_ Identifiable = (*AccessToken)(nil)
	_ Owned        = (*AccessToken)(nil)
	_ Timestamped  = (*AccessToken)(nil)
	_ Expirable    = (*AccessToken)(nil)
)

func (AccessToken) IsAModel() {}

func (t *AccessToken) Identifier() uid.ID {
	return t.ID
}

func (t *AccessToken) Owner() uid.ID {
	return t.OwnerID
}

func (t *AccessToken) SetOwner(id uid.ID) {
	t.OwnerID = id
}

// CreatedTime returns the creation timestamp of the token.
func (t *AccessToken) CreatedTime() int64 {
	return t.Created
}

// SetCreatedTime sets the creation timestamp and returns the token.
func (t *AccessToken) SetCreatedTime(ts int64) *AccessToken {
	t.Created = ts
	return t
}

func (t *AccessToken) ChangedTime() int64 {
	return t.Changed
}

func (t *AccessToken) SetChangedTime(ts int64) {
	t.Changed = ts
}

// IsExpired reports whether the validity window of the token has elapsed.
func (t *AccessToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

func (t *AccessToken) IsExpiredAt(now time.Time) bool {
	if t.Expire == Unlimited {
		return false
	}

	return now.Unix() > t.Expire
}

// ApplyExpiry sets Expire from the creation time using policy.
func (t *AccessToken) ApplyExpiry(policy ExpiryPolicy) {
	t.Expire = policy.Expire(t.Created)
}

// Validate checks the fields the data layer can not fill in.
func (t *AccessToken) Validate() error {
	switch {
	case t.OwnerID == 0:
		return errors.New("access token owner is required")
	case t.ContentID == 0:
		return errors.New("access token content is required")
	case t.Created < 0:
		return errors.New("access token created time must not be negative")
	case t.Expire < Unlimited:
		return errors.New("access token expire must be a timestamp or -1")
	}

	return nil
}

func (t *AccessToken) ToAPI() *api.AccessToken {
	result := &api.AccessToken{
		ID:      t.ID,
		Owner:   t.OwnerID,
		Content: t.ContentID,
		Created: api.Time(time.Unix(t.Created, 0)),
		Changed: api.Time(time.Unix(t.Changed, 0)),
		Expired: t.IsExpired(),
	}

	if t.Expire != Unlimited {
		expires := api.Time(time.Unix(t.Expire, 0))
		result.Expires = &expires
	}

	return result
}
