package models

import "github.com/infrahq/unpublished/uid"

// Identifiable records expose a stable identifier.
type Identifiable interface {
	Identifier() uid.ID
}

// Owned records belong to a single user.
type Owned interface {
	Owner() uid.ID
	SetOwner(id uid.ID)
}

// Timestamped records track when they last changed, in seconds since epoch.
type Timestamped interface {
	ChangedTime() int64
	SetChangedTime(ts int64)
}

// Expirable records can stop being valid.
type Expirable interface {
	IsExpired() bool
}
