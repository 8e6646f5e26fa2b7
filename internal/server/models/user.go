package models

var (
	UserKeyIDLength     = 10 // the length of the ID used to look-up the user key
	UserKeySecretLength = 24 // the length of the secret used to validate a user key
)

// User is an account that issues and manages access tokens. Users
// authenticate with a key in the form "<KeyID>.<Secret>".
type User struct {
	Model
	Name string `gorm:"uniqueIndex:idx_users_name,where:deleted_at is NULL"`

	KeyID          string `gorm:"uniqueIndex:idx_users_key_id,where:deleted_at is NULL"`
	Secret         string `gorm:"-"`
	SecretChecksum []byte

	Roles CommaSeparatedStrings
}

// Key is only set when the user was just created.
func (u *User) Key() string {
	if len(u.Secret) == 0 {
		return ""
	}
	return u.KeyID + "." + u.Secret
}
