package data

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/generate"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func secretChecksum(secret string) []byte {
	chksm := sha256.Sum256([]byte(secret))
	return chksm[:]
}

// CreateUser stores a user and generates its key. The key is available from
// user.Key() until the user is reloaded.
func CreateUser(db *gorm.DB, user *models.User) error {
	if user.Name == "" {
		return fmt.Errorf("%w: user name is required", internal.ErrBadRequest)
	}

	if user.KeyID == "" {
		user.KeyID = generate.MathRandom(models.UserKeyIDLength, generate.CharsetAlphaNumeric)
	}

	if user.Secret == "" {
		secret, err := generate.CryptoRandom(models.UserKeySecretLength, generate.CharsetAlphaNumeric)
		if err != nil {
			return err
		}

		user.Secret = secret
	}

	user.SecretChecksum = secretChecksum(user.Secret)

	return add(db, user)
}

func GetUser(db *gorm.DB, selectors ...SelectorFunc) (*models.User, error) {
	return get[models.User](db, selectors...)
}

func ListUsers(db *gorm.DB, selectors ...SelectorFunc) ([]models.User, error) {
	return list[models.User](db, append(selectors, OrderBy("name ASC"))...)
}

func DeleteUser(db *gorm.DB, id uid.ID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := deleteAll[models.AccessToken](tx, ByOwnerID(id)); err != nil {
			return err
		}

		_, err := deleteAll[models.User](tx, ByID(id))
		return err
	})
}

// ValidateUserKey returns the user identified by a "<keyID>.<secret>" key.
func ValidateUserKey(db *gorm.DB, key string) (*models.User, error) {
	keyID, secret, ok := strings.Cut(key, ".")
	if !ok {
		return nil, fmt.Errorf("%w: invalid key format", internal.ErrUnauthorized)
	}

	user, err := GetUser(db, ByKeyID(keyID))
	if err != nil {
		return nil, fmt.Errorf("%w: could not get user key from database, it may not exist: %v", internal.ErrUnauthorized, err)
	}

	if subtle.ConstantTimeCompare(user.SecretChecksum, secretChecksum(secret)) != 1 {
		return nil, fmt.Errorf("%w: invalid key secret", internal.ErrUnauthorized)
	}

	return user, nil
}
