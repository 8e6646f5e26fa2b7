package data

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/generate"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

var (
	ErrAccessTokenExpired = errors.New("access token expired")
	ErrAccessTokenInvalid = errors.New("access token invalid")
)

// CreateAccessToken stores a new token. A random value is generated when one
// is not set, Created and Changed default to now, and Expire is computed from
// policy.
func CreateAccessToken(db *gorm.DB, token *models.AccessToken, policy models.ExpiryPolicy) error {
	if token.ID == 0 {
		token.ID = uid.New()
	}

	if token.Value == "" {
		value, err := generate.CryptoRandom(models.AccessTokenValueLength, generate.CharsetURLSafe)
		if err != nil {
			return err
		}

		token.Value = value
	}

	now := time.Now().Unix()
	if token.Created == 0 {
		token.SetCreatedTime(now)
	}

	if token.Changed == 0 {
		token.SetChangedTime(now)
	}

	token.ApplyExpiry(policy)

	if err := token.Validate(); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrBadRequest, err)
	}

	return add(db, token)
}

func GetAccessToken(db *gorm.DB, id uid.ID) (*models.AccessToken, error) {
	return get[models.AccessToken](db, ByID(id))
}

// ListAccessTokens returns tokens ordered by creation time, newest first.
func ListAccessTokens(db *gorm.DB, selectors ...SelectorFunc) ([]models.AccessToken, error) {
	return list[models.AccessToken](db, append(selectors, OrderBy("created DESC"))...)
}

// ValidateAccessToken looks up the token presented for contentID. It returns
// ErrAccessTokenInvalid when no token matches and ErrAccessTokenExpired when
// the matching token is no longer valid.
func ValidateAccessToken(db *gorm.DB, contentID uid.ID, value string) (*models.AccessToken, error) {
	if value == "" {
		return nil, ErrAccessTokenInvalid
	}

	token, err := get[models.AccessToken](db, ByContentID(contentID), ByValue(value))
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, ErrAccessTokenInvalid
		}

		return nil, err
	}

	// compare in constant time, collations may match values case-insensitively
	if subtle.ConstantTimeCompare([]byte(token.Value), []byte(value)) != 1 {
		return nil, ErrAccessTokenInvalid
	}

	if token.IsExpired() {
		return nil, ErrAccessTokenExpired
	}

	return token, nil
}

// RenewAccessToken restarts the validity window of the token from now using
// policy.
func RenewAccessToken(db *gorm.DB, token *models.AccessToken, policy models.ExpiryPolicy) error {
	now := time.Now().Unix()

	token.SetChangedTime(now)
	token.Expire = policy.Expire(now)

	return save(db, token)
}

func DeleteAccessTokens(db *gorm.DB, selectors ...SelectorFunc) (int64, error) {
	if len(selectors) == 0 {
		return 0, fmt.Errorf("DeleteAccessTokens requires a selector")
	}

	return deleteAll[models.AccessToken](db, selectors...)
}

// DeleteExpiredAccessTokens removes tokens that expired more than grace
// before now.
func DeleteExpiredAccessTokens(db *gorm.DB, now time.Time, grace time.Duration) (int64, error) {
	return deleteAll[models.AccessToken](db, ByExpiredBefore(now.Add(-grace)))
}

// CountAccessTokens returns the number of tokens that are active and expired.
func CountAccessTokens(db *gorm.DB, now time.Time) (active, expired int64, err error) {
	active, err = count[models.AccessToken](db, ByNotExpired(now))
	if err != nil {
		return 0, 0, err
	}

	expired, err = count[models.AccessToken](db, ByExpiredBefore(now))
	if err != nil {
		return 0, 0, err
	}

	return active, expired, nil
}
