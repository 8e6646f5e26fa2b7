package api

import (
	"github.com/infrahq/unpublished/uid"
)

type AccessToken struct {
	ID      uid.ID `json:"id"`
	Owner   uid.ID `json:"owner"`
	Content uid.ID `json:"content"`
	Created Time   `json:"created"`
	Changed Time   `json:"changed"`
	// Expires is null for tokens that never expire.
	Expires *Time `json:"expires"`
	Expired bool  `json:"expired"`
}

type ListAccessTokensRequest struct {
	// ContentID limits the list to the tokens of one content item.
	ContentID   string `form:"contentID"`
	ShowExpired bool   `form:"showExpired"`
}

type CreateAccessTokenRequest struct {
	ContentID uid.ID `json:"contentID" binding:"required"`
	// Lifetime is a duration such as "48h", or "unlimited". The server
	// default is used when both Lifetime and Expire are empty.
	Lifetime string `json:"lifetime"`
	// Expire is an absolute deadline. It can not be combined with Lifetime.
	Expire *Time `json:"expire"`
}

type CreateAccessTokenResponse struct {
	AccessToken
	// Value is the secret presented by viewers of the unpublished content.
	Value string `json:"value"`
}

type RenewAccessTokenRequest struct {
	Lifetime string `json:"lifetime"`
}

type ContentAccessResponse struct {
	Allowed bool `json:"allowed"`
	// Expires is set when access was granted by a token.
	Expires *Time `json:"expires,omitempty"`
}
