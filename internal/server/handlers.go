package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/uid"
)

func (a *API) Version(c *gin.Context, _ *api.EmptyRequest) (*api.Version, error) {
	return &api.Version{Version: internal.FullVersion()}, nil
}

// ListPermissions returns the static permissions followed by one permission
// for each bundle.
func (a *API) ListPermissions(c *gin.Context, _ *api.EmptyRequest) (*api.ListResponse[api.Permission], error) {
	registry := access.NewPermissionRegistry(data.BundleCatalog{DB: access.GetRequestContext(c).DB})

	definitions, err := registry.Definitions(c.Request.Context())
	if err != nil {
		return nil, err
	}

	definitions = append(access.StaticPermissions(), definitions...)

	return api.NewListResponse(definitions, func(d access.PermissionDefinition) api.Permission {
		return api.Permission{Key: d.Key, Title: d.Title, Bundle: d.Bundle}
	}), nil
}

func (a *API) ListBundles(c *gin.Context, _ *api.EmptyRequest) (*api.ListResponse[api.Bundle], error) {
	bundles, err := access.ListBundles(c)
	if err != nil {
		return nil, err
	}

	return api.NewListResponse(bundles, func(b models.Bundle) api.Bundle {
		return *b.ToAPI()
	}), nil
}

func (a *API) CreateBundle(c *gin.Context, r *api.CreateBundleRequest) (*api.Bundle, error) {
	bundle := &models.Bundle{ID: r.ID, Label: r.Label}
	if err := access.CreateBundle(c, bundle); err != nil {
		return nil, err
	}

	return bundle.ToAPI(), nil
}

func (a *API) CreateContent(c *gin.Context, r *api.CreateContentRequest) (*api.Content, error) {
	content := &models.Content{Bundle: r.Bundle, Title: r.Title, Published: r.Published}
	if err := access.CreateContent(c, content); err != nil {
		return nil, err
	}

	return content.ToAPI(), nil
}

func (a *API) GetContent(c *gin.Context, _ *api.EmptyRequest) (*api.Content, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}

	content, err := access.GetContent(c, id)
	if err != nil {
		return nil, err
	}

	return content.ToAPI(), nil
}

// ContentAccess checks the token value passed in the hash key query parameter
// against a content item.
func (a *API) ContentAccess(c *gin.Context, _ *api.EmptyRequest) (*api.ContentAccessResponse, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}

	token, err := access.ContentAccess(c, id, c.Query(a.server.options.HashKey))
	if err != nil {
		return nil, err
	}

	resp := &api.ContentAccessResponse{Allowed: true}
	if token != nil {
		resp.Expires = token.ToAPI().Expires
	}

	return resp, nil
}

func (a *API) ListAccessTokens(c *gin.Context, r *api.ListAccessTokensRequest) (*api.ListResponse[api.AccessToken], error) {
	var contentID uid.ID
	if r.ContentID != "" {
		id, err := uid.Parse([]byte(r.ContentID))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid contentID: %s", internal.ErrBadRequest, err)
		}
		contentID = id
	}

	tokens, err := access.ListAccessTokens(c, contentID, r.ShowExpired)
	if err != nil {
		return nil, err
	}

	return api.NewListResponse(tokens, func(token models.AccessToken) api.AccessToken {
		return *token.ToAPI()
	}), nil
}

func (a *API) CreateAccessToken(c *gin.Context, r *api.CreateAccessTokenRequest) (*api.CreateAccessTokenResponse, error) {
	policy, err := a.expiryPolicy(r.Lifetime, r.Expire)
	if err != nil {
		return nil, err
	}

	token := &models.AccessToken{ContentID: r.ContentID}
	if err := access.CreateAccessToken(c, token, policy); err != nil {
		return nil, err
	}

	return &api.CreateAccessTokenResponse{
		AccessToken: *token.ToAPI(),
		Value:       token.Value,
	}, nil
}

func (a *API) RenewAccessToken(c *gin.Context, r *api.RenewAccessTokenRequest) (*api.AccessToken, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}

	policy, err := a.expiryPolicy(r.Lifetime, nil)
	if err != nil {
		return nil, err
	}

	token, err := access.RenewAccessToken(c, id, policy)
	if err != nil {
		return nil, err
	}

	return token.ToAPI(), nil
}

func (a *API) DeleteAccessToken(c *gin.Context, _ *api.EmptyRequest) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	return access.DeleteAccessToken(c, id)
}

// expiryPolicy picks the policy of a token request. An absolute expire takes
// a deadline, otherwise the lifetime or the server default is used.
func (a *API) expiryPolicy(lifetime string, expire *api.Time) (models.ExpiryPolicy, error) {
	switch {
	case lifetime != "" && expire != nil:
		return nil, fmt.Errorf("%w: lifetime and expire can not be combined", internal.ErrBadRequest)
	case expire != nil:
		deadline := time.Time(*expire)
		if !deadline.After(time.Now()) {
			return nil, fmt.Errorf("%w: expire must be in the future", internal.ErrBadRequest)
		}
		return models.Deadline(deadline), nil
	case lifetime != "":
		l, err := models.ParseLifetime(lifetime)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", internal.ErrBadRequest, err)
		}
		return l, nil
	default:
		return a.server.options.TokenLifetime, nil
	}
}

func pathID(c *gin.Context) (uid.ID, error) {
	id, err := uid.Parse([]byte(c.Param("id")))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", internal.ErrBadRequest, c.Param("id"))
	}

	return id, nil
}
