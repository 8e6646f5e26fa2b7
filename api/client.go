package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/infrahq/unpublished/uid"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrServer       = errors.New("server error")
)

// Client calls the HTTP API. Token is the user key sent as a bearer token,
// requests without a Token are anonymous.
type Client struct {
	URL   string
	Token string
	HTTP  http.Client
}

func checkError(status int, body []byte) error {
	if status < http.StatusBadRequest {
		return nil
	}

	apiError := Error{Code: int32(status), Message: http.StatusText(status)}
	_ = json.Unmarshal(body, &apiError)

	var err error
	switch status {
	case http.StatusBadRequest:
		err = ErrBadRequest
	case http.StatusUnauthorized:
		err = ErrUnauthorized
	case http.StatusForbidden:
		err = ErrForbidden
	case http.StatusConflict:
		err = ErrDuplicate
	case http.StatusNotFound:
		err = ErrNotFound
	default:
		err = ErrServer
	}

	return fmt.Errorf("%w: %s", err, apiError.Message)
}

func (c Client) do(method, path string, query url.Values, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, c.URL+path, body)
	if err != nil {
		return nil, err
	}

	if c.Token != "" {
		req.Header.Add("Authorization", "Bearer "+c.Token)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.URL.RawQuery = query.Encode()

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := checkError(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

func get[Res any](client Client, path string, query url.Values) (*Res, error) {
	body, err := client.do(http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var res Res
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func request[Req, Res any](client Client, method string, path string, req *Req) (*Res, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	body, err := client.do(method, path, nil, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}

	var res Res
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func post[Req, Res any](client Client, path string, req *Req) (*Res, error) {
	return request[Req, Res](client, http.MethodPost, path, req)
}

func put[Req, Res any](client Client, path string, req *Req) (*Res, error) {
	return request[Req, Res](client, http.MethodPut, path, req)
}

func del(client Client, path string) error {
	_, err := client.do(http.MethodDelete, path, nil, nil)
	return err
}

func (c Client) Version() (*Version, error) {
	return get[Version](c, "/api/version", nil)
}

func (c Client) ListPermissions() (*ListResponse[Permission], error) {
	return get[ListResponse[Permission]](c, "/api/permissions", nil)
}

func (c Client) ListBundles() (*ListResponse[Bundle], error) {
	return get[ListResponse[Bundle]](c, "/api/bundles", nil)
}

func (c Client) CreateBundle(req *CreateBundleRequest) (*Bundle, error) {
	return post[CreateBundleRequest, Bundle](c, "/api/bundles", req)
}

func (c Client) CreateContent(req *CreateContentRequest) (*Content, error) {
	return post[CreateContentRequest, Content](c, "/api/contents", req)
}

func (c Client) GetContent(id uid.ID) (*Content, error) {
	return get[Content](c, fmt.Sprintf("/api/contents/%s", id), nil)
}

// ContentAccess asks whether the client may view a content item. value is
// sent in the hashKey query parameter, and may be empty.
func (c Client) ContentAccess(id uid.ID, hashKey, value string) (*ContentAccessResponse, error) {
	query := url.Values{}
	if value != "" {
		query.Set(hashKey, value)
	}

	return get[ContentAccessResponse](c, fmt.Sprintf("/api/contents/%s/access", id), query)
}

func (c Client) ListAccessTokens(req ListAccessTokensRequest) (*ListResponse[AccessToken], error) {
	query := url.Values{}
	if req.ContentID != "" {
		query.Set("contentID", req.ContentID)
	}
	if req.ShowExpired {
		query.Set("showExpired", "true")
	}

	return get[ListResponse[AccessToken]](c, "/api/tokens", query)
}

func (c Client) CreateAccessToken(req *CreateAccessTokenRequest) (*CreateAccessTokenResponse, error) {
	return post[CreateAccessTokenRequest, CreateAccessTokenResponse](c, "/api/tokens", req)
}

func (c Client) RenewAccessToken(id uid.ID, req *RenewAccessTokenRequest) (*AccessToken, error) {
	return put[RenewAccessTokenRequest, AccessToken](c, fmt.Sprintf("/api/tokens/%s/renew", id), req)
}

func (c Client) DeleteAccessToken(id uid.ID) error {
	return del(c, fmt.Sprintf("/api/tokens/%s", id))
}
