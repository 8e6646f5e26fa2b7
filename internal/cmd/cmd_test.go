package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrahq/unpublished/api"
	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func TestVersionCmd(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun(t, "version")
	assert.Equal(t, internal.FullVersion()+"\n", out)
}

func TestPermissionsListCmd(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun(t, "permissions", "list")
	assert.Contains(t, out, "No permissions found")

	c.mustRun(t, "bundles", "add", "article", "Article")
	c.mustRun(t, "bundles", "add", "page", "Basic Page")

	t.Run("json", func(t *testing.T) {
		out := c.mustRun(t, "permissions", "list", "--format", "json")

		var permissions []api.Permission
		require.NoError(t, json.Unmarshal([]byte(out), &permissions))

		expected := []api.Permission{
			{Key: "access_unpublished node article", Title: "Access unpublished article nodes", Bundle: "article"},
			{Key: "access_unpublished node page", Title: "Access unpublished basic page nodes", Bundle: "page"},
		}
		assert.Equal(t, expected, permissions)
	})

	t.Run("yaml", func(t *testing.T) {
		out := c.mustRun(t, "permissions", "list", "--format", "yaml")
		assert.Contains(t, out, "- key: access_unpublished node page\n  title: Access unpublished basic page nodes\n  bundle: page\n")
	})

	t.Run("table", func(t *testing.T) {
		out := c.mustRun(t, "permissions", "list")
		assert.Contains(t, out, "PERMISSION")
		assert.Contains(t, out, "Access unpublished article nodes")
		assert.NotContains(t, out, access.PermissionRenewToken)
	})

	t.Run("all", func(t *testing.T) {
		out := c.mustRun(t, "permissions", "list", "--all")
		assert.Contains(t, out, access.PermissionRenewToken)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := c.run(t, "permissions", "list", "--format", "xml")
		assert.EqualError(t, err, `unsupported format "xml", expected json or yaml`)
	})
}

func TestBundlesCmd(t *testing.T) {
	c := newTestCLI(t)

	assert.Equal(t, "Added bundle \"article\"\n", c.mustRun(t, "bundles", "add", "article", "Article"))

	_, err := c.run(t, "bundles", "add", "article", "Article")
	assert.ErrorIs(t, err, internal.ErrDuplicate)

	out := c.mustRun(t, "bundles", "list")
	assert.Contains(t, out, "article")
	assert.Contains(t, out, "Article")

	c.mustRun(t, "bundles", "remove", "article")

	_, err = c.run(t, "bundles", "remove", "article")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestRolesAddCmd(t *testing.T) {
	c := newTestCLI(t)

	c.mustRun(t, "bundles", "add", "article", "Article")

	_, err := c.run(t, "roles", "add", "editors", "--permissions", "access_unpublished node page")
	assert.ErrorContains(t, err, `unknown permissions ["access_unpublished node page"]`)

	out := c.mustRun(t, "roles", "add", "editors", "--permissions", "access_unpublished node article")
	assert.Equal(t, "Added role \"editors\"\n", out)

	out = c.mustRun(t, "roles", "add", "editors", "--permissions", "issue token,access_unpublished node article")
	assert.Equal(t, "Updated role \"editors\"\n", out)

	role, err := data.GetRole(c.db(t), "editors")
	require.NoError(t, err)
	assert.Equal(t, models.CommaSeparatedStrings{"access_unpublished node article", "issue token"}, role.Permissions)
}

func TestUsersCmd(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun(t, "users", "add", "alice", "--roles", "editors,reviewers")
	_, key, ok := strings.Cut(out, "Key: ")
	require.True(t, ok, out)
	key = strings.TrimSpace(key)

	user, err := data.ValidateUserKey(c.db(t), key)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, models.CommaSeparatedStrings{"editors", "reviewers"}, user.Roles)

	out = c.mustRun(t, "users", "list")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "editors, reviewers")

	c.mustRun(t, "users", "remove", "alice")

	_, err = c.run(t, "users", "remove", "alice")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestTokensCmd(t *testing.T) {
	c := newTestCLI(t)

	c.mustRun(t, "bundles", "add", "article", "Article")

	db := c.db(t)

	owner := &models.User{Name: "owner"}
	require.NoError(t, data.CreateUser(db, owner))

	content := &models.Content{Bundle: "article", Title: "Draft", OwnerID: owner.ID}
	require.NoError(t, data.CreateContent(db, content))

	expired := (&models.AccessToken{OwnerID: owner.ID, ContentID: content.ID}).SetCreatedTime(time.Now().Add(-3 * time.Hour).Unix())
	require.NoError(t, data.CreateAccessToken(db, expired, models.Lifetime(time.Hour)))

	active := &models.AccessToken{OwnerID: owner.ID, ContentID: content.ID}
	require.NoError(t, data.CreateAccessToken(db, active, models.NeverExpire))

	out := c.mustRun(t, "tokens", "list")
	assert.Contains(t, out, active.ID.String())
	assert.Contains(t, out, "never")
	assert.NotContains(t, out, expired.ID.String())

	out = c.mustRun(t, "tokens", "list", "--show-expired", "--content", content.ID.String())
	assert.Contains(t, out, expired.ID.String())

	out = c.mustRun(t, "tokens", "purge", "--grace-period", "4h")
	assert.Equal(t, "Deleted 0 expired access tokens\n", out)

	out = c.mustRun(t, "tokens", "purge")
	assert.Equal(t, "Deleted 1 expired access tokens\n", out)
}
