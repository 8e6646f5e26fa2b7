package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func TestSetupMetrics(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, data.CreateBundle(db, &models.Bundle{ID: "article", Label: "Article"}))

	owner := &models.User{Name: "owner"}
	require.NoError(t, data.CreateUser(db, owner))

	draft := &models.Content{Bundle: "article", Title: "Draft", OwnerID: owner.ID}
	require.NoError(t, data.CreateContent(db, draft))
	require.NoError(t, data.CreateContent(db, &models.Content{Bundle: "article", Title: "Live", Published: true, OwnerID: owner.ID}))

	expired := (&models.AccessToken{OwnerID: owner.ID, ContentID: draft.ID}).SetCreatedTime(time.Now().Add(-2 * time.Hour).Unix())
	require.NoError(t, data.CreateAccessToken(db, expired, models.Lifetime(time.Hour)))
	require.NoError(t, data.CreateAccessToken(db, &models.AccessToken{OwnerID: owner.ID, ContentID: draft.ID}, models.Lifetime(time.Hour)))
	require.NoError(t, data.CreateAccessToken(db, &models.AccessToken{OwnerID: owner.ID, ContentID: draft.ID}, models.NeverExpire))

	registry := setupMetrics(db)

	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName()
			for _, label := range metric.GetLabel() {
				key += " " + label.GetName() + "=" + label.GetValue()
			}

			if metric.GetGauge() != nil {
				values[key] = metric.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, float64(2), values["unpublished_access_tokens state=active"])
	assert.Equal(t, float64(1), values["unpublished_access_tokens state=expired"])
	assert.Equal(t, float64(1), values["unpublished_contents bundle=article published=false"])
	assert.Equal(t, float64(1), values["unpublished_contents bundle=article published=true"])
	assert.Contains(t, values, "go_sql_max_open_connections db_name=sqlite")
}
