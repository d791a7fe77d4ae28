package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/model"
)

func TestOrganizations(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	shelter, err := CreateOrganization(ctx, database, "Family Shelter", model.OrganizationTypeAgency)
	require.NoError(t, err)
	assert.Equal(t, model.OrganizationTypeAgency, shelter.Type)

	_, err = CreateOrganization(ctx, database, "Acme", model.OrganizationTypeCorporate)
	require.NoError(t, err)

	_, err = CreateOrganization(ctx, database, "Nobody", "Unknown")
	assert.Error(t, err, "type outside the CHECK constraint must be rejected")

	all, err := ListOrganizations(ctx, database, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	agencies, err := ListOrganizations(ctx, database, model.OrganizationTypeAgency)
	require.NoError(t, err)
	require.Len(t, agencies, 1)
	assert.Equal(t, "Family Shelter", agencies[0].Name)

	missing, err := GetOrganization(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
