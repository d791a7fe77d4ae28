package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/db"
	"github.com/erazemk/donations/internal/model"
)

func TestDonationDetailsAndStats(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "donor@example.org", "", "", "", model.RoleUser, nil)
	chair, _ := CreateItem(ctx, database, model.Item{Category: "Furniture", Name: "Chair", ValueNew: 40, ValueUsed: 10})
	lamp, _ := CreateItem(ctx, database, model.Item{Category: "Furniture", Name: "Lamp", ValueNew: 20, ValueUsed: 5})

	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	donation, err := CreateDonation(ctx, database, user.ID, model.DirectionOutgoing, date)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionOutgoing, donation.Direction)
	assert.True(t, donation.Date.Equal(date), "got date %v", donation.Date)

	require.NoError(t, UpsertDonationDetail(ctx, database, donation.ID, chair.ID, 2, 1))
	require.NoError(t, UpsertDonationDetail(ctx, database, donation.ID, lamp.ID, 1, 0))
	require.NoError(t, UpsertDonationDetail(ctx, database, donation.ID, chair.ID, 3, 0))

	details, err := ListDonationDetails(ctx, database, donation.ID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Chair", details[0].ItemName)
	assert.Equal(t, 3, details[0].NewQuantity)
	assert.Equal(t, 0, details[0].UsedQuantity)

	require.NoError(t, DeleteDonationDetail(ctx, database, donation.ID, lamp.ID))
	details, _ = ListDonationDetails(ctx, database, donation.ID)
	assert.Len(t, details, 1)

	stats, err := UpsertOutgoingStats(ctx, database, model.OutgoingStats{
		DonationID: donation.ID, NumberServed: 3, WhiteNum: 1, AsianNum: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NumberServed)

	stats, err = UpsertOutgoingStats(ctx, database, model.OutgoingStats{
		DonationID: donation.ID, NumberServed: 1, OtherNum: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NumberServed)
	assert.Equal(t, 0, stats.AsianNum)

	_, err = UpsertOutgoingStats(ctx, database, model.OutgoingStats{DonationID: donation.ID})
	assert.Error(t, err, "zero served must violate the CHECK constraint")
}

func TestDeleteDonationCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "donor@example.org", "", "", "", model.RoleUser, nil)
	chair, _ := CreateItem(ctx, database, model.Item{Category: "Furniture", Name: "Chair"})
	donation, _ := CreateDonation(ctx, database, user.ID, model.DirectionOutgoing, time.Now())
	UpsertDonationDetail(ctx, database, donation.ID, chair.ID, 1, 0)
	UpsertOutgoingStats(ctx, database, model.OutgoingStats{DonationID: donation.ID, NumberServed: 1, OtherNum: 1})

	require.NoError(t, DeleteDonation(ctx, database, donation.ID))

	got, err := GetDonation(ctx, database, donation.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	details, err := ListDonationDetails(ctx, database, donation.ID)
	require.NoError(t, err)
	assert.Empty(t, details)

	stats, err := GetOutgoingStats(ctx, database, donation.ID)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestListDonationSummaries(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	org, _ := CreateOrganization(ctx, database, "Acme", model.OrganizationTypeCorporate)
	corporate, _ := CreateUser(ctx, database, "giving@acme.test", "", "", "", model.RoleUser, &org.ID)
	individual, _ := CreateUser(ctx, database, "me@example.org", "", "", "", model.RoleUser, nil)
	chair, _ := CreateItem(ctx, database, model.Item{Category: "Furniture", Name: "Chair", ValueNew: 40, ValueUsed: 10})

	older, _ := CreateDonation(ctx, database, corporate.ID, model.DirectionIncoming, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	UpsertDonationDetail(ctx, database, older.ID, chair.ID, 2, 3)
	newer, _ := CreateDonation(ctx, database, individual.ID, model.DirectionOutgoing, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	UpsertDonationDetail(ctx, database, newer.ID, chair.ID, 1, 0)

	total, err := CountDonations(ctx, database, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	incoming, err := CountDonations(ctx, database, model.DirectionIncoming)
	require.NoError(t, err)
	assert.Equal(t, 1, incoming)

	page, err := ListDonationSummaries(ctx, database, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)

	assert.Equal(t, newer.ID, page[0].ID)
	assert.Equal(t, model.IndividualDonor, page[0].Organization)
	assert.Equal(t, 1, page[0].Items)
	assert.InDelta(t, 40.0, page[0].Total, 0.001)

	assert.Equal(t, "Acme", page[1].Organization)
	assert.Equal(t, model.OrganizationTypeCorporate, page[1].Type)
	require.Len(t, page[1].Details, 2)
	assert.Equal(t, model.ConditionUsed, page[1].Details[0].Status)
	assert.Equal(t, model.ConditionNew, page[1].Details[1].Status)
	assert.InDelta(t, 2*40.0+3*10.0, page[1].Total, 0.001)

	second, err := ListDonationSummaries(ctx, database, "", 2, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)

	_, err = ListDonationSummaries(ctx, database, "", 0, 10)
	assert.Error(t, err)
}
