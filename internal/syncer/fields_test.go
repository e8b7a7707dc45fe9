package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talentops/creator-sync/internal/model"
)

func TestDeriveFields(t *testing.T) {
	c := model.Creator{
		UserID:               5,
		TikTokUsername:       " creator_one ",
		RealFirstName:        "Amira",
		RoleTag:              "role_creator",
		GroupRaw:             "Alpha (Team Red)",
		ManagerRaw:           "manager@agency.com",
		TierTag:              "Tier 1",
		ProfilePicURL:        "https://cdn.example.com/p.jpg",
		StatsAsOf:            time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
		DiamondsMTD:          250000,
		ValidDaysMTD:         20,
		LiveDurationMTDHours: 41.5,
		Lifecycle:            "active",
	}

	d := deriveFields(c, "+447000000001")

	assert.Equal(t, "creator_one", d.upsert.FirstName)
	assert.Equal(t, "+447000000001", d.upsert.Phone)
	assert.Equal(t, "https://cdn.example.com/p.jpg", d.upsert.ProfilePic)
	assert.Equal(t, "role_creator", d.roleTag)
	assert.Equal(t, "Tier 1", d.tierLabel)
	assert.Equal(t, "active", d.lifecycle)

	f := d.upsert.CustomFields
	assert.Equal(t, "creator_one", f["tiktok_username"])
	assert.Equal(t, "Amira", f["real_first_name"])
	assert.Equal(t, "Team Red", f["group"])
	assert.Equal(t, "manager", f["manager"])
	assert.Equal(t, "Tier 1", f["tier"])
	// 250k diamonds is rank 3 against a stored rank of 1.
	assert.Equal(t, "Upgrading", f["tier_status"])
	assert.Equal(t, "250,000", f["diamonds_mtd"])
	assert.Equal(t, "20", f["valid_days_mtd"])
	assert.Equal(t, "41h 30m", f["live_duration_mtd"])
	assert.Equal(t, "3rd Jan", f["stats_as_of"])
	assert.Equal(t, "in_agency", f["agency_status"])
}

func TestDeriveFieldsDefaults(t *testing.T) {
	c := model.Creator{UserID: 42, TierTag: "", DiamondsMTD: 0}

	d := deriveFields(c, "+1")

	assert.Equal(t, "user_42", d.upsert.FirstName)
	assert.Equal(t, "Tier 1", d.tierLabel)
	assert.Equal(t, "", d.upsert.ProfilePic)

	f := d.upsert.CustomFields
	assert.Equal(t, "Tier 1", f["tier"])
	// Both ranks are 1, so the status is Retained.
	assert.Equal(t, "Retained", f["tier_status"])
	assert.Equal(t, "0", f["diamonds_mtd"])
	assert.Equal(t, "0h 0m", f["live_duration_mtd"])
	assert.Equal(t, "", f["stats_as_of"])
}

func TestDeriveFieldsDowngrading(t *testing.T) {
	c := model.Creator{UserID: 1, TierTag: "Tier 8 (Top)", DiamondsMTD: 150_000}
	d := deriveFields(c, "+1")
	assert.Equal(t, "Downgrading", d.upsert.CustomFields["tier_status"])
}

func TestDeriveFieldsNAValuesBlank(t *testing.T) {
	c := model.Creator{UserID: 7, TikTokUsername: "N/A", ManagerRaw: "n/a", Lifecycle: "N/A"}
	d := deriveFields(c, "+1")
	assert.Equal(t, "user_7", d.upsert.FirstName)
	assert.Equal(t, "", d.upsert.CustomFields["tiktok_username"])
	assert.Equal(t, "", d.upsert.CustomFields["manager"])
	assert.Equal(t, "", d.lifecycle)
}
