package syncer

import (
	"fmt"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/normalize"
	"github.com/talentops/creator-sync/internal/tier"
	"github.com/talentops/creator-sync/pkg/crm"
)

// defaultTierLabel is used when the stored tier tag is blank.
const defaultTierLabel = "Tier 1"

// roleTagReplacementSet is deleted before the current role tag is added
// back: the two legacy lowercase tags plus their canonical forms.
var roleTagReplacementSet = []string{"role_creator", "role_manager", "Creator", "Manager"}

// derived holds everything the sync branch sends to the CRM for one
// representative row.
type derived struct {
	upsert    crm.UpsertRequest
	roleTag   string
	tierLabel string
	lifecycle string
}

// deriveFields maps a representative row to its CRM payloads.
func deriveFields(c model.Creator, phone string) derived {
	username := normalize.Text(c.TikTokUsername)

	firstName := username
	if firstName == "" {
		firstName = fmt.Sprintf("user_%d", c.UserID)
	}

	tierLabel := normalize.Text(c.TierTag)
	if tierLabel == "" {
		tierLabel = defaultTierLabel
	}
	prevRank := tier.RankFromLabel(tierLabel)
	currentRank := tier.RankFromDiamonds(c.DiamondsMTD)

	fields := map[string]string{
		"tiktok_username":   username,
		"real_first_name":   normalize.Text(c.RealFirstName),
		"group":             normalize.Parenthesized(normalize.Text(c.GroupRaw)),
		"manager":           normalize.EmailLocalPart(normalize.Text(c.ManagerRaw)),
		"tier":              tierLabel,
		"tier_status":       string(tier.Transition(prevRank, currentRank)),
		"diamonds_mtd":      normalize.Integer(c.DiamondsMTD),
		"valid_days_mtd":    normalize.Integer(c.ValidDaysMTD),
		"live_duration_mtd": normalize.HoursToHM(c.LiveDurationMTDHours),
		"stats_as_of":       normalize.DayMonth(c.StatsAsOf),
		"agency_status":     model.AgencyStatusActive,
	}

	return derived{
		upsert: crm.UpsertRequest{
			FirstName:    firstName,
			Phone:        phone,
			CustomFields: fields,
			ProfilePic:   normalize.Text(c.ProfilePicURL),
		},
		roleTag:   normalize.Text(c.RoleTag),
		tierLabel: tierLabel,
		lifecycle: normalize.Text(c.Lifecycle),
	}
}
