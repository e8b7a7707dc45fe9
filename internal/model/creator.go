// Package model holds the core domain types shared across the sync pipeline.
package model

import "time"

// AgencyStatusActive is the literal agency status that qualifies a creator
// for CRM sync. Any other value marks the row as no longer in the agency.
const AgencyStatusActive = "in_agency"

// Creator is one row from the source of truth. Rows are immutable once
// fetched; a batch run owns its own snapshot.
type Creator struct {
	UserID               int64     `json:"user_id"`
	PhoneRaw             string    `json:"phone_raw"`
	TikTokUsername       string    `json:"tiktok_username"`
	RealFirstName        string    `json:"real_first_name"`
	AgencyStatus         string    `json:"agency_status"`
	RoleTag              string    `json:"role_tag"`
	GroupRaw             string    `json:"group_raw"`
	ManagerRaw           string    `json:"manager_raw"`
	TierTag              string    `json:"tier_tag"`
	ProfilePicURL        string    `json:"profile_pic_url"`
	StatsAsOf            time.Time `json:"stats_as_of"`
	DiamondsMTD          float64   `json:"diamonds_mtd"`
	ValidDaysMTD         float64   `json:"valid_days_mtd"`
	LiveDurationMTDHours float64   `json:"live_duration_mtd_hours"`
	Lifecycle            string    `json:"lifecycle"`
}

// InAgency reports whether the row's agency status marks it as active.
func (c Creator) InAgency() bool {
	return c.AgencyStatus == AgencyStatusActive
}

// RunSummary aggregates the outcome of one sync batch.
type RunSummary struct {
	Phones int `json:"phones"`
	OK     int `json:"ok"`
	Fail   int `json:"fail"`
}
