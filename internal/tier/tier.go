// Package tier classifies creators into tier ranks and derives the
// month-over-month tier transition status.
package tier

import (
	"fmt"
	"strings"
)

// Status describes the transition between the stored tier and the tier
// implied by the current month's diamonds.
type Status string

const (
	StatusUpgrading   Status = "Upgrading"
	StatusDowngrading Status = "Downgrading"
	StatusRetained    Status = "Retained"
)

// MinRank and MaxRank bound the tier rank scale.
const (
	MinRank = 1
	MaxRank = 10
)

// diamondThresholds maps the minimum monthly diamond count to a rank,
// highest first.
var diamondThresholds = []struct {
	min  float64
	rank int
}{
	{5_000_000, 10},
	{2_500_000, 9},
	{1_600_000, 8},
	{1_000_000, 7},
	{700_000, 6},
	{500_000, 5},
	{300_000, 4},
	{200_000, 3},
	{100_000, 2},
}

// canonicalTags is the fixed universe of tier tag labels as they exist in
// the CRM. Two labels carry parenthetical qualifiers and "Tier 10 " keeps
// its trailing space; these are the literal tag values, not display text.
var canonicalTags = []string{
	"Tier 1",
	"Tier 2",
	"Tier 3 (Mature)",
	"Tier 4",
	"Tier 5",
	"Tier 6",
	"Tier 7",
	"Tier 8 (Top)",
	"Tier 9",
	"Tier 10 ",
}

// RankFromLabel maps a stored tier label to a rank. Labels are matched by
// prefix from "Tier 10" down to "Tier 2" so that "Tier 1" never shadows
// "Tier 10"; anything unmatched (including the empty label) is rank 1.
func RankFromLabel(label string) int {
	for rank := MaxRank; rank >= 2; rank-- {
		if strings.HasPrefix(label, fmt.Sprintf("Tier %d", rank)) {
			return rank
		}
	}
	return MinRank
}

// RankFromDiamonds maps a monthly diamond count to a rank via the fixed
// threshold table. Non-positive or non-finite counts are rank 1.
func RankFromDiamonds(count float64) int {
	for _, t := range diamondThresholds {
		if count >= t.min {
			return t.rank
		}
	}
	return MinRank
}

// Transition compares the previous rank with the current month's rank.
func Transition(prevRank, currentRank int) Status {
	switch {
	case currentRank > prevRank:
		return StatusUpgrading
	case currentRank < prevRank:
		return StatusDowngrading
	default:
		return StatusRetained
	}
}

// TagUniverse returns the canonical tier tag labels unioned with any
// externally supplied extras, deduplicated preserving first-seen order.
// Blank extras are dropped.
func TagUniverse(extra []string) []string {
	seen := make(map[string]struct{}, len(canonicalTags)+len(extra))
	out := make([]string, 0, len(canonicalTags)+len(extra))
	for _, tag := range canonicalTags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	for _, tag := range extra {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
