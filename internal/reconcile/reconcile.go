// Package reconcile dedupes source rows into phone-keyed identities and
// decides the CRM action for each one.
package reconcile

import (
	"sort"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/normalize"
)

// Action is the decided CRM operation for an identity.
type Action string

const (
	ActionSync   Action = "sync"
	ActionDelete Action = "delete"
)

// Reconciled is the single action derived for one phone identity.
type Reconciled struct {
	Action Action
	Phone  string
	// Creator is the representative row that drives the action.
	Creator model.Creator
}

// Reconcile groups rows by canonical phone, drops rows with no extractable
// digits, and picks one representative per identity:
//
//   - if any row in the group is in the agency, the action is sync and the
//     representative is the in-agency row with the highest user ID;
//   - otherwise the action is delete and the representative is the row
//     with the highest user ID overall.
//
// The result is sorted ascending by representative user ID so repeated
// runs process identities in the same order regardless of input order.
func Reconcile(rows []model.Creator) []Reconciled {
	groups := make(map[string][]model.Creator)
	for _, row := range rows {
		phone := normalize.Phone(row.PhoneRaw)
		if phone == "" {
			continue
		}
		groups[phone] = append(groups[phone], row)
	}

	out := make([]Reconciled, 0, len(groups))
	for phone, group := range groups {
		action := ActionDelete
		var rep model.Creator
		var haveRep bool
		for _, row := range group {
			if !row.InAgency() {
				continue
			}
			if !haveRep || row.UserID > rep.UserID {
				rep = row
				haveRep = true
			}
		}
		if haveRep {
			action = ActionSync
		} else {
			for _, row := range group {
				if !haveRep || row.UserID > rep.UserID {
					rep = row
					haveRep = true
				}
			}
		}
		out = append(out, Reconciled{Action: action, Phone: phone, Creator: rep})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Creator.UserID < out[j].Creator.UserID
	})
	return out
}
