package cycle

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/tanda/internal/models"
)

// Roster edits invalidate prior bookkeeping: payments are keyed
// per-round-per-member and payout-order positions shift, so both commands
// deliberately reset the group to Pending/round 1, discarding history.

// AddMember adds a new member to the roster and appends it to the end of the
// payout order, leaving existing entries untouched. The group is reset.
func AddMember(group models.Group, member models.Member) (models.Group, error) {
	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return models.Group{}, validationf("member name is required")
	}
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if group.Member(member.ID) != nil {
		return models.Group{}, validationf("member id %s already exists in group %s", member.ID, group.ID)
	}

	out := group.Clone()
	out.Members = append(out.Members, member)
	out.PayoutOrder = append(out.PayoutOrder, member.ID)
	return ResetGroup(out), nil
}

// RemoveMember drops a member from the roster and its slot from the payout
// order, preserving the relative order of everyone else. The group is reset.
// Removal that would leave fewer than two members fails.
func RemoveMember(group models.Group, memberID string) (models.Group, error) {
	if group.Member(memberID) == nil {
		return models.Group{}, validationf("member %s is not in group %s", memberID, group.ID)
	}
	if len(group.Members)-1 < 2 {
		return models.Group{}, validationf("removing member %s would leave fewer than 2 members", memberID)
	}

	out := group.Clone()
	members := out.Members[:0]
	for _, m := range out.Members {
		if m.ID != memberID {
			members = append(members, m)
		}
	}
	out.Members = members

	order := out.PayoutOrder[:0]
	for _, id := range out.PayoutOrder {
		if id != memberID {
			order = append(order, id)
		}
	}
	out.PayoutOrder = order

	return ResetGroup(out), nil
}
