// Package cycle implements the rotation engine for tanda groups: pure
// state transitions over a Group value covering group creation, payment
// recording, payout completion, round advancement, and roster edits.
//
// Every command takes a Group by value and returns a fresh Group or a typed
// error; the input is never mutated. Callers (the service layer) own the
// authoritative snapshot and decide when to commit and persist the result.
package cycle

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/tanda/internal/models"
)

// CreateGroup builds a new group in Pending state with a fresh round 1.
//
// Member and group ids are generated when empty. If payoutOrder is empty
// the roster's insertion order is used; otherwise it must be a permutation
// of the member ids.
func CreateGroup(name string, contributionAmount float64, members []models.Member, payoutOrder []string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, validationf("group name is required")
	}
	if contributionAmount <= 0 {
		return models.Group{}, validationf("contribution amount must be positive, got %v", contributionAmount)
	}
	if len(members) < 2 {
		return models.Group{}, validationf("a group needs at least 2 members, got %d", len(members))
	}

	roster := make([]models.Member, len(members))
	ids := make(map[string]bool, len(members))
	for i, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return models.Group{}, validationf("member name is required")
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if ids[m.ID] {
			return models.Group{}, validationf("duplicate member id %s", m.ID)
		}
		ids[m.ID] = true
		roster[i] = m
	}

	if len(payoutOrder) == 0 {
		payoutOrder = make([]string, len(roster))
		for i, m := range roster {
			payoutOrder[i] = m.ID
		}
	} else if err := checkPermutation(payoutOrder, ids); err != nil {
		return models.Group{}, err
	}

	g := models.Group{
		ID:                 uuid.New().String(),
		Name:               name,
		ContributionAmount: contributionAmount,
		Members:            roster,
		PayoutOrder:        append([]string(nil), payoutOrder...),
		CurrentRound:       1,
		Status:             models.StatusPending,
		Rounds:             []models.Round{newRound(1, roster)},
	}
	return g, nil
}

// RecordPayment marks the member's contribution in the current round as
// Paid. Re-marking an already-Paid member is a no-op, not an error.
//
// Once the last outstanding payment lands, the round's payout recipient is
// assigned from the payout order slot for that round; the assignment is
// never recomputed afterward.
func RecordPayment(group models.Group, memberID string) (models.Group, error) {
	if group.Status == models.StatusCompleted {
		return models.Group{}, invalidStatef("group %s has completed its cycle", group.ID)
	}
	cur := group.ActiveRound()
	if cur == nil {
		return models.Group{}, invalidStatef("group %s has no round %d", group.ID, group.CurrentRound)
	}
	if cur.PayoutCompleted {
		return models.Group{}, invalidStatef("round %d payout already completed", cur.RoundNumber)
	}
	if group.Member(memberID) == nil {
		return models.Group{}, validationf("member %s is not in group %s", memberID, group.ID)
	}

	out := group.Clone()
	round := out.ActiveRound()
	payment := round.Payment(memberID)
	if payment == nil {
		return models.Group{}, invalidStatef("round %d has no payment slot for member %s", round.RoundNumber, memberID)
	}
	payment.Status = models.PaymentPaid

	if round.PayoutMemberID == "" && round.AllPaid() {
		round.PayoutMemberID = out.PayoutOrder[out.CurrentRound-1]
	}
	return out, nil
}

// CompletePayout closes the current round's payout: the pool is considered
// handed to the assigned recipient. Completing an already-completed round is
// a no-op. A Pending group becomes Active on its first payout.
func CompletePayout(group models.Group) (models.Group, error) {
	cur := group.ActiveRound()
	if cur == nil {
		return models.Group{}, invalidStatef("group %s has no round %d", group.ID, group.CurrentRound)
	}
	if cur.PayoutCompleted {
		return group.Clone(), nil
	}
	if cur.PayoutMemberID == "" {
		return models.Group{}, prerequisitef("round %d has no payout recipient yet; not all members have paid", cur.RoundNumber)
	}

	out := group.Clone()
	out.ActiveRound().PayoutCompleted = true
	if out.Status == models.StatusPending {
		out.Status = models.StatusActive
	}
	return out, nil
}

// AdvanceRound moves the group past a completed payout: it opens the next
// round with a fresh set of Unpaid payments, or, when the final payout-order
// slot has been serviced, marks the whole cycle Completed without creating
// another round.
func AdvanceRound(group models.Group) (models.Group, error) {
	cur := group.ActiveRound()
	if cur == nil {
		return models.Group{}, invalidStatef("group %s has no round %d", group.ID, group.CurrentRound)
	}
	if !cur.PayoutCompleted {
		return models.Group{}, prerequisitef("round %d payout has not been completed", cur.RoundNumber)
	}

	out := group.Clone()
	if out.CurrentRound < len(out.Members) {
		out.CurrentRound++
		out.Rounds = append(out.Rounds, newRound(out.CurrentRound, out.Members))
	} else {
		out.Status = models.StatusCompleted
	}
	return out, nil
}

// SetPayoutOrder replaces the group's payout order with a new permutation of
// the roster. Recorded history is immutable: slots covering completed rounds
// must keep their recipients, and the current round's slot is frozen once
// its recipient has been assigned.
func SetPayoutOrder(group models.Group, newOrder []string) (models.Group, error) {
	ids := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		ids[m.ID] = true
	}
	if err := checkPermutation(newOrder, ids); err != nil {
		return models.Group{}, err
	}

	for i := range group.Rounds {
		r := &group.Rounds[i]
		if r.PayoutMemberID == "" {
			continue
		}
		if newOrder[r.RoundNumber-1] != r.PayoutMemberID {
			return models.Group{}, invalidStatef(
				"round %d already pays out to %s; reorder would contradict it", r.RoundNumber, r.PayoutMemberID)
		}
	}

	out := group.Clone()
	out.PayoutOrder = append([]string(nil), newOrder...)
	return out, nil
}

// ResetGroup returns the group to Pending with a fresh round 1, discarding
// all round history. Members and payout order are preserved. The command is
// unconditional; callers decide when a reset is allowed.
func ResetGroup(group models.Group) models.Group {
	out := group.Clone()
	out.Status = models.StatusPending
	out.CurrentRound = 1
	out.Rounds = []models.Round{newRound(1, out.Members)}
	return out
}

func newRound(number int, members []models.Member) models.Round {
	payments := make([]models.Payment, len(members))
	for i, m := range members {
		payments[i] = models.Payment{MemberID: m.ID, Status: models.PaymentUnpaid}
	}
	return models.Round{RoundNumber: number, Payments: payments}
}

func checkPermutation(order []string, memberIDs map[string]bool) error {
	if len(order) != len(memberIDs) {
		return validationf("payout order has %d entries for %d members", len(order), len(memberIDs))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if !memberIDs[id] {
			return validationf("payout order references unknown member %s", id)
		}
		if seen[id] {
			return validationf("payout order repeats member %s", id)
		}
		seen[id] = true
	}
	return nil
}
