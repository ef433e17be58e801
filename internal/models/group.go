package models

import (
	"fmt"
	"strings"
)

// Group is a rotating-savings group: a fixed roster contributes a fixed
// amount each round, and exactly one member receives the pooled payout per
// round until everyone has been paid once.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Office Tanda").
	Name string `json:"name"`

	// ContributionAmount is what each member pays per round. Always > 0.
	ContributionAmount float64 `json:"contributionAmount"`

	// Members is the roster, at least two, unique ids.
	Members []Member `json:"members"`

	// PayoutOrder is a permutation of member ids; position N-1 names the
	// recipient of round N.
	PayoutOrder []string `json:"payoutOrder"`

	// CurrentRound is the 1-based number of the active round.
	CurrentRound int `json:"currentRound"`

	Status GroupStatus `json:"status"`

	// Rounds is ordered by RoundNumber, contiguous from 1 through
	// CurrentRound. Rounds beyond CurrentRound do not exist until
	// advancement creates them.
	Rounds []Round `json:"rounds"`
}

// Round returns a pointer to the round with the given number, or nil.
func (g *Group) Round(number int) *Round {
	for i := range g.Rounds {
		if g.Rounds[i].RoundNumber == number {
			return &g.Rounds[i]
		}
	}
	return nil
}

// ActiveRound returns a pointer to the current round, or nil if the group
// state is malformed.
func (g *Group) ActiveRound() *Round {
	return g.Round(g.CurrentRound)
}

// Member returns a pointer to the member with the given id, or nil.
func (g *Group) Member(id string) *Member {
	for i := range g.Members {
		if g.Members[i].ID == id {
			return &g.Members[i]
		}
	}
	return nil
}

// MemberName resolves a member id to its display name, or "" if unknown.
func (g *Group) MemberName(id string) string {
	if m := g.Member(id); m != nil {
		return m.Name
	}
	return ""
}

// Clone returns a deep copy of the group. Cycle commands clone before
// mutating so the caller's value is never touched.
func (g Group) Clone() Group {
	out := g
	out.Members = append([]Member(nil), g.Members...)
	out.PayoutOrder = append([]string(nil), g.PayoutOrder...)
	out.Rounds = make([]Round, len(g.Rounds))
	for i, r := range g.Rounds {
		cr := r
		cr.Payments = append([]Payment(nil), r.Payments...)
		out.Rounds[i] = cr
	}
	return out
}

// Validate checks every structural invariant the cycle commands rely on.
// Storage backends run it against untrusted snapshots on load; tests run it
// after every command.
func (g *Group) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("group id is empty")
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("group %s: name is empty", g.ID)
	}
	if g.ContributionAmount <= 0 {
		return fmt.Errorf("group %s: contribution amount must be positive, got %v", g.ID, g.ContributionAmount)
	}
	if len(g.Members) < 2 {
		return fmt.Errorf("group %s: needs at least 2 members, has %d", g.ID, len(g.Members))
	}

	memberIDs := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if m.ID == "" {
			return fmt.Errorf("group %s: member with empty id", g.ID)
		}
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("group %s: member %s has empty name", g.ID, m.ID)
		}
		if memberIDs[m.ID] {
			return fmt.Errorf("group %s: duplicate member id %s", g.ID, m.ID)
		}
		memberIDs[m.ID] = true
	}

	// payoutOrder must be a permutation of member ids.
	if len(g.PayoutOrder) != len(g.Members) {
		return fmt.Errorf("group %s: payout order has %d entries for %d members", g.ID, len(g.PayoutOrder), len(g.Members))
	}
	seen := make(map[string]bool, len(g.PayoutOrder))
	for _, id := range g.PayoutOrder {
		if !memberIDs[id] {
			return fmt.Errorf("group %s: payout order references unknown member %s", g.ID, id)
		}
		if seen[id] {
			return fmt.Errorf("group %s: payout order repeats member %s", g.ID, id)
		}
		seen[id] = true
	}

	switch g.Status {
	case StatusPending, StatusActive, StatusCompleted:
	default:
		return fmt.Errorf("group %s: unknown status %q", g.ID, g.Status)
	}

	// Rounds cover exactly 1..CurrentRound, contiguous, no duplicates.
	if g.CurrentRound < 1 {
		return fmt.Errorf("group %s: current round %d < 1", g.ID, g.CurrentRound)
	}
	if g.CurrentRound > len(g.Members) {
		return fmt.Errorf("group %s: current round %d exceeds roster size %d", g.ID, g.CurrentRound, len(g.Members))
	}
	if len(g.Rounds) != g.CurrentRound {
		return fmt.Errorf("group %s: has %d rounds, expected %d", g.ID, len(g.Rounds), g.CurrentRound)
	}
	for i := range g.Rounds {
		r := &g.Rounds[i]
		if r.RoundNumber != i+1 {
			return fmt.Errorf("group %s: round at index %d has number %d", g.ID, i, r.RoundNumber)
		}
		if err := g.validateRound(r, memberIDs); err != nil {
			return err
		}
		// Advancement only happens after a payout, so every round behind
		// the current one is closed.
		if r.RoundNumber < g.CurrentRound && !r.PayoutCompleted {
			return fmt.Errorf("group %s: round %d is open behind current round %d", g.ID, r.RoundNumber, g.CurrentRound)
		}
	}

	// Completed means the final slot's payout was serviced.
	if g.Status == StatusCompleted {
		if g.CurrentRound != len(g.Members) {
			return fmt.Errorf("group %s: completed at round %d of %d", g.ID, g.CurrentRound, len(g.Members))
		}
		if last := g.Round(g.CurrentRound); last != nil && !last.PayoutCompleted {
			return fmt.Errorf("group %s: completed but final round payout is open", g.ID)
		}
	}
	return nil
}

func (g *Group) validateRound(r *Round, memberIDs map[string]bool) error {
	// Payments mirror the current roster exactly.
	if len(r.Payments) != len(g.Members) {
		return fmt.Errorf("group %s round %d: %d payments for %d members", g.ID, r.RoundNumber, len(r.Payments), len(g.Members))
	}
	paid := make(map[string]bool, len(r.Payments))
	for _, p := range r.Payments {
		if !memberIDs[p.MemberID] {
			return fmt.Errorf("group %s round %d: payment for unknown member %s", g.ID, r.RoundNumber, p.MemberID)
		}
		if _, dup := paid[p.MemberID]; dup {
			return fmt.Errorf("group %s round %d: duplicate payment for member %s", g.ID, r.RoundNumber, p.MemberID)
		}
		switch p.Status {
		case PaymentPaid, PaymentUnpaid:
		default:
			return fmt.Errorf("group %s round %d: unknown payment status %q", g.ID, r.RoundNumber, p.Status)
		}
		paid[p.MemberID] = true
	}

	if r.PayoutMemberID != "" && !memberIDs[r.PayoutMemberID] {
		return fmt.Errorf("group %s round %d: payout recipient %s is not a member", g.ID, r.RoundNumber, r.PayoutMemberID)
	}
	// A completed round's recipient is fixed by the payout order.
	if r.PayoutCompleted {
		if r.PayoutMemberID == "" {
			return fmt.Errorf("group %s round %d: completed without a recipient", g.ID, r.RoundNumber)
		}
		if want := g.PayoutOrder[r.RoundNumber-1]; r.PayoutMemberID != want {
			return fmt.Errorf("group %s round %d: recipient %s does not match payout order slot %s", g.ID, r.RoundNumber, r.PayoutMemberID, want)
		}
	}
	return nil
}
