package models

// Payment is one member's contribution status within a round. A round holds
// exactly one Payment per current member; payments are created Unpaid with
// the round and flipped to Paid by the record-payment command, never deleted
// individually.
type Payment struct {
	// MemberID references a Member in the same group.
	MemberID string `json:"memberId"`

	Status PaymentStatus `json:"status"`
}

// Round is one collection/payout round in a group's cycle.
type Round struct {
	// RoundNumber is 1-based and contiguous within a group.
	RoundNumber int `json:"roundNumber"`

	// PayoutMemberID is the recipient of this round's pool. Empty until
	// assigned (all payments collected, or pre-assigned from the payout
	// order); once set it is never changed.
	PayoutMemberID string `json:"payoutMemberId,omitempty"`

	// Payments mirrors the group roster, one entry per member. Order is
	// not significant.
	Payments []Payment `json:"payments"`

	// PayoutCompleted flips false→true exactly once and never reverts.
	PayoutCompleted bool `json:"payoutCompleted"`
}

// AllPaid reports whether every payment in the round is Paid.
func (r *Round) AllPaid() bool {
	for _, p := range r.Payments {
		if p.Status != PaymentPaid {
			return false
		}
	}
	return true
}

// Payment returns a pointer to the payment for memberID, or nil if the
// member has no payment in this round.
func (r *Round) Payment(memberID string) *Payment {
	for i := range r.Payments {
		if r.Payments[i].MemberID == memberID {
			return &r.Payments[i]
		}
	}
	return nil
}
