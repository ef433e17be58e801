package models

import (
	"encoding/json"
	"fmt"
)

// GroupStatus is the lifecycle state of a group's cycle.
// The string values are part of the persisted JSON contract.
type GroupStatus string

const (
	// StatusPending: created or reset, no payout completed yet.
	StatusPending GroupStatus = "Pending"
	// StatusActive: at least one payout completed, cycle in progress.
	StatusActive GroupStatus = "Active"
	// StatusCompleted: every member has received exactly one payout. Terminal.
	StatusCompleted GroupStatus = "Completed"
)

// UnmarshalJSON rejects status strings outside the closed set, since the
// storage format is untyped text.
func (s *GroupStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("group status: %w", err)
	}
	switch GroupStatus(v) {
	case StatusPending, StatusActive, StatusCompleted:
		*s = GroupStatus(v)
		return nil
	}
	return fmt.Errorf("unknown group status %q", v)
}

// PaymentStatus marks whether a member has contributed in a round.
// The string values are part of the persisted JSON contract.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// UnmarshalJSON rejects payment status strings outside the closed set.
func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("payment status: %w", err)
	}
	switch PaymentStatus(v) {
	case PaymentUnpaid, PaymentPaid:
		*s = PaymentStatus(v)
		return nil
	}
	return fmt.Errorf("unknown payment status %q", v)
}
