// Package models defines the core domain models for Tanda.
//
// # Models
//
//   - Group: A rotating-savings group and its full cycle state
//   - Member: One participant in a group
//   - Round: One collection/payout round within a group's cycle
//   - Payment: One member's contribution status within a round
//
// # Design Principles
//
// 1. **Values, not references**: commands in the cycle package take a Group
// value and return a new one; models carry a deep Clone for that.
// 2. **Frozen wire shape**: JSON field names and the enum strings
// ('Paid'/'Unpaid', 'Pending'/'Active'/'Completed') are the persisted
// contract. Changing them breaks previously saved data.
// 3. **Avoid circular references**: relationships use ID strings, never
// pointers.
// 4. **Invariants live here**: Group.Validate is the single checker that
// storage and services run against untrusted snapshots.
package models
