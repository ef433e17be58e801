// Package service is the delivery layer around the cycle engine: it owns the
// authoritative in-memory group snapshots, serializes commands against them,
// and writes the result through to storage after every successful command.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/tanda/internal/cycle"
	"github.com/mmynk/tanda/internal/models"
	"github.com/mmynk/tanda/internal/storage"
)

// ErrNotFound is returned when a group id has no snapshot.
var ErrNotFound = errors.New("group not found")

// GroupService owns one authoritative Group snapshot per id and applies
// cycle commands read-modify-write against it. All commands run under one
// mutex: the system is single-actor, two commands never interleave on the
// same state.
//
// Persistence is write-through and best-effort. A failed save is logged and
// the in-memory snapshot stands; it is not rolled back.
type GroupService struct {
	mu    sync.Mutex
	store storage.Store

	groups map[string]models.Group
	// order keeps group ids in insertion order for stable listings.
	order []string
}

// NewGroupService loads all saved groups from the store and returns a
// service ready to take commands.
func NewGroupService(ctx context.Context, store storage.Store) (*GroupService, error) {
	groups, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	s := &GroupService{
		store:  store,
		groups: make(map[string]models.Group, len(groups)),
	}
	for _, g := range groups {
		s.groups[g.ID] = g
		s.order = append(s.order, g.ID)
	}
	slog.Info("Group state loaded", "count", len(groups))
	return s, nil
}

// CreateGroup validates and creates a new group, commits it, and persists.
func (s *GroupService) CreateGroup(ctx context.Context, name string, contributionAmount float64, members []models.Member, payoutOrder []string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := cycle.CreateGroup(name, contributionAmount, members, payoutOrder)
	if err != nil {
		slog.Warn("CreateGroup rejected", "name", name, "error", err)
		return models.Group{}, err
	}

	s.groups[g.ID] = g
	s.order = append(s.order, g.ID)
	s.persist(ctx)

	slog.Info("Group created", "group_id", g.ID, "name", g.Name, "members", len(g.Members))
	return g, nil
}

// GetGroup returns the current snapshot for a group id.
func (s *GroupService) GetGroup(_ context.Context, id string) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return models.Group{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g.Clone(), nil
}

// ListGroups returns all group snapshots in creation order.
func (s *GroupService) ListGroups(_ context.Context) []models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Group, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.groups[id].Clone())
	}
	return out
}

// DeleteGroup removes a group entirely.
func (s *GroupService) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.groups, id)
	for i, gid := range s.order {
		if gid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persist(ctx)

	slog.Info("Group deleted", "group_id", id)
	return nil
}

// RecordPayment marks a member's contribution in the group's current round.
func (s *GroupService) RecordPayment(ctx context.Context, id, memberID string) (models.Group, error) {
	return s.apply(ctx, id, "RecordPayment", func(g models.Group) (models.Group, error) {
		return cycle.RecordPayment(g, memberID)
	})
}

// CompletePayout closes the current round's payout.
func (s *GroupService) CompletePayout(ctx context.Context, id string) (models.Group, error) {
	return s.apply(ctx, id, "CompletePayout", cycle.CompletePayout)
}

// AdvanceRound opens the next round or completes the cycle.
func (s *GroupService) AdvanceRound(ctx context.Context, id string) (models.Group, error) {
	return s.apply(ctx, id, "AdvanceRound", cycle.AdvanceRound)
}

// SetPayoutOrder replaces a group's payout order. Policy: reordering is only
// offered while the group is Pending; the engine itself would also accept
// history-consistent reorders on an Active group.
func (s *GroupService) SetPayoutOrder(ctx context.Context, id string, order []string) (models.Group, error) {
	return s.apply(ctx, id, "SetPayoutOrder", func(g models.Group) (models.Group, error) {
		if g.Status != models.StatusPending {
			return models.Group{}, &cycle.InvalidStateError{
				Reason: fmt.Sprintf("payout order can only be changed while pending, group is %s", g.Status),
			}
		}
		return cycle.SetPayoutOrder(g, order)
	})
}

// AddMember adds a member to the roster. The group resets to round 1.
func (s *GroupService) AddMember(ctx context.Context, id string, member models.Member) (models.Group, error) {
	return s.apply(ctx, id, "AddMember", func(g models.Group) (models.Group, error) {
		return cycle.AddMember(g, member)
	})
}

// RemoveMember removes a member from the roster. The group resets to round 1.
func (s *GroupService) RemoveMember(ctx context.Context, id, memberID string) (models.Group, error) {
	return s.apply(ctx, id, "RemoveMember", func(g models.Group) (models.Group, error) {
		return cycle.RemoveMember(g, memberID)
	})
}

// ResetGroup discards round history and returns the group to Pending.
// Policy: a reset is only offered once the cycle has completed, so finished
// groups can be run again with the same roster.
func (s *GroupService) ResetGroup(ctx context.Context, id string) (models.Group, error) {
	return s.apply(ctx, id, "ResetGroup", func(g models.Group) (models.Group, error) {
		if g.Status != models.StatusCompleted {
			return models.Group{}, &cycle.InvalidStateError{
				Reason: fmt.Sprintf("group can only be reset after completing its cycle, group is %s", g.Status),
			}
		}
		return cycle.ResetGroup(g), nil
	})
}

// apply runs one engine command read-modify-write against the snapshot for
// id. The snapshot is only replaced when the command succeeds; a failed
// command leaves it untouched.
func (s *GroupService) apply(ctx context.Context, id, op string, fn func(models.Group) (models.Group, error)) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return models.Group{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next, err := fn(g)
	if err != nil {
		slog.Warn("Command rejected", "op", op, "group_id", id, "error", err)
		return models.Group{}, err
	}

	s.groups[id] = next
	s.persist(ctx)

	slog.Info("Command applied", "op", op, "group_id", id,
		"status", next.Status, "current_round", next.CurrentRound)
	return next.Clone(), nil
}

// persist writes the whole group list through to the store. Callers hold the
// mutex. Failures are logged, never propagated: the in-memory state is the
// authority.
func (s *GroupService) persist(ctx context.Context) {
	groups := make([]models.Group, 0, len(s.order))
	for _, id := range s.order {
		groups = append(groups, s.groups[id])
	}
	if err := s.store.Save(ctx, groups); err != nil {
		slog.Error("State save failed; in-memory state kept", "error", err, "groups", len(groups))
	}
}
