// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Outcome reports what a registry mutation did.
type Outcome int

const (
	// OutcomeNone is returned alongside a non-nil error.
	OutcomeNone Outcome = iota
	OutcomeEnrolled
	OutcomeAlreadyEnrolled
	OutcomeRemoved
	OutcomeNotEnrolled
)

// Registry tracks membership for one role. Memory is a cache of the
// durable table: every mutation writes through synchronously, and a
// storage failure leaves memory untouched. The registry is not safe for
// concurrent use; the dispatch loop processes events sequentially.
type Registry struct {
	role  Role
	store Store
	byID  map[string]UserProfile
	order []string
	log   zerolog.Logger
}

// NewRegistry hydrates a registry from the store. Hydration happens
// exactly once, here; the durable table is never re-read afterwards.
func NewRegistry(ctx context.Context, role Role, store Store, log zerolog.Logger) (*Registry, error) {
	r := &Registry{
		role:  role,
		store: store,
		byID:  make(map[string]UserProfile),
		log:   log.With().Str("registry", string(role)).Logger(),
	}
	profiles, err := store.FetchAll(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("hydrate %s registry: %w", role, err)
	}
	for _, p := range profiles {
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	r.log.Info().Int("count", len(r.order)).Msg("Registry hydrated")
	return r, nil
}

// Enroll adds the profile unless its id is already present. Re-enrolling
// an existing id is a strict no-op: no profile fields are refreshed, in
// memory or in storage.
func (r *Registry) Enroll(ctx context.Context, profile UserProfile) (Outcome, error) {
	if _, ok := r.byID[profile.ID]; ok {
		return OutcomeAlreadyEnrolled, nil
	}
	// Storage first, so a failed write-through cannot leave memory ahead
	// of the durable table.
	if err := r.store.Upsert(ctx, r.role, profile); err != nil {
		return OutcomeNone, fmt.Errorf("enroll %s as %s: %w", profile.ID, r.role, err)
	}
	r.byID[profile.ID] = profile
	r.order = append(r.order, profile.ID)
	r.log.Info().Str("user_id", profile.ID).Msg("Enrolled")
	return OutcomeEnrolled, nil
}

// Remove drops the id from the registry. Removing an absent id is a no-op.
func (r *Registry) Remove(ctx context.Context, id string) (Outcome, error) {
	if _, ok := r.byID[id]; !ok {
		return OutcomeNotEnrolled, nil
	}
	if err := r.store.Delete(ctx, r.role, id); err != nil {
		return OutcomeNone, fmt.Errorf("remove %s from %s: %w", id, r.role, err)
	}
	delete(r.byID, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.log.Info().Str("user_id", id).Msg("Removed")
	return OutcomeRemoved, nil
}

// Contains reports whether the id currently holds the registry's role.
func (r *Registry) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// List returns the profiles in enrollment order (hydration order for rows
// that predate the process).
func (r *Registry) List() []UserProfile {
	out := make([]UserProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of enrolled profiles.
func (r *Registry) Len() int {
	return len(r.order)
}
