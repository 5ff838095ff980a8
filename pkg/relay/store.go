// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"time"
)

// Role identifies one of the two independent membership collections.
// The same user id may hold both roles at once.
type Role string

const (
	// RoleSender marks users whose messages are fanned out to subscribers.
	RoleSender Role = "sender"
	// RoleSubscriber marks users who receive forwarded messages and may
	// run the listing commands.
	RoleSubscriber Role = "subscriber"
)

// UserProfile is one participant as tracked by a role registry. ID is the
// decimal string form of the platform user id; stringifying avoids
// precision loss in storage layers that round large integers.
type UserProfile struct {
	ID        string
	FirstName string
	LastName  string
	// Username is nil when the platform reports no username for the user.
	Username   *string
	EnrolledAt time.Time
}

// Store is the persistence gateway consumed by the registries and the
// dispatch loop. Implementations hold no business state; the registries
// own membership, the store owns durability.
type Store interface {
	// FetchAll returns every profile of the role's table in insertion
	// order. Used once per registry, at hydration.
	FetchAll(ctx context.Context, role Role) ([]UserProfile, error)
	// Upsert inserts or replaces the profile row keyed by profile.ID.
	Upsert(ctx context.Context, role Role, profile UserProfile) error
	// Delete removes the row keyed by id. Deleting an absent id is not
	// an error.
	Delete(ctx context.Context, role Role, id string) error
	// AppendAudit records one raw inbound event. The audit table is
	// append-only and never read back by the relay.
	AppendAudit(ctx context.Context, senderID string, payload []byte) error
}
