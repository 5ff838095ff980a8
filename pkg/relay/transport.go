// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.mau.fi/util/ptr"
)

// InboundEvent is one message received from the transport, flattened to
// the fields the relay needs, plus the raw payload for the audit trail.
type InboundEvent struct {
	UpdateID  int
	SenderID  int64
	FirstName string
	LastName  string
	// Username is empty when the sender has no username.
	Username  string
	Text      string
	ChatID    int64
	MessageID int
	Raw       json.RawMessage
}

// SenderKey returns the stable string form of the sender's user id, the
// primary key in both role tables.
func (e InboundEvent) SenderKey() string {
	return strconv.FormatInt(e.SenderID, 10)
}

// Profile builds a UserProfile for the event's sender.
func (e InboundEvent) Profile(enrolledAt time.Time) UserProfile {
	p := UserProfile{
		ID:         e.SenderKey(),
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		EnrolledAt: enrolledAt,
	}
	if e.Username != "" {
		p.Username = ptr.Ptr(e.Username)
	}
	return p
}

// Transport abstracts the messaging platform. The relay core never talks
// to Telegram directly; it consumes this interface, which also allows
// tests to inject a mock.
type Transport interface {
	// Poll blocks up to the transport's configured timeout and returns
	// the next batch of inbound events, oldest first. An empty batch is
	// normal.
	Poll(ctx context.Context) ([]InboundEvent, error)
	// Reply sends text as a reply to the event's message in its chat.
	Reply(ctx context.Context, evt InboundEvent, text string) error
	// Forward re-sends an existing message from the source chat to the
	// target chat.
	Forward(ctx context.Context, targetChatID, sourceChatID int64, messageID int) error
}
