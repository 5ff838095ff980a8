// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// sentReply records one Transport.Reply call.
type sentReply struct {
	ChatID    int64
	MessageID int
	Text      string
}

// sentForward records one Transport.Forward attempt, including failed ones.
type sentForward struct {
	Target    int64
	Source    int64
	MessageID int
}

// mockTransport is a Transport that records calls and supports failure
// injection per forward target.
type mockTransport struct {
	mu            sync.Mutex
	polls         [][]InboundEvent
	pollCalls     int
	pollErr       error
	replies       []sentReply
	replyErr      error
	forwards      []sentForward
	failForwardTo map[int64]error
}

func (m *mockTransport) Poll(_ context.Context) ([]InboundEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollCalls++
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	if len(m.polls) == 0 {
		return nil, nil
	}
	batch := m.polls[0]
	m.polls = m.polls[1:]
	return batch, nil
}

func (m *mockTransport) Reply(_ context.Context, evt InboundEvent, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentReply{ChatID: evt.ChatID, MessageID: evt.MessageID, Text: text})
	return m.replyErr
}

func (m *mockTransport) Forward(_ context.Context, targetChatID, sourceChatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwards = append(m.forwards, sentForward{Target: targetChatID, Source: sourceChatID, MessageID: messageID})
	if err := m.failForwardTo[targetChatID]; err != nil {
		return err
	}
	return nil
}

func (m *mockTransport) Replies() []sentReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.replies)
}

func (m *mockTransport) Forwards() []sentForward {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.forwards)
}

// memStore is an in-memory Store with failure injection. Profiles keep
// insertion order, like the SQLite implementation.
type memStore struct {
	profiles map[Role][]UserProfile
	audits   []auditRow

	fetchErr  error
	upsertErr error
	deleteErr error
	auditErr  error
}

type auditRow struct {
	SenderID string
	Payload  string
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[Role][]UserProfile)}
}

func (s *memStore) FetchAll(_ context.Context, role Role) ([]UserProfile, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return slices.Clone(s.profiles[role]), nil
}

func (s *memStore) Upsert(_ context.Context, role Role, profile UserProfile) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	for i, p := range s.profiles[role] {
		if p.ID == profile.ID {
			s.profiles[role][i] = profile
			return nil
		}
	}
	s.profiles[role] = append(s.profiles[role], profile)
	return nil
}

func (s *memStore) Delete(_ context.Context, role Role, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.profiles[role] = slices.DeleteFunc(s.profiles[role], func(p UserProfile) bool {
		return p.ID == id
	})
	return nil
}

func (s *memStore) AppendAudit(_ context.Context, senderID string, payload []byte) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audits = append(s.audits, auditRow{SenderID: senderID, Payload: string(payload)})
	return nil
}

// testEvent builds an inbound event from user id with the given text.
// The chat id equals the user id, as in Telegram DMs.
func testEvent(userID int64, text string) InboundEvent {
	return InboundEvent{
		UpdateID:  1,
		SenderID:  userID,
		FirstName: "First" + strconv.FormatInt(userID, 10),
		LastName:  "Last" + strconv.FormatInt(userID, 10),
		Text:      text,
		ChatID:    userID,
		MessageID: 100,
		Raw:       json.RawMessage(`{"update_id":1}`),
	}
}

// testProfile builds a profile for seeding stores and registries.
func testProfile(id, first, last, username string) UserProfile {
	p := UserProfile{
		ID:         id,
		FirstName:  first,
		LastName:   last,
		EnrolledAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if username != "" {
		p.Username = &username
	}
	return p
}

// newTestRelay builds a relay over the given store and transport with
// the default message catalog.
func newTestRelay(t *testing.T, store Store, transport Transport) *Relay {
	t.Helper()
	msgs, err := LoadMessages("")
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	r, err := New(context.Background(), transport, store, msgs, time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}
