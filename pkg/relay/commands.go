// Copyright 2024-2026 Aiku AI

package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mau.fi/util/ptr"
)

// Command tokens. Matching is exact string equality against the event
// text, with no prefix matching and no arguments.
const (
	cmdAddSender        = "/add_sender"
	cmdAddSubscriber    = "/add_subscriber"
	cmdDeleteSender     = "/delete_sender"
	cmdDeleteSubscriber = "/delete_subscriber"
	cmdGetSenders       = "/get_senders"
	cmdGetSubscribers   = "/get_subscribers"
)

// command pairs a token with its handler. The handler mutates or reads
// one registry and returns the reply text; it never fails outward, since
// every event must get exactly one reply.
type command struct {
	token   string
	handler func(ctx context.Context, evt InboundEvent) string
}

// commandTable builds the fixed dispatch table. Constructed once in New;
// never mutated afterwards.
func (r *Relay) commandTable() []command {
	return []command{
		{cmdAddSender, r.addSender},
		{cmdAddSubscriber, r.addSubscriber},
		{cmdDeleteSender, r.deleteSender},
		{cmdDeleteSubscriber, r.deleteSubscriber},
		{cmdGetSenders, r.listSenders},
		{cmdGetSubscribers, r.listSubscribers},
	}
}

func (r *Relay) addSender(ctx context.Context, evt InboundEvent) string {
	return r.enroll(ctx, r.senders, evt, r.msgs.AlreadySender, r.msgs.SenderAdded)
}

func (r *Relay) addSubscriber(ctx context.Context, evt InboundEvent) string {
	return r.enroll(ctx, r.subscribers, evt, r.msgs.AlreadySubscriber, r.msgs.Subscribed)
}

func (r *Relay) deleteSender(ctx context.Context, evt InboundEvent) string {
	return r.remove(ctx, r.senders, evt, r.msgs.NotSender, r.msgs.SenderRemoved)
}

func (r *Relay) deleteSubscriber(ctx context.Context, evt InboundEvent) string {
	return r.remove(ctx, r.subscribers, evt, r.msgs.NotSubscriber, r.msgs.Unsubscribed)
}

// enroll runs an enrollment against reg and maps the outcome to a reply.
// A storage failure is logged and answered with the neutral reply; the
// user never sees internals.
func (r *Relay) enroll(ctx context.Context, reg *Registry, evt InboundEvent, already, done string) string {
	outcome, err := reg.Enroll(ctx, evt.Profile(time.Now().UTC()))
	if err != nil {
		r.log.Error().Err(err).Str("user_id", evt.SenderKey()).Msg("Enrollment failed")
		return r.msgs.Ignore
	}
	if outcome == OutcomeAlreadyEnrolled {
		return already
	}
	return done
}

func (r *Relay) remove(ctx context.Context, reg *Registry, evt InboundEvent, absent, done string) string {
	outcome, err := reg.Remove(ctx, evt.SenderKey())
	if err != nil {
		r.log.Error().Err(err).Str("user_id", evt.SenderKey()).Msg("Removal failed")
		return r.msgs.Ignore
	}
	if outcome == OutcomeNotEnrolled {
		return absent
	}
	return done
}

// Listing commands are gated: only current subscribers may run them.
// Everyone else gets the neutral reply, indistinguishable from an
// unrecognized message.
func (r *Relay) listSenders(_ context.Context, evt InboundEvent) string {
	if !r.subscribers.Contains(evt.SenderKey()) {
		return r.msgs.Ignore
	}
	return roster(r.senders, r.msgs.NoSenders)
}

func (r *Relay) listSubscribers(_ context.Context, evt InboundEvent) string {
	if !r.subscribers.Contains(evt.SenderKey()) {
		return r.msgs.Ignore
	}
	return roster(r.subscribers, r.msgs.NoSubscribers)
}

// roster renders the registry as a numbered list, one profile per line,
// with the username appended only when present.
func roster(reg *Registry, emptyReply string) string {
	profiles := reg.List()
	if len(profiles) == 0 {
		return emptyReply
	}
	lines := make([]string, len(profiles))
	for i, p := range profiles {
		line := fmt.Sprintf("%d. %s %s", i+1, p.FirstName, p.LastName)
		if username := ptr.Val(p.Username); username != "" {
			line += fmt.Sprintf(" (@%s)", username)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
