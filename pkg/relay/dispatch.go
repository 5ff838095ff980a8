// Copyright 2024-2026 Aiku AI

package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Relay is the dispatch loop. It owns both role registries for the
// process lifetime and holds no other state between events.
type Relay struct {
	transport   Transport
	store       Store
	senders     *Registry
	subscribers *Registry
	msgs        *Messages

	commands     []command
	pollInterval time.Duration
	log          zerolog.Logger
}

// New hydrates both registries from the store and builds the relay. The
// command table is fixed at construction.
func New(ctx context.Context, transport Transport, store Store, msgs *Messages, pollInterval time.Duration, log zerolog.Logger) (*Relay, error) {
	r := &Relay{
		transport:    transport,
		store:        store,
		msgs:         msgs,
		pollInterval: pollInterval,
		log:          log.With().Str("component", "relay").Logger(),
	}
	var err error
	if r.senders, err = NewRegistry(ctx, RoleSender, store, log); err != nil {
		return nil, fmt.Errorf("build sender registry: %w", err)
	}
	if r.subscribers, err = NewRegistry(ctx, RoleSubscriber, store, log); err != nil {
		return nil, fmt.Errorf("build subscriber registry: %w", err)
	}
	r.commands = r.commandTable()
	return r, nil
}

// Run polls the transport until ctx is done, processing each batch
// sequentially in arrival order. Any fault raised while handling a batch
// is contained in runCycle, so one malformed event or transport hiccup
// never terminates the daemon. A fixed inter-poll delay keeps failures
// from turning into a tight loop.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info().Msg("Relay started")
	for {
		r.runCycle(ctx)
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Relay stopped")
			return nil
		case <-time.After(r.pollInterval):
		}
	}
}

// runCycle is the single catch-all boundary. Inner components report
// errors as values; anything that still panics is logged here and the
// loop moves on.
func (r *Relay) runCycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("Recovered panic in dispatch cycle")
		}
	}()

	events, err := r.transport.Poll(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("Poll failed")
		return
	}
	for _, evt := range events {
		r.HandleEvent(ctx, evt)
	}
}

// HandleEvent processes one inbound event: append an audit record, then
// either interpret a command or relay a sender's message. Exactly one
// reply goes out per event, whatever happens inside.
func (r *Relay) HandleEvent(ctx context.Context, evt InboundEvent) {
	// Audit is best-effort; a storage failure here must not block dispatch.
	if err := r.store.AppendAudit(ctx, evt.SenderKey(), evt.Raw); err != nil {
		r.log.Warn().Err(err).Str("user_id", evt.SenderKey()).Msg("Audit append failed")
	}

	reply := r.dispatch(ctx, evt)
	if err := r.transport.Reply(ctx, evt, reply); err != nil {
		r.log.Warn().Err(err).
			Str("user_id", evt.SenderKey()).
			Int("message_id", evt.MessageID).
			Msg("Reply failed")
	}
}

// dispatch picks the reply for an event. A command match always wins,
// even when the caller is also an enrolled sender; only non-command text
// from enrolled senders is fanned out.
func (r *Relay) dispatch(ctx context.Context, evt InboundEvent) string {
	for _, cmd := range r.commands {
		if cmd.token == evt.Text {
			return cmd.handler(ctx, evt)
		}
	}
	if !r.senders.Contains(evt.SenderKey()) {
		return r.msgs.Ignore
	}
	r.forwardToSubscribers(ctx, evt)
	return r.msgs.Forwarded
}
