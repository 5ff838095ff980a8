// Copyright 2024-2026 Aiku AI

package relay

import (
	"context"
	"strconv"
)

// forwardToSubscribers fans the event's message out to every current
// subscriber, in registry order. Delivery is best-effort and at-most-once
// per subscriber: a transport failure for one recipient (blocked bot,
// deleted chat) is logged and skipped, and is never surfaced to the
// sender. A subscriber's DM chat id equals their user id.
func (r *Relay) forwardToSubscribers(ctx context.Context, evt InboundEvent) {
	delivered := 0
	for _, sub := range r.subscribers.List() {
		chatID, err := strconv.ParseInt(sub.ID, 10, 64)
		if err != nil {
			r.log.Warn().Str("user_id", sub.ID).Msg("Subscriber id is not numeric, skipping")
			continue
		}
		if err := r.transport.Forward(ctx, chatID, evt.ChatID, evt.MessageID); err != nil {
			r.log.Warn().Err(err).
				Str("user_id", sub.ID).
				Int("message_id", evt.MessageID).
				Msg("Forward failed, skipping subscriber")
			continue
		}
		delivered++
	}
	r.log.Debug().
		Int("delivered", delivered).
		Int("subscribers", r.subscribers.Len()).
		Int("message_id", evt.MessageID).
		Msg("Fan-out complete")
}
