// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package relay implements a Telegram message-relay daemon: incoming
// messages from enrolled senders are forwarded to every enrolled
// subscriber, and enrollment itself is self-service through a small
// command protocol embedded in the message stream.
//
// # Core Types
//
// [Relay] owns the dispatch loop. For each inbound event it appends an
// audit record, tries exact-match command interpretation, and otherwise
// forwards the message to the subscriber set if the sender is enrolled.
// Every inbound event produces exactly one reply.
//
// [Registry] tracks one role (senders or subscribers) as an in-memory
// map mirrored synchronously against a durable [Store]. A failed
// write-through never mutates memory, so the registry and the backing
// table cannot diverge.
//
// [Transport] abstracts the messaging platform: polling for inbound
// events, replying, and forwarding a message between chats. [Telegram]
// is the production implementation over the Telegram Bot API.
//
// # Delivery Semantics
//
// Fan-out is best-effort and at-most-once per subscriber per message. A
// failed delivery to one subscriber is logged and skipped; it aborts
// neither the fan-out nor the event, and the sender never sees it. There
// is no retry, backoff, or dead-letter handling. These semantics are
// deliberate and must not be "fixed".
//
// # Sub-packages
//
//   - sqlite implements [Store] over a single SQLite database file.
package relay
