// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Telegram implements Transport over the Telegram Bot API using long
// polling. It tracks the last seen update id so each update is delivered
// to the relay exactly once.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	offset  int
	timeout int // long-poll timeout in whole seconds
	log     zerolog.Logger
}

var _ Transport = (*Telegram)(nil)

// NewTelegram authenticates against the Telegram Bot API. An invalid
// token fails here, at startup.
func NewTelegram(token string, pollTimeout time.Duration, log zerolog.Logger) (*Telegram, error) {
	return newTelegram(token, tgbotapi.APIEndpoint, pollTimeout, log)
}

// newTelegram lets tests point the client at a fake API server.
func newTelegram(token, endpoint string, pollTimeout time.Duration, log zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("authenticate with Telegram: %w", err)
	}
	t := &Telegram{
		bot:     bot,
		timeout: int(pollTimeout / time.Second),
		log:     log.With().Str("component", "telegram").Logger(),
	}
	t.log.Info().Str("username", bot.Self.UserName).Msg("Authenticated with Telegram")
	return t, nil
}

// Poll fetches the next batch of updates and advances the offset past
// every update in it, including the ones dropped below. Updates that are
// not user messages (edits, channel posts, callback queries) carry
// nothing the relay handles.
func (t *Telegram) Poll(_ context.Context) ([]InboundEvent, error) {
	updates, err := t.bot.GetUpdates(tgbotapi.UpdateConfig{
		Offset:  t.offset,
		Timeout: t.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}

	events := make([]InboundEvent, 0, len(updates))
	for _, update := range updates {
		if update.UpdateID >= t.offset {
			t.offset = update.UpdateID + 1
		}
		msg := update.Message
		if msg == nil || msg.From == nil || msg.Chat == nil {
			t.log.Debug().Int("update_id", update.UpdateID).Msg("Dropping non-message update")
			continue
		}
		raw, err := json.Marshal(update)
		if err != nil {
			t.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("Could not serialize update for audit")
		}
		events = append(events, InboundEvent{
			UpdateID:  update.UpdateID,
			SenderID:  msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
			Text:      msg.Text,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Raw:       raw,
		})
	}
	return events, nil
}

// Reply sends text as a reply to the event's message.
func (t *Telegram) Reply(_ context.Context, evt InboundEvent, text string) error {
	msg := tgbotapi.NewMessage(evt.ChatID, text)
	msg.ReplyToMessageID = evt.MessageID
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// Forward re-sends an existing message from the source chat to the
// target chat, keeping the original attribution Telegram adds to
// forwarded messages.
func (t *Telegram) Forward(_ context.Context, targetChatID, sourceChatID int64, messageID int) error {
	if _, err := t.bot.Send(tgbotapi.NewForward(targetChatID, sourceChatID, messageID)); err != nil {
		return fmt.Errorf("forward message: %w", err)
	}
	return nil
}
