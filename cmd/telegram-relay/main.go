// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Command telegram-relay is a self-service message-relay daemon for
// Telegram. Users enroll themselves as senders or subscribers through
// chat commands; every message from an enrolled sender is forwarded to
// all current subscribers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.mau.fi/util/exzerolog"

	"github.com/aiku/telegram-relay/pkg/relay"
	"github.com/aiku/telegram-relay/pkg/relay/sqlite"
)

// These are filled at build time with -ldflags.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cfg, err := relay.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Str("level", cfg.LogLevel).Msg("Invalid log level")
	}
	log = log.Level(level)
	exzerolog.SetupDefaults(&log)

	log.Info().
		Str("tag", Tag).
		Str("commit", Commit).
		Str("build_time", BuildTime).
		Msg("Starting telegram-relay")

	msgs, err := relay.LoadMessages(cfg.MessagesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load message catalog")
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Could not open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing database")
		}
	}()

	transport, err := relay.NewTelegram(cfg.Token, cfg.PollTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to Telegram")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := relay.New(ctx, transport, store, msgs, cfg.PollInterval, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not build relay")
	}
	if err := r.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Relay loop failed")
	}
}
