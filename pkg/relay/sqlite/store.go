// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlite implements relay.Store over a single SQLite database
// file, using the CGo-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aiku/telegram-relay/pkg/relay"
)

//go:embed schema.sql
var schema string

// Store is the SQLite persistence gateway. It holds no business state,
// only the database handle.
type Store struct {
	db *sql.DB
}

var _ relay.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// schema. Schema statements are idempotent, so reopening an existing
// database is safe.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// tableFor maps a role to its table name. Table names are never built
// from external input.
func tableFor(role relay.Role) (string, error) {
	switch role {
	case relay.RoleSender:
		return "senders", nil
	case relay.RoleSubscriber:
		return "subscribers", nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// FetchAll returns every profile of the role's table in insertion order.
func (s *Store) FetchAll(ctx context.Context, role relay.Role) ([]relay.UserProfile, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, first_name, last_name, username, init_datetime FROM %s ORDER BY rowid`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	var profiles []relay.UserProfile
	for rows.Next() {
		var p relay.UserProfile
		var username sql.NullString
		var enrolledAt string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &username, &enrolledAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		if username.Valid && username.String != "" {
			p.Username = &username.String
		}
		ts, err := time.Parse(time.RFC3339Nano, enrolledAt)
		if err != nil {
			return nil, fmt.Errorf("parse init_datetime of %s row %s: %w", table, p.ID, err)
		}
		p.EnrolledAt = ts
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return profiles, nil
}

// Upsert inserts or replaces the profile row keyed by profile.ID. An
// absent username is stored as NULL, not as an empty string.
func (s *Store) Upsert(ctx context.Context, role relay.Role, profile relay.UserProfile) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	var username sql.NullString
	if profile.Username != nil && *profile.Username != "" {
		username = sql.NullString{String: *profile.Username, Valid: true}
	}
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, first_name, last_name, username, init_datetime) VALUES (?, ?, ?, ?, ?)`, table)
	_, err = s.db.ExecContext(ctx, query,
		profile.ID, profile.FirstName, profile.LastName, username,
		profile.EnrolledAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", table, err)
	}
	return nil
}

// Delete removes the row keyed by id. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, role relay.Role, id string) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// AppendAudit records one raw inbound event in the messages table.
func (s *Store) AppendAudit(ctx context.Context, senderID string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, message) VALUES (?, ?)`,
		senderID, string(payload))
	if err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}
	return nil
}
