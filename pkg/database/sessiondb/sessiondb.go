// Reina Manager
// Copyright (c) 2026 The Reina Manager Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Manager.
//
// Reina Manager is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Manager is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Manager.  If not, see <http://www.gnu.org/licenses/>.

// Package sessiondb stores finished game sessions for the play history.
package sessiondb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/wind-mask/ReinaManager/pkg/config"
	"github.com/wind-mask/ReinaManager/pkg/database"
	"github.com/wind-mask/ReinaManager/pkg/monitor"
)

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 100

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SessionDB struct {
	sql *sql.DB
}

// Open opens or creates the session database in dataDir and migrates it.
func Open(ctx context.Context, dataDir string) (*SessionDB, error) {
	dbPath := filepath.Join(dataDir, config.SessionDBFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := New(ctx, sqlInstance)
	if err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	log.Info().Str("path", dbPath).Msg("opened session database")
	return db, nil
}

// New wraps an open connection and brings its schema up to date.
func New(ctx context.Context, sqlDB *sql.DB) (*SessionDB, error) {
	if err := database.MigrateUp(ctx, sqlDB, migrationFiles, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to run session database migrations: %w", err)
	}
	return &SessionDB{sql: sqlDB}, nil
}

// NewForTesting wraps a connection without migrating it.
func NewForTesting(sqlDB *sql.DB) *SessionDB {
	return &SessionDB{sql: sqlDB}
}

// RecordSession stores a finished session. Sessions under a minute are
// kept too.
func (db *SessionDB) RecordSession(ctx context.Context, rec monitor.Record) error {
	if db.sql == nil {
		return database.ErrNullSQL
	}
	return sqlInsertSession(ctx, db.sql, rec)
}

// History returns a game's sessions, most recent first.
func (db *SessionDB) History(ctx context.Context, gameID, limit int) ([]database.PlaySession, error) {
	if db.sql == nil {
		return nil, database.ErrNullSQL
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return sqlGameHistory(ctx, db.sql, gameID, limit)
}

// TotalMinutes sums the recorded minutes of a game.
func (db *SessionDB) TotalMinutes(ctx context.Context, gameID int) (int64, error) {
	if db.sql == nil {
		return 0, database.ErrNullSQL
	}
	return sqlTotalMinutes(ctx, db.sql, gameID)
}

func (db *SessionDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

/*
 * Internal SQL functions
 */

func sqlInsertSession(ctx context.Context, db *sql.DB, rec monitor.Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO PlaySessions(
			GameID, StartTime, EndTime, TotalMinutes, TotalSeconds, ProcessID
		) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.GameID,
		rec.StartTime,
		rec.EndTime,
		rec.TotalMinutes,
		rec.TotalSeconds,
		rec.FinalPID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert play session: %w", err)
	}
	return nil
}

func sqlGameHistory(ctx context.Context, db *sql.DB, gameID, limit int) ([]database.PlaySession, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DBID, GameID, StartTime, EndTime, TotalMinutes, TotalSeconds, ProcessID
		FROM PlaySessions
		WHERE GameID = ?
		ORDER BY StartTime DESC, DBID DESC
		LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	sessions := make([]database.PlaySession, 0)
	for rows.Next() {
		var s database.PlaySession
		var start, end int64
		if err := rows.Scan(
			&s.DBID, &s.GameID, &start, &end, &s.TotalMinutes, &s.TotalSeconds, &s.ProcessID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan play session: %w", err)
		}
		s.StartTime = time.Unix(start, 0)
		s.EndTime = time.Unix(end, 0)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read play sessions: %w", err)
	}
	return sessions, nil
}

func sqlTotalMinutes(ctx context.Context, db *sql.DB, gameID int) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(TotalMinutes), 0) FROM PlaySessions WHERE GameID = ?`,
		gameID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum play time: %w", err)
	}
	return total, nil
}
