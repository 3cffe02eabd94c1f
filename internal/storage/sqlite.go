package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-guildbuilder/internal/blueprint"
)

type SQLite struct {
	db *sql.DB
}

var globalDB *SQLite

// Initialize opens the process-wide database.
func Initialize(dbPath string) error {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	globalDB = db
	return nil
}

// GetDB returns the process-wide database, or nil before Initialize.
func GetDB() *SQLite {
	return globalDB
}

// OpenSQLite opens (creating if needed) a database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blueprints (
		guild_id TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS builds (
		guild_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		source TEXT NOT NULL,
		build_seconds REAL NOT NULL,
		category_count INTEGER NOT NULL,
		channel_count INTEGER NOT NULL,
		role_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS build_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		source TEXT NOT NULL,
		build_seconds REAL NOT NULL,
		category_count INTEGER NOT NULL,
		channel_count INTEGER NOT NULL,
		role_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_build_log_guild ON build_log(guild_id);

	CREATE TABLE IF NOT EXISTS templates (
		name TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		document TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS guild_config (
		guild_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (guild_id, key)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBlueprint overwrites the guild's stored blueprint.
func (s *SQLite) SaveBlueprint(ctx context.Context, guildID string, bp *blueprint.Blueprint) error {
	doc, err := blueprint.Marshal(bp)
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blueprints (guild_id, document, updated_at) VALUES (?, ?, ?)`,
		guildID, string(doc), time.Now().Unix(),
	)
	return err
}

func (s *SQLite) LoadBlueprint(ctx context.Context, guildID string) (*blueprint.Blueprint, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM blueprints WHERE guild_id = ?`, guildID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBlueprint
	}
	if err != nil {
		return nil, err
	}
	return blueprint.Parse([]byte(doc))
}

// SaveBuild replaces the guild's current build record.
func (s *SQLite) SaveBuild(ctx context.Context, rec BuildRecord) error {
	m := rec.Metrics
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO builds (guild_id, id, source, build_seconds, category_count, channel_count, role_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GuildID, rec.ID, rec.Source, m.BuildSeconds, m.CategoryCount, m.ChannelCount, m.RoleCount, rec.CreatedAt,
	)
	return err
}

func (s *SQLite) LastBuild(ctx context.Context, guildID string) (*BuildRecord, error) {
	var rec BuildRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, guild_id, source, build_seconds, category_count, channel_count, role_count, created_at
		 FROM builds WHERE guild_id = ?`, guildID,
	).Scan(&rec.ID, &rec.GuildID, &rec.Source, &rec.Metrics.BuildSeconds, &rec.Metrics.CategoryCount,
		&rec.Metrics.ChannelCount, &rec.Metrics.RoleCount, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLite) AppendUsage(ctx context.Context, rec BuildRecord) error {
	m := rec.Metrics
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO build_log (id, guild_id, source, build_seconds, category_count, channel_count, role_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.GuildID, rec.Source, m.BuildSeconds, m.CategoryCount, m.ChannelCount, m.RoleCount, rec.CreatedAt,
	)
	return err
}

// Usage returns the newest entries first. A limit <= 0 returns everything.
func (s *SQLite) Usage(ctx context.Context, guildID string, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, guild_id, source, build_seconds, category_count, channel_count, role_count, created_at
		 FROM build_log WHERE guild_id = ? ORDER BY seq DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		if err := rows.Scan(&rec.ID, &rec.GuildID, &rec.Source, &rec.Metrics.BuildSeconds, &rec.Metrics.CategoryCount,
			&rec.Metrics.ChannelCount, &rec.Metrics.RoleCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) UsageCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM build_log`).Scan(&n)
	return n, err
}

func (s *SQLite) SaveTemplate(ctx context.Context, tpl Template) error {
	if tpl.CreatedAt == 0 {
		tpl.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO templates (name, guild_id, document, created_at) VALUES (?, ?, ?, ?)`,
		tpl.Name, tpl.GuildID, string(tpl.Blueprint), tpl.CreatedAt,
	)
	return err
}

func (s *SQLite) LoadTemplate(ctx context.Context, name string) (*Template, error) {
	var tpl Template
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, guild_id, document, created_at FROM templates WHERE name = ?`, name,
	).Scan(&tpl.Name, &tpl.GuildID, &doc, &tpl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tpl.Blueprint = []byte(doc)
	return &tpl, nil
}

func (s *SQLite) ListTemplates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLite) GetConfig(ctx context.Context, guildID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM guild_config WHERE guild_id = ? AND key = ?`, guildID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *SQLite) SetConfig(ctx context.Context, guildID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO guild_config (guild_id, key, value, updated_at) VALUES (?, ?, ?, ?)`,
		guildID, key, value, time.Now().Unix(),
	)
	return err
}

func (s *SQLite) DeleteConfig(ctx context.Context, guildID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM guild_config WHERE guild_id = ? AND key = ?`, guildID, key,
	)
	return err
}
