package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

type GuildSettings struct {
	GuildID        string
	WelcomeChannel string
	UpdatedBy      string
	UpdatedAt      time.Time
}

// Settings is the per-guild settings store the bot reads on join and writes
// from the welcome command.
type Settings interface {
	GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, bool, error)
	UpsertGuildSettings(ctx context.Context, settings GuildSettings) error
}

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MinConns = 0
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// GetGuildSettings reports found=false when the guild has no row.
func (s *Store) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, bool, error) {
	result := GuildSettings{GuildID: guildID}
	err := s.pool.QueryRow(ctx, `
		SELECT welcome_channel, updated_by, updated_at
		FROM guild_settings WHERE guild_id = $1`, guildID).
		Scan(&result.WelcomeChannel, &result.UpdatedBy, &result.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, false, nil
		}
		return GuildSettings{}, false, err
	}
	return result, true, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, welcome_channel, updated_by, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (guild_id) DO UPDATE SET
			welcome_channel = excluded.welcome_channel,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`, settings.GuildID, normalizeChannel(settings.WelcomeChannel), settings.UpdatedBy)
	return err
}

// Memory keeps settings for the life of the process. It is used when no
// database is configured.
type Memory struct {
	mu     sync.RWMutex
	guilds map[string]GuildSettings
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{guilds: make(map[string]GuildSettings), now: time.Now}
}

func (m *Memory) GetGuildSettings(_ context.Context, guildID string) (GuildSettings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings, ok := m.guilds[guildID]
	if !ok {
		return GuildSettings{GuildID: guildID}, false, nil
	}
	return settings, true, nil
}

func (m *Memory) UpsertGuildSettings(_ context.Context, settings GuildSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings.WelcomeChannel = normalizeChannel(settings.WelcomeChannel)
	settings.UpdatedAt = m.now()
	m.guilds[settings.GuildID] = settings
	return nil
}

func normalizeChannel(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "#")
}
