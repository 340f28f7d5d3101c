package storage

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestUpsertGuildSettings(t *testing.T) {
	dsn := os.Getenv("TEMPEST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEMPEST_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// migrations are idempotent
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}

	guildID := "test-" + time.Now().Format("150405.000000")
	if _, found, err := store.GetGuildSettings(ctx, guildID); err != nil || found {
		t.Fatalf("expected no row, found=%v err=%v", found, err)
	}

	settings := GuildSettings{GuildID: guildID, WelcomeChannel: "#lobby", UpdatedBy: "u1"}
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.WelcomeChannel = "arrivals"
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, found, err := store.GetGuildSettings(ctx, guildID)
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if !found || got.WelcomeChannel != "arrivals" {
		t.Fatalf("expected channel arrivals, got %+v (found=%v)", got, found)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be set")
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mem.now = func() time.Time { return fixed }

	if _, found, _ := mem.GetGuildSettings(ctx, "g1"); found {
		t.Fatalf("expected empty store")
	}
	if err := mem.UpsertGuildSettings(ctx, GuildSettings{GuildID: "g1", WelcomeChannel: " #hall "}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, found, err := mem.GetGuildSettings(ctx, "g1")
	if err != nil || !found {
		t.Fatalf("expected row, found=%v err=%v", found, err)
	}
	if got.WelcomeChannel != "hall" {
		t.Fatalf("expected hall, got %q", got.WelcomeChannel)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected fixed time, got %s", got.UpdatedAt)
	}
}
