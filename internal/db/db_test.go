package db

import (
	"path/filepath"
	"testing"

	"github.com/dOtOb9/message/internal/config"
	"github.com/dOtOb9/message/internal/models"
)

func TestDSN(t *testing.T) {
	got := DSN("127.0.0.1", 3306, "chattodo")
	want := "root@tcp(127.0.0.1:3306)/chattodo?parseTime=true"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestConnect_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")

	conn, err := Connect(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	for _, m := range AllModels() {
		if !conn.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = "oracle"
	if _, err := Connect(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSeedUsers(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "test.db")
	conn, err := Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	users := []models.User{
		{ID: "u1", DisplayName: "田中"},
		{ID: "u2", DisplayName: "佐藤"},
	}
	if err := SeedUsers(conn, users); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-seeding with a changed name upserts, not duplicates.
	users[0].DisplayName = "田中太郎"
	if err := SeedUsers(conn, users[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got models.User
	if err := conn.First(&got, "id = ?", "u1").Error; err != nil {
		t.Fatalf("first: %v", err)
	}
	if got.DisplayName != "田中太郎" {
		t.Errorf("display name = %q, want 田中太郎", got.DisplayName)
	}
	var n int64
	if err := conn.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("users = %d, want 2", n)
	}

	if err := SeedUsers(conn, []models.User{{DisplayName: "無名"}}); err == nil {
		t.Error("expected error for missing id")
	}
}
