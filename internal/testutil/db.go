package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	// pgx driver for database/sql in tests.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Hissaria17/alcrm-sub001/internal/migrate"
)

// TestDBConfig holds connection parameters for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads TEST_DB_* env vars with local defaults.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
		User:     getEnvOrDefault("TEST_DB_USER", "alcrm"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "alcrm"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "alcrm_test"),
	}
}

// SkipIfNoTestDB skips the test when no Postgres listener is reachable.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()
	cfg := DefaultTestDBConfig()
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		t.Skipf("Postgres not available for testing at %s: %v", addr, err)
		return
	}
	if cerr := conn.Close(); cerr != nil {
		t.Logf("warning: failed to close probe connection: %v", cerr)
	}
}

// SetupTestDB opens the test database and applies migrations.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	cfg := DefaultTestDBConfig()
	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		cfg.User, cfg.Password, hostPort, cfg.DBName)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		t.Skipf("Postgres not responding at %s: %v", hostPort, pingErr)
	}

	if migErr := migrate.Run(ctx, db); migErr != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", migErr)
	}

	return db
}
