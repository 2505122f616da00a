package db

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var DB *sqlx.DB

type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN builds the driver specific data source name.
func (c Config) DSN() string {
	if c.Driver == "sqlite" {
		if c.Database == "" {
			return ":memory:"
		}
		return c.Database
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func ConnectWithConfig(config Config) error {
	conn, err := sqlx.Open(config.Driver, config.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if config.Driver == "sqlite" {
		// Every pooled connection to ":memory:" is a separate database.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(15 * time.Minute)
	}

	DB = conn

	return nil
}

func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
