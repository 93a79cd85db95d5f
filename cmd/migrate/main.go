// Command migrate applies the database schema. It is idempotent; every
// statement uses "if not exists".
package main

import (
	"database/sql"
	_ "embed"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/runrevr/ImageRefresh-sub002/internal/infra"
)

//go:embed schema.sql
var schema string

func main() {
	_ = godotenv.Load()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach database")
	}
	if _, err := db.Exec(schema); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}
	logger.Info().Msg("schema applied")
}
