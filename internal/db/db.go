// internal/db/db.go
package db

import (
    "context"
    "database/sql"
    "log"
    "time"

    _ "github.com/lib/pq"

    "github.com/unclebandit/postcampaign-backend/internal/config"
)

var DB *sql.DB

func Init(cfg config.DatabaseConfig) {
    log.Println("DB_HOST:", cfg.Host)
    log.Println("DB_NAME:", cfg.Name)

    var err error
    DB, err = sql.Open("postgres", cfg.DSN())
    if err != nil {
        log.Fatalf("failed to connect to DB: %v", err)
    }

    DB.SetMaxOpenConns(25)
    DB.SetMaxIdleConns(5)
    DB.SetConnMaxLifetime(5 * time.Minute)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err = DB.PingContext(ctx); err != nil {
        log.Fatalf("failed to ping DB: %v", err)
    }

    log.Println("✅ Connected to database")
}
