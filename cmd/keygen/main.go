package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agenticlabs/smartrouter/internal/auth"
)

func main() {
	tenant := flag.String("tenant", "", "tenant name (required, created if missing)")
	name := flag.String("name", "", "human-friendly key name (required)")
	env := flag.String("env", "prod", "environment prefix")
	expires := flag.String("expires", "365d", "expiry duration (e.g., 365d, 720h)")
	rpm := flag.Int("rpm", 0, "requests per minute limit (0 = default)")
	dailyLimitCents := flag.Int("daily-limit-cents", 0, "daily spend limit in cents (0 = unlimited)")
	dbURL := flag.String("db-url", "", "database URL (overrides env)")
	flag.Parse()

	if *tenant == "" || *name == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nerror: -tenant and -name are required")
		os.Exit(1)
	}

	rawKey, err := auth.GenerateKey(*env)
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}

	keyHash := auth.HashKey(rawKey)
	keyPrefix := auth.KeyPrefix(rawKey)

	dur, err := auth.ParseDuration(*expires)
	if err != nil {
		log.Fatalf("invalid expires: %v", err)
	}
	expiresAt := time.Now().Add(dur)

	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		u := envOrDefault("DB_USER", "smartrouter")
		pass := envOrDefault("DB_PASSWORD", "smartrouter-dev")
		dbname := envOrDefault("DB_NAME", "smartrouter")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", u, pass, host, port, dbname)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	// Resolve or create the tenant
	var tenantID string
	err = conn.QueryRow(ctx, `SELECT id FROM tenants WHERE name = $1`, *tenant).Scan(&tenantID)
	if err == pgx.ErrNoRows {
		tenantID = "t_" + randomHex(8)
		_, err = conn.Exec(ctx, `INSERT INTO tenants (id, name) VALUES ($1, $2)`, tenantID, *tenant)
	}
	if err != nil {
		log.Fatalf("failed to resolve tenant: %v", err)
	}

	keyID := "key_" + randomHex(8)
	_, err = conn.Exec(ctx, `
		INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, rpm_limit, daily_spend_limit_cents, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, keyID, tenantID, *name, keyHash, keyPrefix, nilIfZero(*rpm), nilIfZero(*dailyLimitCents), expiresAt)
	if err != nil {
		log.Fatalf("failed to insert key: %v", err)
	}

	fmt.Println("=== Smart Router API Key Generated ===")
	fmt.Println()
	fmt.Printf("  Key ID:     %s\n", keyID)
	fmt.Printf("  Key Prefix: %s\n", keyPrefix)
	fmt.Printf("  Tenant:     %s (%s)\n", *tenant, tenantID)
	if *rpm > 0 {
		fmt.Printf("  RPM Limit:  %d\n", *rpm)
	}
	if *dailyLimitCents > 0 {
		fmt.Printf("  Daily Cap:  %d cents\n", *dailyLimitCents)
	}
	fmt.Printf("  Expires:    %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  API Key (save this, it will NOT be shown again):")
	fmt.Printf("  %s\n", rawKey)
	fmt.Println()
	fmt.Println("======================================")
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func nilIfZero(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
