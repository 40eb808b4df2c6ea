// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// JWTIssuer is the "iss" claim stamped on every issued access token.
	JWTIssuer string

	// JWTSigningKeySeed, if set, is a 32-byte (64 hex characters)
	// hex-encoded ed25519 private key seed used to derive a stable signing key across restarts. If
	// empty, the server generates and logs a fresh key at startup (fine
	// for local development, not for a real deployment).
	JWTSigningKeySeed string

	// AccessTokenTTL bounds the lifetime of an issued access token.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL bounds the lifetime of an issued refresh token.
	RefreshTokenTTL time.Duration

	// SyncPageSize caps how many records one pull response returns.
	SyncPageSize int

	// SoftDeleteRetention is how long a tombstoned sync_records row is
	// kept before the background cleaner purges it.
	SoftDeleteRetention time.Duration

	// NATSURL is the broker address for remote-command fanout. Empty
	// disables push delivery; clients fall back to polling.
	NATSURL string

	// RateLimitRPS and RateLimitBurst configure the per-IP token bucket
	// applied to every route.
	RateLimitRPS   float64
	RateLimitBurst int
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.JWTIssuer, "jwt-issuer", "keydrop-sync", "issuer claim for signed access tokens")
	flag.StringVar(&options.JWTSigningKeySeed, "jwt-key-seed", "", "hex-encoded ed25519 seed for the token signer")
	flag.DurationVar(&options.AccessTokenTTL, "access-ttl", 15*time.Minute, "access token lifetime")
	flag.DurationVar(&options.RefreshTokenTTL, "refresh-ttl", 30*24*time.Hour, "refresh token lifetime")
	flag.IntVar(&options.SyncPageSize, "sync-page-size", 200, "max records per pull page")
	flag.DurationVar(&options.SoftDeleteRetention, "tombstone-retention", 90*24*time.Hour, "how long deleted sync records are kept before purge")
	flag.StringVar(&options.NATSURL, "nats-url", "", "NATS broker URL for remote command push (empty disables push)")
	flag.Float64Var(&options.RateLimitRPS, "ratelimit-rps", 5, "per-IP requests/sec allowed on every route")
	flag.IntVar(&options.RateLimitBurst, "ratelimit-burst", 10, "per-IP burst allowed on every route")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if seed := os.Getenv("JWT_SIGNING_KEY_SEED"); seed != "" {
		options.JWTSigningKeySeed = seed
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		options.NATSURL = natsURL
	}

	return options
}
