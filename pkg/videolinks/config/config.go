// Package config loads server configuration from the environment and wires
// the service from it.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamvault/video-links/pkg/videolinks"
	"github.com/streamvault/video-links/pkg/videolinks/cdnurl"
	"github.com/streamvault/video-links/pkg/videolinks/presign"
	"github.com/streamvault/video-links/pkg/videolinks/repo/memory"
	repopg "github.com/streamvault/video-links/pkg/videolinks/repo/postgres"
)

// ServerConfig is the environment-driven server configuration.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"

	// CDN configuration
	CDNDomain   string `env:"CDN_DOMAIN" env-default:"https://cdn.example.com"`
	CDNCacheTTL int    `env:"CDN_CACHE_TTL" env-default:"300"` // seconds

	// Auth configuration
	JWTSecret string `env:"JWT_SECRET"`

	// Optional presigning for entitled downloads
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PresignDuration int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
}

// Load reads the configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.CDNDomain == "" {
		return fmt.Errorf("CDN_DOMAIN is required")
	}
	return nil
}

// CacheTTL returns the CDN resolution cache TTL.
func (c *ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CDNCacheTTL) * time.Second
}

// BuildService wires repositories and the resolver per the configuration.
// The returned pool is nil for the memory backend.
func (c *ServerConfig) BuildService() (videolinks.Service, *pgxpool.Pool, error) {
	cdn := cdnurl.New(c.CDNDomain)

	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		svc, err := videolinks.New(
			videolinks.WithMetadataRepository(repo),
			videolinks.WithTaxonomyRepository(repo),
			videolinks.WithStorageIndex(repo),
			videolinks.WithCDNResolver(cdn),
		)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return svc, pool, nil
	default:
		repo := memory.New()
		svc, err := videolinks.New(
			videolinks.WithMetadataRepository(repo),
			videolinks.WithTaxonomyRepository(repo),
			videolinks.WithStorageIndex(repo),
			videolinks.WithCDNResolver(cdn),
		)
		if err != nil {
			return nil, nil, err
		}
		return svc, nil, nil
	}
}

// BuildPresigner creates the optional download presigner. Returns nil when
// no bucket is configured.
func (c *ServerConfig) BuildPresigner() (*presign.Signer, error) {
	if c.S3Bucket == "" {
		return nil, nil
	}
	return presign.New(presign.Config{
		Region:          c.S3Region,
		Bucket:          c.S3Bucket,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		Endpoint:        c.S3Endpoint,
		UsePathStyle:    c.S3UsePathStyle,
		PresignDuration: c.S3PresignDuration,
	})
}
