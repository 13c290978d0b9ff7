// Package config handles configuration for the server component:
// defaults, then .env and environment variables, then an optional JSON
// file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
)

// Config holds runtime settings for the AccountKeeper server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses of the two transports.
//   - StoragePath: JSON record file.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - PasswordCost: bcrypt cost for new hashes.
//   - LogLevel: debug, info, warn or error.
//   - CORSAllowedOrigins: origins allowed by the HTTP CORS policy.
//   - S3*: S3-compatible avatar storage. An empty bucket disables avatars.
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	StoragePath           string
	SecretKey             string
	TokenValidityDuration time.Duration
	PasswordCost          int
	LogLevel              string
	CORSAllowedOrigins    []string
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
}

// ErrMissingSecret is returned by Validate when no signing secret is set.
var ErrMissingSecret = errors.New("secret key is required")

// LoadDefaults populates Config with development defaults. There is no
// default secret.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.StoragePath = "data/database.json"
	c.TokenValidityDuration = 24 * time.Hour
	c.PasswordCost = credentials.DefaultCost
	c.LogLevel = "info"
	c.CORSAllowedOrigins = []string{"http://localhost:3000"}
	c.S3Region = "us-east-1"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	if c.TokenValidityDuration <= 0 {
		return fmt.Errorf("token validity must be positive, got %s", c.TokenValidityDuration)
	}
	if c.StoragePath == "" {
		return errors.New("storage path is required")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags. Malformed
// JSON or flags panic, as they would leave the server half-configured.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
