package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// JsonConfig is the JSON file layout. Durations accept "24h" or integer
// nanoseconds. Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	StoragePath           string         `json:"storage_path"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	PasswordCost          int            `json:"password_cost"`
	LogLevel              string         `json:"log_level"`
	CORSAllowedOrigins    []string       `json:"cors_allowed_origins"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c or -config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	override(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	override(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	override(&config.StoragePath, c.StoragePath)
	override(&config.SecretKey, c.SecretKey)
	override(&config.LogLevel, c.LogLevel)
	override(&config.S3RootUser, c.S3RootUser)
	override(&config.S3RootPassword, c.S3RootPassword)
	override(&config.S3Bucket, c.S3Bucket)
	override(&config.S3Region, c.S3Region)
	override(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.PasswordCost != 0 {
		config.PasswordCost = c.PasswordCost
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}
