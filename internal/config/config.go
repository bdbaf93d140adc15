package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/netchat/netchat/internal/models"
)

// Config holds all configuration values for the application.
// It is built once at startup and passed to every component by reference.
type Config struct {
	// AppwriteEndpoint is the API root of the hosted backend, e.g. https://nyc.cloud.appwrite.io/v1
	AppwriteEndpoint string `toml:"appwrite_endpoint"`

	// AppwriteProjectID identifies the project on the hosted backend
	AppwriteProjectID string `toml:"appwrite_project_id"`

	// AppwriteAPIKey is the server key for backend operations.
	// It has elevated privileges and should never be exposed to clients
	AppwriteAPIKey string `toml:"appwrite_api_key"`

	// DatabaseID is the database holding the channel and message collections
	DatabaseID string `toml:"database_id"`

	// ChannelsCollectionID and MessagesCollectionID name the two collections
	ChannelsCollectionID string `toml:"channels_collection_id"`
	MessagesCollectionID string `toml:"messages_collection_id"`

	// MainChannelID is the document id of the always-present Main channel
	MainChannelID string `toml:"main_channel_id"`

	// FilesBucketID and AvatarsBucketID are the object store buckets
	FilesBucketID   string `toml:"files_bucket_id"`
	AvatarsBucketID string `toml:"avatars_bucket_id"`

	// IPLookupURL returns the caller's public IP as JSON
	IPLookupURL string `toml:"ip_lookup_url"`

	// ServerPort is the port the HTTP server listens on
	ServerPort string `toml:"port"`

	// CORSOrigins lists the allowed browser origins
	CORSOrigins []string `toml:"cors_origins"`

	// PasswordRateLimit is the sustained number of password checks per second
	// allowed from one client address
	PasswordRateLimit float64 `toml:"password_rate_limit"`

	// PasswordRateBurst is the number of password checks one client address may
	// make at once
	PasswordRateBurst int `toml:"password_rate_burst"`

	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers are believed for throttling
	TrustedProxies []string `toml:"trusted_proxies"`

	// LogLevel is a zerolog level name
	LogLevel string `toml:"log_level"`

	// LogFormat is "console" for human readable output or "json"
	LogFormat string `toml:"log_format"`

	// StorageBackend selects the client-local store: memory, file, redis, sqlite or none
	StorageBackend string `toml:"storage_backend"`

	// StoragePath is the file or sqlite database path for the local store
	StoragePath string `toml:"storage_path"`

	// RedisURL is used by the redis storage backend
	RedisURL string `toml:"redis_url"`
}

// Defaults returns a Config populated with development defaults.
func Defaults() *Config {
	return &Config{
		AppwriteEndpoint:     "https://nyc.cloud.appwrite.io/v1",
		DatabaseID:           "main",
		ChannelsCollectionID: "channels",
		MessagesCollectionID: "messages",
		FilesBucketID:        "message_files",
		AvatarsBucketID:      "profiles",
		IPLookupURL:          "https://api.ipify.org?format=json",
		ServerPort:           "8080",
		CORSOrigins:          []string{"http://localhost:5173", "http://localhost:3000"},
		PasswordRateLimit:    1,
		PasswordRateBurst:    10,
		LogLevel:             "info",
		LogFormat:            "console",
		StorageBackend:       "file",
		StoragePath:          defaultStoragePath(),
		RedisURL:             "redis://localhost:6379/0",
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// NETCHAT_CONFIG, a .env file if present, and finally environment variables.
// Later sources win.
func Load() (*Config, error) {
	// Not an error if missing, production runs with real environment variables
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("[Config] No .env file found, using environment variables")
	}

	cfg := Defaults()

	if path := os.Getenv("NETCHAT_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the values found in a TOML file onto cfg.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppwriteEndpoint = getEnv("APPWRITE_ENDPOINT", c.AppwriteEndpoint)
	c.AppwriteProjectID = getEnv("APPWRITE_PROJECT_ID", c.AppwriteProjectID)
	c.AppwriteAPIKey = getEnv("APPWRITE_API_KEY", c.AppwriteAPIKey)
	c.DatabaseID = getEnv("APPWRITE_DATABASE_ID", c.DatabaseID)
	c.ChannelsCollectionID = getEnv("CHANNELS_COLLECTION_ID", c.ChannelsCollectionID)
	c.MessagesCollectionID = getEnv("MESSAGES_COLLECTION_ID", c.MessagesCollectionID)
	c.MainChannelID = getEnv("MAIN_CHANNEL_ID", c.MainChannelID)
	c.FilesBucketID = getEnv("FILES_BUCKET_ID", c.FilesBucketID)
	c.AvatarsBucketID = getEnv("AVATARS_BUCKET_ID", c.AvatarsBucketID)
	c.IPLookupURL = getEnv("IP_LOOKUP_URL", c.IPLookupURL)
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.PasswordRateLimit = getEnvFloat("PASSWORD_RATE_LIMIT", c.PasswordRateLimit)
	c.PasswordRateBurst = int(getEnvFloat("PASSWORD_RATE_BURST", float64(c.PasswordRateBurst)))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		c.TrustedProxies = splitList(proxies)
	}
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.StoragePath = getEnv("STORAGE_PATH", c.StoragePath)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)

	// Format: comma-separated list, e.g. "http://localhost:5173,https://chat.example.com"
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// Validate checks the values every component depends on.
func (c *Config) Validate() error {
	if c.AppwriteEndpoint == "" {
		return models.NewValidationError("appwrite_endpoint", "is required")
	}
	if c.AppwriteProjectID == "" {
		return models.NewValidationError("appwrite_project_id", "is required")
	}
	if c.MainChannelID == "" {
		return models.NewValidationError("main_channel_id", "is required")
	}
	if c.PasswordRateLimit <= 0 || c.PasswordRateBurst <= 0 {
		return models.NewValidationError("password_rate_limit", "rate and burst must be positive")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	switch c.StorageBackend {
	case "memory", "file", "redis", "sqlite", "none":
	default:
		return models.NewValidationError("storage_backend", fmt.Sprintf("unknown backend %q", c.StorageBackend))
	}
	if c.AppwriteAPIKey == "" {
		log.Warn().Msg("[Config] APPWRITE_API_KEY is not set, requests run with client permissions")
	}
	return nil
}

// URLBuilder returns the object store URL builder for this configuration.
func (c *Config) URLBuilder() models.URLBuilder {
	return models.URLBuilder{
		Endpoint:      c.AppwriteEndpoint,
		ProjectID:     c.AppwriteProjectID,
		FilesBucket:   c.FilesBucketID,
		AvatarsBucket: c.AvatarsBucketID,
	}
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single-host range.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if addr, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return nil, models.NewValidationError("trusted_proxies", fmt.Sprintf("invalid address or range %q", entry))
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat parses a numeric environment variable, keeping the default when
// it is unset or malformed.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("[Config] Ignoring malformed number")
		return defaultValue
	}
	return f
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "netchat-storage.json"
	}
	return dir + string(os.PathSeparator) + "netchat" + string(os.PathSeparator) + "storage.json"
}
