package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"filepond/internal/pkg/logging"
	"filepond/internal/storage"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "filepond.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultServerIDSecret   = "change-me-server-id-secret"
	defaultDisk             = "local"
	defaultTempDir          = "temp"
	defaultSoftDelete       = "false"
	defaultExpiration       = "30"
	defaultValidationRules  = "required|file|max:5000"
	defaultProcessURL       = "/filepond"
	defaultCleanupInterval  = "10m"
	defaultLocalStorageRoot = "./storage"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string

	Filepond FilepondConfig
	Storage  StorageConfig
}

// FilepondConfig holds the staging settings shared by intake, the field
// helpers and the sweeper.
type FilepondConfig struct {
	Disk            string
	TempDir         string
	SoftDelete      bool
	Expiration      time.Duration
	ValidationRules string
	ServerIDSecret  string
	ProcessURL      string
	RevertURL       string
	CleanupInterval time.Duration
}

type StorageConfig struct {
	LocalRoot   string
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	fp := &cfg.Filepond
	fp.Disk = strings.TrimSpace(getEnv("FILEPOND_DISK", defaultDisk))
	fp.TempDir = strings.Trim(strings.TrimSpace(getEnv("FILEPOND_TEMP_DIR", defaultTempDir)), "/")
	fp.SoftDelete = parseBoolEnv("FILEPOND_SOFT_DELETE", defaultSoftDelete)
	fp.ValidationRules = strings.TrimSpace(getEnv("FILEPOND_VALIDATION_RULES", defaultValidationRules))
	fp.ServerIDSecret = strings.TrimSpace(getEnv("FILEPOND_SERVER_ID_SECRET", defaultServerIDSecret))
	fp.ProcessURL = strings.TrimSpace(getEnv("FILEPOND_PROCESS_URL", defaultProcessURL))
	fp.RevertURL = strings.TrimSpace(getEnv("FILEPOND_REVERT_URL", fp.ProcessURL))

	var err error
	fp.Expiration, err = parseMinutesEnv("FILEPOND_EXPIRATION", defaultExpiration)
	if err != nil {
		return nil, err
	}
	fp.CleanupInterval, err = parseDurationEnv("FILEPOND_CLEANUP_INTERVAL", defaultCleanupInterval)
	if err != nil {
		return nil, err
	}

	cfg.Storage = StorageConfig{
		LocalRoot:   strings.TrimSpace(getEnv("STORAGE_LOCAL_ROOT", defaultLocalStorageRoot)),
		S3Bucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Prefix:    strings.TrimSpace(os.Getenv("S3_PREFIX")),
		S3Region:    strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Endpoint:  strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey: strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey: strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logging.Info("filepond config",
		"env", cfg.AppEnv,
		"disk", fp.Disk,
		"temp_dir", fp.TempDir,
		"soft_delete", fp.SoftDelete,
		"expiration", fp.Expiration,
	)

	return cfg, nil
}

// StorageConfig describes the disks to open.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		LocalRoot: c.Storage.LocalRoot,
		S3: storage.S3Config{
			Bucket:    c.Storage.S3Bucket,
			Prefix:    c.Storage.S3Prefix,
			Region:    c.Storage.S3Region,
			Endpoint:  c.Storage.S3Endpoint,
			AccessKey: c.Storage.S3AccessKey,
			SecretKey: c.Storage.S3SecretKey,
		},
	}
}

func validateConfig(cfg *Config) error {
	fp := cfg.Filepond
	if fp.Disk == "" {
		return fmt.Errorf("FILEPOND_DISK must not be empty")
	}
	if fp.TempDir == "" {
		return fmt.Errorf("FILEPOND_TEMP_DIR must not be empty")
	}
	if fp.Expiration <= 0 {
		return fmt.Errorf("FILEPOND_EXPIRATION must be > 0")
	}
	if fp.CleanupInterval <= 0 {
		return fmt.Errorf("FILEPOND_CLEANUP_INTERVAL must be > 0")
	}
	if !strings.HasPrefix(fp.ProcessURL, "/") || !strings.HasPrefix(fp.RevertURL, "/") {
		return fmt.Errorf("FILEPOND_PROCESS_URL and FILEPOND_REVERT_URL must start with /")
	}
	if fp.Disk == "s3" && cfg.Storage.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET must be set when FILEPOND_DISK=s3")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(fp.ServerIDSecret, defaultServerIDSecret) {
			return fmt.Errorf("in prod/release FILEPOND_SERVER_ID_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

// parseMinutesEnv accepts a bare number of minutes or a Go duration.
func parseMinutesEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: want minutes or a duration", name, value)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
