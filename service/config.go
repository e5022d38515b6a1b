package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	storageDriverS3    = "s3"
	storageDriverMinio = "minio"
)

// Config holds all configuration for the application
type Config struct {
	SupabaseURL            string
	SupabaseServiceRoleKey string
	DatabaseURL            string

	Port            string
	BasePath        string
	LogLevel        string
	Region          string
	ShutdownTimeout time.Duration

	Storage StorageConfig
	Photos  PhotosConfig

	DBAutoMigrate  bool
	TracingEnabled bool
	MetricsEnabled bool
}

// StorageConfig selects and configures the object store driver
type StorageConfig struct {
	Driver          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UseSSL          bool
}

type PhotosConfig struct {
	MaxUploadBytes int64
	VerifyContent  bool
}

// LoadConfig loads configuration from environment variables. A .env file in the
// working directory is read first when present. Missing required values are
// reported together in the returned error.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		SupabaseURL:            strings.TrimRight(required("SUPABASE_URL"), "/"),
		SupabaseServiceRoleKey: required("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:            required("DATABASE_URL"),

		Port:            getEnv("PORT", "8080"),
		BasePath:        strings.TrimRight(getEnv("BASE_PATH", ""), "/"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Region:          getEnv("AWS_REGION", "eu-central-1"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		Storage: StorageConfig{
			Driver:          strings.ToLower(getEnv("STORAGE_DRIVER", storageDriverS3)),
			Bucket:          getEnv("STORAGE_BUCKET", "coffee-photos"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			UseSSL:          getEnvBool("STORAGE_USE_SSL", true),
		},
		Photos: PhotosConfig{
			MaxUploadBytes: getEnvInt64("PHOTOS_MAX_UPLOAD_BYTES", 10<<20),
			VerifyContent:  getEnvBool("PHOTOS_VERIFY_CONTENT", false),
		},

		DBAutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
		TracingEnabled: getEnvBool("TRACING_ENABLED", true),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		cfg.BasePath = "/" + cfg.BasePath
	}

	if err := cfg.Storage.resolve(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolve fills in Supabase Storage's S3 endpoint and session credentials
// unless they were given explicitly.
func (s *StorageConfig) resolve(supabaseURL, serviceRoleKey string) error {
	switch s.Driver {
	case storageDriverS3:
		if s.Endpoint == "" {
			s.Endpoint = supabaseURL + "/storage/v1/s3"
		}
		if s.AccessKeyID == "" && s.SecretAccessKey == "" {
			ref, err := projectRef(supabaseURL)
			if err != nil {
				return err
			}
			s.AccessKeyID = ref
			s.SecretAccessKey = serviceRoleKey
			s.SessionToken = serviceRoleKey
		}
	case storageDriverMinio:
		if s.Endpoint == "" {
			return errors.New("STORAGE_ENDPOINT is required for the minio storage driver")
		}
		if s.AccessKeyID == "" || s.SecretAccessKey == "" {
			return errors.New("STORAGE_ACCESS_KEY_ID and STORAGE_SECRET_ACCESS_KEY are required for the minio storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", s.Driver)
	}
	return nil
}

// projectRef extracts the project reference from https://<ref>.supabase.co
func projectRef(supabaseURL string) (string, error) {
	u, err := url.Parse(supabaseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid SUPABASE_URL %q", supabaseURL)
	}
	host := u.Hostname()
	ref, _, _ := strings.Cut(host, ".")
	return ref, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
