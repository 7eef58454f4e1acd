package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CatalogSourceDatabase = "database"
	CatalogSourceStatic   = "static"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	AppTagline  string
	ContentPath string // Empty: use the catalog embedded in the binary

	// Catalog
	CatalogSource string // "database" or "static"

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Observability (optional)
	SentryDSN string

	// Media uploads
	StorageDriver  string // "local" or "s3"
	UploadPath     string // Local driver: directory on disk
	UploadURL      string // Local driver: URL prefix the files are served under
	UploadFolder   string // Key prefix for every uploaded asset
	MaxUploadSize  int64
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	MediaHosts     []string // Extra host markers classified as direct media

	// HTTP
	CORSAllowedOrigins []string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PathStyle bool   // Required by MinIO and some S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Frame Weavers"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envString("APP_URL", "http://localhost:8090"),
		Port:        envString("PORT", "8090"),
		AppTagline:  envString("APP_TAGLINE", "Cinematic films for weddings, brands and events"),
		ContentPath: envString("CONTENT_PATH", ""),

		CatalogSource: envString("CATALOG_SOURCE", CatalogSourceDatabase),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/showreel.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Media uploads
		StorageDriver:  envString("STORAGE_DRIVER", StorageDriverLocal),
		UploadPath:     envString("UPLOAD_PATH", "./data/uploads"),
		UploadURL:      strings.TrimSuffix(envString("UPLOAD_URL", "/uploads"), "/"),
		UploadFolder:   envString("UPLOAD_FOLDER", "frame_weavers"),
		MaxUploadSize:  envInt64("MAX_UPLOAD_SIZE", 200<<20), // 200MB
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		UploadTimeout:  envDuration("UPLOAD_TIMEOUT", 10*time.Minute),
		MediaHosts:     envList("MEDIA_HOSTS"),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS"),

		S3Endpoint: envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}
	cfg.S3PathStyle = envBool("S3_PATH_STYLE", cfg.S3Endpoint != "")

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// S3 credentials are only needed when uploads go to a bucket
	if cfg.CatalogSource == CatalogSourceDatabase && cfg.StorageDriver == StorageDriverS3 {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envRequired("S3_ACCESS_KEY")
		cfg.S3SecretKey = envRequired("S3_SECRET_KEY")
	}

	validate(cfg)

	return cfg
}

// validate stops the process on settings that cannot work at all.
func validate(cfg *Config) {
	switch cfg.CatalogSource {
	case CatalogSourceDatabase, CatalogSourceStatic:
	default:
		slog.Error("config invalid catalog source", "value", cfg.CatalogSource,
			"hint", "use CATALOG_SOURCE=database or CATALOG_SOURCE=static")
		os.Exit(1)
	}

	switch cfg.StorageDriver {
	case StorageDriverLocal, StorageDriverS3:
	default:
		slog.Error("config invalid storage driver", "value", cfg.StorageDriver,
			"hint", "use STORAGE_DRIVER=local or STORAGE_DRIVER=s3")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsStatic() bool {
	return c.CatalogSource == CatalogSourceStatic
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:       c.AppName,
		AppEnv:        c.AppEnv,
		AppURL:        c.AppURL,
		Port:          c.Port,
		AppTagline:    c.AppTagline,
		CatalogSource: c.CatalogSource,
		UploadURL:     c.UploadURL,

		S3Endpoint: c.S3Endpoint, // Needed for CSP policies
		S3Bucket:   c.S3Bucket,
		S3Region:   c.S3Region,
	}
}
