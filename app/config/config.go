// Package config loads service settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. A .env file in the working directory is loaded into
// the environment first and never overrides variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/trucksigns/truck-signs-api/app/database"
)

// EnvConfigPath names the YAML file when --config is not given.
const EnvConfigPath = "TRUCKSIGNS_CONFIG"

type Config struct {
	Server   Server          `yaml:"server"`
	Log      Log             `yaml:"log"`
	Database database.Config `yaml:"database"`
	Cache    Cache           `yaml:"cache"`
	Storage  Storage         `yaml:"storage"`
	Payments Payments        `yaml:"payments"`
	Ordering Ordering        `yaml:"ordering"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type Cache struct {
	Backend       string        `yaml:"backend"`
	Namespace     string        `yaml:"namespace"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	ListTTL       time.Duration `yaml:"list_ttl"`
	StaticTTL     time.Duration `yaml:"static_ttl"`
}

const (
	StorageDisk   = "disk"
	StorageGridFS = "gridfs"
)

type Storage struct {
	Backend        string `yaml:"backend"`
	MediaRoot      string `yaml:"media_root"`
	MediaURL       string `yaml:"media_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	MongoURI       string `yaml:"mongo_uri"`
	MongoDatabase  string `yaml:"mongo_database"`
	GridFSBucket   string `yaml:"gridfs_bucket"`
}

type Payments struct {
	StripeSecretKey string        `yaml:"stripe_secret_key"`
	StripeBaseURL   string        `yaml:"stripe_base_url"`
	Currency        string        `yaml:"currency"`
	Timeout         time.Duration `yaml:"timeout"`
	ClaimTTL        time.Duration `yaml:"claim_ttl"`
}

type Ordering struct {
	StrictColor bool `yaml:"strict_color"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 20 * time.Second,
		},
		Log: Log{Level: "info", Format: "json"},
		Database: database.Config{
			Driver:          database.DriverPostgres,
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Cache: Cache{
			Backend:   CacheMemory,
			Namespace: "trucksigns",
			ListTTL:   300 * time.Second,
			StaticTTL: time.Hour,
		},
		Storage: Storage{
			Backend:        StorageDisk,
			MediaRoot:      "media",
			MediaURL:       "/media/",
			MaxUploadBytes: 10 << 20,
			MongoDatabase:  "trucksigns",
			GridFSBucket:   "images",
		},
		Payments: Payments{
			Currency: "usd",
			Timeout:  15 * time.Second,
			ClaimTTL: 2 * time.Minute,
		},
	}
}

// Load builds the configuration. An empty path falls back to $TRUCKSIGNS_CONFIG;
// when neither is set only defaults and the environment apply.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("HTTP_ADDR", &c.Server.Addr)
	dur("HTTP_READ_TIMEOUT", &c.Server.ReadTimeout)
	dur("HTTP_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	dur("HTTP_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.DSN)
	boolean("DATABASE_AUTO_MIGRATE", &c.Database.AutoMigrate)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_NAMESPACE", &c.Cache.Namespace)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	redisDB := int64(c.Cache.RedisDB)
	integer("REDIS_DB", &redisDB)
	c.Cache.RedisDB = int(redisDB)
	dur("CACHE_LIST_TTL", &c.Cache.ListTTL)
	dur("CACHE_STATIC_TTL", &c.Cache.StaticTTL)

	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("MEDIA_ROOT", &c.Storage.MediaRoot)
	str("MEDIA_URL", &c.Storage.MediaURL)
	integer("MAX_UPLOAD_BYTES", &c.Storage.MaxUploadBytes)
	str("MONGO_URI", &c.Storage.MongoURI)
	str("MONGO_DATABASE", &c.Storage.MongoDatabase)
	str("GRIDFS_BUCKET", &c.Storage.GridFSBucket)

	str("STRIPE_SECRET_KEY", &c.Payments.StripeSecretKey)
	str("STRIPE_BASE_URL", &c.Payments.StripeBaseURL)
	str("PAYMENTS_CURRENCY", &c.Payments.Currency)
	dur("PAYMENTS_TIMEOUT", &c.Payments.Timeout)
	dur("PAYMENTS_CLAIM_TTL", &c.Payments.ClaimTTL)
	boolean("ORDERING_STRICT_COLOR", &c.Ordering.StrictColor)

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required (DATABASE_URL)"))
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	switch c.Storage.Backend {
	case StorageDisk:
	case StorageGridFS:
		if c.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri is required for the gridfs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Payments.ClaimTTL <= c.Payments.Timeout {
		errs = append(errs, errors.New("payments.claim_ttl must exceed payments.timeout"))
	}
	return errors.Join(errs...)
}

// Logger returns the process logger described by the log section.
func (l Log) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
