// Pacote config centraliza a configuração dos binários: defaults, arquivo YAML opcional e variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config agrega todos os parâmetros necessários para API, worker e CLI.
type Config struct {
	App         AppConfig         `koanf:"app"         validate:"required"`
	HTTP        HTTPConfig        `koanf:"http"        validate:"required"`
	Postgres    PostgresConfig    `koanf:"postgres"    validate:"required"`
	Redis       RedisConfig       `koanf:"redis"`
	Cache       CacheConfig       `koanf:"cache"`
	Polls       PollsConfig       `koanf:"polls"       validate:"required"`
	Realtime    RealtimeConfig    `koanf:"realtime"    validate:"required"`
	RateLimit   RateLimitConfig   `koanf:"antifraude"`
	Auth        AuthConfig        `koanf:"auth"`
	Log         LogConfig         `koanf:"log"         validate:"required"`
	Maintenance MaintenanceConfig `koanf:"maintenance" validate:"required"`
	DB          DBConfig          `koanf:"db"`
	Worker      WorkerConfig      `koanf:"worker"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

type HTTPConfig struct {
	Address            string        `koanf:"address"          validate:"required"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	SecureCookies      bool          `koanf:"secure_cookies"`
}

type PostgresConfig struct {
	Host     string `koanf:"host"     validate:"required"`
	Port     string `koanf:"port"     validate:"required"`
	User     string `koanf:"user"     validate:"required"`
	Password string `koanf:"password"`
	DB       string `koanf:"db"       validate:"required"`
	SSLMode  string `koanf:"sslmode"  validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"     validate:"required_if=Enabled true"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"       validate:"min=0,max=15"`
	Enabled  bool   `koanf:"enabled"`
}

type CacheConfig struct {
	Enabled   bool   `koanf:"enabled"`
	KeyPrefix string `koanf:"prefix"`
}

// PollsConfig carrega a política de códigos e de expiração. Enquetes com dono vivem mais que as anônimas.
type PollsConfig struct {
	CodeLength        int `koanf:"code_length"         validate:"required,min=3,max=8"`
	CodeMaxAttempts   int `koanf:"code_max_attempts"   validate:"required,min=1,max=100"`
	TTLHours          int `koanf:"ttl_hours"           validate:"required,min=1"`
	AnonymousTTLHours int `koanf:"anonymous_ttl_hours" validate:"required,min=1,ltefield=TTLHours"`
}

type RealtimeConfig struct {
	FallbackInterval time.Duration `koanf:"fallback_interval" validate:"required,min=500ms"`
	Heartbeat        time.Duration `koanf:"heartbeat"         validate:"required,min=1s"`
}

type RateLimitConfig struct {
	Enabled       bool   `koanf:"rate_limit_enabled"`
	MaxActions    int    `koanf:"rate_limit_max"    validate:"required_if=Enabled true,omitempty,min=1"`
	WindowSeconds int    `koanf:"rate_limit_window" validate:"required_if=Enabled true,omitempty,min=1"`
	KeyPrefix     string `koanf:"rate_limit_prefix"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`
}

type LogConfig struct {
	Level      string `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"required,oneof=json text pretty"`
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"file_max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"file_max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"file_max_age"     validate:"omitempty,min=0,max=365"`
}

type MaintenanceConfig struct {
	Interval      time.Duration `koanf:"interval"       validate:"required,min=1s"`
	RetentionDays int           `koanf:"retention_days" validate:"required,min=1"`
}

type DBConfig struct {
	AutoMigrate bool `koanf:"auto_migrate"`
}

type WorkerConfig struct {
	MetricsAddress string `koanf:"metrics_address"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "enquetes",
		"app.version":     "dev",
		"app.environment": "local",

		"http.address":              ":8080",
		"http.shutdown_timeout":     "10s",
		"http.cors_allowed_origins": []string{"http://localhost:3000"},
		"http.secure_cookies":       false,

		"postgres.host":     "localhost",
		"postgres.port":     "5432",
		"postgres.user":     "enquetes",
		"postgres.password": "enquetes",
		"postgres.db":       "enquetes",
		"postgres.sslmode":  "disable",

		"redis.addr":    "localhost:6379",
		"redis.db":      0,
		"redis.enabled": true,

		"cache.enabled": true,
		"cache.prefix":  "",

		"polls.code_length":         4,
		"polls.code_max_attempts":   10,
		"polls.ttl_hours":           24,
		"polls.anonymous_ttl_hours": 3,

		"realtime.fallback_interval": "5s",
		"realtime.heartbeat":         "15s",

		"antifraude.rate_limit_enabled": true,
		"antifraude.rate_limit_max":     30,
		"antifraude.rate_limit_window":  60,
		"antifraude.rate_limit_prefix":  "ratelimit",

		"auth.jwt_issuer": "",

		"log.level":            "info",
		"log.format":           "json",
		"log.file_max_size":    100,
		"log.file_max_backups": 3,
		"log.file_max_age":     28,

		"maintenance.interval":       "5m",
		"maintenance.retention_days": 30,

		"db.auto_migrate": true,

		"worker.metrics_address": ":9090",
	}
}

// envKeys mapeia as variáveis de ambiente aceitas para as chaves do koanf.
var envKeys = map[string]string{
	"APP_ENV":                       "app.environment",
	"APP_VERSION":                   "app.version",
	"HTTP_ADDRESS":                  "http.address",
	"HTTP_SHUTDOWN_TIMEOUT":         "http.shutdown_timeout",
	"CORS_ALLOWED_ORIGINS":          "http.cors_allowed_origins",
	"HTTP_SECURE_COOKIES":           "http.secure_cookies",
	"POSTGRES_HOST":                 "postgres.host",
	"POSTGRES_PORT":                 "postgres.port",
	"POSTGRES_USER":                 "postgres.user",
	"POSTGRES_PASSWORD":             "postgres.password",
	"POSTGRES_DB":                   "postgres.db",
	"POSTGRES_SSLMODE":              "postgres.sslmode",
	"REDIS_ADDR":                    "redis.addr",
	"REDIS_PASSWORD":                "redis.password",
	"REDIS_DB":                      "redis.db",
	"REDIS_ENABLED":                 "redis.enabled",
	"CACHE_ENABLED":                 "cache.enabled",
	"CACHE_PREFIX":                  "cache.prefix",
	"POLL_CODE_LENGTH":              "polls.code_length",
	"POLL_CODE_MAX_ATTEMPTS":        "polls.code_max_attempts",
	"POLL_TTL_HOURS":                "polls.ttl_hours",
	"ANONYMOUS_POLL_TTL_HOURS":      "polls.anonymous_ttl_hours",
	"REALTIME_FALLBACK_INTERVAL":    "realtime.fallback_interval",
	"REALTIME_HEARTBEAT":            "realtime.heartbeat",
	"ANTIFRAUDE_RATE_LIMIT_ENABLED": "antifraude.rate_limit_enabled",
	"ANTIFRAUDE_RATE_LIMIT_MAX":     "antifraude.rate_limit_max",
	"ANTIFRAUDE_RATE_LIMIT_WINDOW":  "antifraude.rate_limit_window",
	"ANTIFRAUDE_RATE_LIMIT_PREFIX":  "antifraude.rate_limit_prefix",
	"JWT_SECRET":                    "auth.jwt_secret",
	"JWT_ISSUER":                    "auth.jwt_issuer",
	"LOG_LEVEL":                     "log.level",
	"LOG_FORMAT":                    "log.format",
	"LOG_FILE_PATH":                 "log.file_path",
	"MAINTENANCE_INTERVAL":          "maintenance.interval",
	"MAINTENANCE_RETENTION_DAYS":    "maintenance.retention_days",
	"DB_AUTO_MIGRATE":               "db.auto_migrate",
	"WORKER_METRICS_ADDRESS":        "worker.metrics_address",
}

// Load aplica, em ordem crescente de precedência: defaults, arquivo CONFIG_FILE (se existir) e ambiente.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: carregar defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFileIfExists(k, path); err != nil {
			return Config{}, fmt.Errorf("config: carregar arquivo %q: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("config: carregar ambiente: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config: decodificar: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// listKeys são as chaves que chegam do ambiente como lista separada por vírgula.
var listKeys = map[string]bool{
	"http.cors_allowed_origins": true,
}

func envValue(name, value string) (string, any) {
	// Variáveis desconhecidas viram chave vazia e são ignoradas pelo provider.
	key := envKeys[name]
	if !listKeys[key] {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.DB,
		c.Postgres.SSLMode,
	)
}

func (c Config) PollTTL() time.Duration {
	return time.Duration(c.Polls.TTLHours) * time.Hour
}

func (c Config) AnonymousPollTTL() time.Duration {
	return time.Duration(c.Polls.AnonymousTTLHours) * time.Hour
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c Config) RetentionWindow() time.Duration {
	return time.Duration(c.Maintenance.RetentionDays) * 24 * time.Hour
}

// CacheActive indica se o acelerador Redis deve ser usado pelo repositório de enquetes.
func (c Config) CacheActive() bool {
	return c.Cache.Enabled && c.Redis.Enabled
}
