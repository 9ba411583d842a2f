package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, secrets, etc.)
// - default: Values common across all environments (fee rate, schedules, etc.)
// -----------------------------------------------------------------------------

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Ledger    LedgerConfig
	Sweeper   SweeperConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"ledger"`
	Password    string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"ledger"`
	SSLMode     string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone    string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Idempotent-Replayed"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
	Issuer   string `envconfig:"JWT_ISSUER" default:"stay-ledger"`
}

type LedgerConfig struct {
	FeeRateBasisPoints int64  `envconfig:"LEDGER_FEE_RATE_BPS" default:"250"`
	PlatformAccount    string `envconfig:"LEDGER_PLATFORM_ACCOUNT" default:"platform"`
	Store              string `envconfig:"LEDGER_STORE" default:"memory"`
	EventBuffer        int    `envconfig:"LEDGER_EVENT_BUFFER" default:"64"`
	MaxPageSize        int    `envconfig:"LEDGER_MAX_PAGE_SIZE" default:"100"`
}

type SweeperConfig struct {
	Enabled  bool   `envconfig:"SWEEPER_ENABLED" default:"true"`
	Schedule string `envconfig:"SWEEPER_SCHEDULE" default:"0 */5 * * * *"`
	Batch    int    `envconfig:"SWEEPER_BATCH" default:"100"`
}

type RateLimitConfig struct {
	BookingsPerMinute int `envconfig:"RATE_LIMIT_BOOKINGS_PER_MINUTE" default:"10"`
	Burst             int `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

type TracingConfig struct {
	// Empty disables export; spans still go to the no-op provider.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"stay-ledger"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Ledger.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c LedgerConfig) validate() error {
	if c.FeeRateBasisPoints < 0 || c.FeeRateBasisPoints > 10000 {
		return fmt.Errorf("LEDGER_FEE_RATE_BPS must be within 0..10000, got %d", c.FeeRateBasisPoints)
	}
	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("LEDGER_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store)
	}
	if c.PlatformAccount == "" {
		return fmt.Errorf("LEDGER_PLATFORM_ACCOUNT must not be empty")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
			Issuer:   "stay-ledger-test",
		},
		Ledger: LedgerConfig{
			FeeRateBasisPoints: 250,
			PlatformAccount:    "platform",
			Store:              StoreMemory,
			EventBuffer:        16,
			MaxPageSize:        100,
		},
		Sweeper: SweeperConfig{
			Enabled:  false,
			Schedule: "0 */5 * * * *",
			Batch:    100,
		},
		RateLimit: RateLimitConfig{
			BookingsPerMinute: 600,
			Burst:             100,
		},
		Tracing: TracingConfig{
			ServiceName: "stay-ledger-test",
		},
	}
}
