package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The dev feature flag overrides whatever driver the env selected.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MTG_APP_ENV" required:"true"`
	Port         string `envconfig:"MTG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MTG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MTG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MTG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MTG_DB_DSN"`
	Driver string `envconfig:"MTG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MTG_DB_HOST"`
	LegacyPort     int    `envconfig:"MTG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MTG_DB_USER"`
	LegacyPassword string `envconfig:"MTG_DB_PASSWORD"`
	LegacyName     string `envconfig:"MTG_DB_NAME"`
	LegacySSLMode  string `envconfig:"MTG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MTG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MTG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MTG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MTG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MTG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MTG_REDIS_ADDR"`
	Password     string        `envconfig:"MTG_REDIS_PASSWORD"`
	DB           int           `envconfig:"MTG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MTG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MTG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MTG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MTG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MTG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MTG_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MTG_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MTG_JWT_EXPIRATION_MINUTES" required:"true"`
}

type RateLimitConfig struct {
	MutationWindow    time.Duration `envconfig:"MTG_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationUserLimit int           `envconfig:"MTG_RATE_LIMIT_MUTATION_USER_LIMIT" default:"30"`
	MutationIPLimit   int           `envconfig:"MTG_RATE_LIMIT_MUTATION_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MTG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MTG_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MTG_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"MTG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MTG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ListingTopic string `envconfig:"MTG_PUBSUB_LISTING_TOPIC" default:"listing-events"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"MTG_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"MTG_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"MTG_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"MTG_OUTBOX_METRICS_PORT"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
