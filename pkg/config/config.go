package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "creditledger"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CREDITLEDGER_DB_DSN"
	EnvDBHost = "CREDITLEDGER_DB_HOST"
	EnvDBUser = "CREDITLEDGER_DB_USER"
	EnvDBName = "CREDITLEDGER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Webhook      WebhookConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CREDITLEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"CREDITLEDGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CREDITLEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CREDITLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CREDITLEDGER_DB_DSN"`
	Driver string `envconfig:"CREDITLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CREDITLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"CREDITLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CREDITLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"CREDITLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"CREDITLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"CREDITLEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CREDITLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CREDITLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CREDITLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CREDITLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CREDITLEDGER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CREDITLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"CREDITLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CREDITLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CREDITLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CREDITLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CREDITLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CREDITLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CREDITLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CREDITLEDGER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CREDITLEDGER_AUTO_MIGRATE" default:"false"`
}

type WebhookConfig struct {
	PaymentSigningSecret string `envconfig:"CREDITLEDGER_WEBHOOK_PAYMENT_SECRET" required:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CREDITLEDGER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CREDITLEDGER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CREDITLEDGER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	LedgerTopic        string `envconfig:"CREDITLEDGER_PUBSUB_LEDGER_TOPIC" default:"cl-ledger-events"`
	LedgerSubscription string `envconfig:"CREDITLEDGER_PUBSUB_LEDGER_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CREDITLEDGER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CREDITLEDGER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CREDITLEDGER_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
