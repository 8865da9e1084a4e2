package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is left empty because every field carries its full PATI_ tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PATI_DB_DSN"
	EnvDBHost = "PATI_DB_HOST"
	EnvDBUser = "PATI_DB_USER"
	EnvDBName = "PATI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

// Config aggregates every runtime setting for the platform services.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Affiliate     AffiliateConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

// Load parses the environment into a Config and normalizes derived values.
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
	Env          string `envconfig:"PATI_APP_ENV" required:"true"`
	Port         string `envconfig:"PATI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PATI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PATI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PATI_DB_DSN"`
	Driver string `envconfig:"PATI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PATI_DB_HOST"`
	LegacyPort     int    `envconfig:"PATI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PATI_DB_USER"`
	LegacyPassword string `envconfig:"PATI_DB_PASSWORD"`
	LegacyName     string `envconfig:"PATI_DB_NAME"`
	LegacySSLMode  string `envconfig:"PATI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PATI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PATI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PATI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PATI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PATI_REDIS_URL"`
	Address      string        `envconfig:"PATI_REDIS_ADDR"`
	Password     string        `envconfig:"PATI_REDIS_PASSWORD"`
	DB           int           `envconfig:"PATI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PATI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PATI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PATI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PATI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PATI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PATI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PATI_JWT_ISSUER" default:"pati-platform"`
	ExpirationMinutes      int    `envconfig:"PATI_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"PATI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PATI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PATI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PATI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PATI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PATI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PATI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PATI_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PATI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PATI_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PATI_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PATI_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PATI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PATI_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the flat shipping rule knobs.
type CheckoutConfig struct {
	FreeShippingThresholdCents int `envconfig:"PATI_CHECKOUT_FREE_SHIPPING_THRESHOLD_CENTS" default:"5000"`
	FlatShippingCents          int `envconfig:"PATI_CHECKOUT_FLAT_SHIPPING_CENTS" default:"500"`
}

// AffiliateConfig carries the commission rate applied to affiliate sales.
type AffiliateConfig struct {
	CommissionRate string `envconfig:"PATI_AFFILIATE_COMMISSION_RATE" default:"0.10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PATI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"PATI_PUBSUB_ORDERS_TOPIC" default:"pati-order-events"`
	OrdersSubscription string `envconfig:"PATI_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PATI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PATI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PATI_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
