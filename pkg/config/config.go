package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHOPKART"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv        = "SHOPKART_APP_ENV"
	EnvPort          = "SHOPKART_APP_PORT"
	EnvDBDSN         = "SHOPKART_DB_DSN"
	EnvDBHost        = "SHOPKART_DB_HOST"
	EnvDBUser        = "SHOPKART_DB_USER"
	EnvDBName        = "SHOPKART_DB_NAME"
	EnvRedisURL      = "SHOPKART_REDIS_URL"
	EnvJWTSecret     = "SHOPKART_JWT_SECRET"
	EnvJWTIssuer     = "SHOPKART_JWT_ISSUER"
	EnvJWTExpMins    = "SHOPKART_JWT_EXPIRATION_MINUTES"
	EnvRazorpayKeyID = "SHOPKART_RAZORPAY_KEY_ID"
	EnvRazorpaySecret = "SHOPKART_RAZORPAY_KEY_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
	Razorpay      RazorpayConfig
	Invoice       InvoiceConfig
	Sendgrid      SendgridConfig
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
	Env          string `envconfig:"SHOPKART_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPKART_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"SHOPKART_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"SHOPKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPKART_DB_DSN"`
	Driver string `envconfig:"SHOPKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPKART_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPKART_DB_USER"`
	LegacyPassword string `envconfig:"SHOPKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPKART_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPKART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPKART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPKART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPKART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPKART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPKART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPKART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPKART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPKART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPKART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPKART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPKART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPKART_AUTO_MIGRATE" default:"false"`
}

type CartConfig struct {
	SessionCookieName string        `envconfig:"SHOPKART_CART_SESSION_COOKIE" default:"cart_token"`
	SessionTTL        time.Duration `envconfig:"SHOPKART_CART_SESSION_TTL" default:"720h"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SHOPKART_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"SHOPKART_RAZORPAY_KEY_SECRET"`
	Currency  string `envconfig:"SHOPKART_RAZORPAY_CURRENCY" default:"INR"`
}

type InvoiceConfig struct {
	Dir string `envconfig:"SHOPKART_INVOICE_DIR" default:"invoices"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHOPKART_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHOPKART_SENDGRID_FROM_EMAIL"`
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
