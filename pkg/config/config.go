package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	OTP     OTPConfig
	SMS     SMSConfig
	Company CompanyConfig
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
	Env          string `envconfig:"BECHDU_APP_ENV" required:"true"`
	Port         string `envconfig:"BECHDU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BECHDU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BECHDU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BECHDU_DB_DSN"`

	Host     string `envconfig:"BECHDU_DB_HOST"`
	Port     int    `envconfig:"BECHDU_DB_PORT" default:"5432"`
	User     string `envconfig:"BECHDU_DB_USER"`
	Password string `envconfig:"BECHDU_DB_PASSWORD"`
	Name     string `envconfig:"BECHDU_DB_NAME"`
	SSLMode  string `envconfig:"BECHDU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BECHDU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BECHDU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BECHDU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BECHDU_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"BECHDU_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BECHDU_REDIS_URL"`
	Address      string        `envconfig:"BECHDU_REDIS_ADDR"`
	Password     string        `envconfig:"BECHDU_REDIS_PASSWORD"`
	DB           int           `envconfig:"BECHDU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BECHDU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BECHDU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BECHDU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BECHDU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BECHDU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BECHDU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BECHDU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BECHDU_JWT_EXPIRATION_MINUTES" default:"43200"`
}

type OTPConfig struct {
	TTL        time.Duration `envconfig:"BECHDU_OTP_TTL" default:"10m"`
	SendWindow  time.Duration `envconfig:"BECHDU_OTP_SEND_WINDOW" default:"1m"`
	SendLimit   int           `envconfig:"BECHDU_OTP_SEND_LIMIT" default:"3"`
	SendIPLimit int           `envconfig:"BECHDU_OTP_SEND_IP_LIMIT" default:"30"`
}

type SMSConfig struct {
	GatewayURL  string        `envconfig:"BECHDU_SMS_GATEWAY_URL" default:"https://control.msg91.com/api/v5/flow/"`
	AuthKey     string        `envconfig:"BECHDU_SMS_AUTH_KEY"`
	TemplateID  string        `envconfig:"BECHDU_SMS_TEMPLATE_ID"`
	CountryCode string        `envconfig:"BECHDU_SMS_COUNTRY_CODE" default:"91"`
	Timeout     time.Duration `envconfig:"BECHDU_SMS_TIMEOUT" default:"10s"`
}

type CompanyConfig struct {
	Name    string `envconfig:"BECHDU_COMPANY_NAME" default:"Bechdu"`
	State   string `envconfig:"BECHDU_COMPANY_STATE"`
	Address string `envconfig:"BECHDU_COMPANY_ADDRESS"`
	GSTIN   string `envconfig:"BECHDU_COMPANY_GSTIN"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := []struct {
		env   string
		value string
	}{
		{"BECHDU_DB_HOST", db.Host},
		{"BECHDU_DB_USER", db.User},
		{"BECHDU_DB_NAME", db.Name},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BECHDU_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
