package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/nimasrn/inquiry-gateway/pkg/pg"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const (
	EmailProviderResend = "resend"
	EmailProviderSES    = "ses"
)

var config *Config

// Config holds every value the binaries read from the environment. Nothing
// else in the module should touch os.Getenv directly.
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=inquiry_gateway"`
	AppDebug bool   `env:"APP_DEBUG,default=false"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=15s"`
	HttpCorsOrigin     string        `env:"HTTP_CORS_ALLOW_ORIGIN,default=*"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE,default=disable"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=inquiry:"`

	PromNamespace     string `env:"PROM_NAMESPACE,default=inquiry_gateway"`
	MetricsListenAddr string `env:"METRICS_LISTEN_ADDR,default=:9100"`
	MetricsURI        string `env:"METRICS_URI,default=/metrics"`

	EmailProvider    string        `env:"EMAIL_PROVIDER,default=resend"`
	EmailTimeout     time.Duration `env:"EMAIL_TIMEOUT,default=10s"`
	EmailFromName    string        `env:"EMAIL_FROM_NAME,default=KanakArtistry"`
	EmailFromAddress string        `env:"EMAIL_FROM_ADDRESS,default=onboarding@resend.dev"`
	EmailRecipient   string        `env:"EMAIL_RECIPIENT,default=kanakartistry.art@gmail.com"`

	ResendApiKey  string `env:"RESEND_API_KEY"`
	ResendBaseUrl string `env:"RESEND_BASE_URL,default=https://api.resend.com"`

	SesAccessKey string `env:"SES_ACCESS_KEY"`
	SesSecretKey string `env:"SES_SECRET_KEY"`
	SesRegion    string `env:"SES_REGION,default=us-east-1"`

	NotifyAsync   bool `env:"NOTIFY_ASYNC,default=false"`
	NotifyWorkers int  `env:"NOTIFY_WORKERS,default=4"`
	NotifyBuffer  int  `env:"NOTIFY_BUFFER,default=256"`

	DigestEnabled    bool          `env:"DIGEST_ENABLED,default=true"`
	DigestCron       string        `env:"DIGEST_CRON,default=0 6 * * *"`
	DigestTimezone   string        `env:"DIGEST_TIMEZONE,default=Local"`
	DigestOncePerDay bool          `env:"DIGEST_ONCE_PER_DAY,default=true"`
	DigestLockTTL    time.Duration `env:"DIGEST_LOCK_TTL,default=10m"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c, err := Parse()
	if err != nil {
		return err
	}
	config = c
	return nil
}

// Parse maps the current environment onto a fresh Config without touching
// the package level instance.
func Parse() (*Config, error) {
	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return nil, errors.Wrap(err, "failed to map env variables to Configuration object")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.EmailProvider {
	case EmailProviderResend, EmailProviderSES:
	default:
		return errors.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.DigestEnabled {
		if c.DigestCron == "" {
			return errors.New("DIGEST_CRON is required when the digest is enabled")
		}
		if _, err := cron.ParseStandard(c.DigestCron); err != nil {
			return errors.Wrapf(err, "invalid DIGEST_CRON %q", c.DigestCron)
		}
	}
	if _, err := c.Location(); err != nil {
		return errors.Wrapf(err, "invalid DIGEST_TIMEZONE %q", c.DigestTimezone)
	}
	return nil
}

// Location resolves DIGEST_TIMEZONE; "Local" and "" mean the process zone.
func (c *Config) Location() (*time.Location, error) {
	if c.DigestTimezone == "" || c.DigestTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.DigestTimezone)
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
		SSLMode:  c.PostgresSSLMode,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
		SSLMode:  c.PostgresSSLMode,
	}
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
