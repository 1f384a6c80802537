package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is the envconfig prefix shared by every setting.
	EnvPrefix = "GREENGUARDIAN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GREENGUARDIAN_DB_DSN"
	EnvDBHost = "GREENGUARDIAN_DB_HOST"
	EnvDBUser = "GREENGUARDIAN_DB_USER"
	EnvDBName = "GREENGUARDIAN_DB_NAME"
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
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	Presence      PresenceConfig
	Classifier    ClassifierConfig
	Geocode       GeocodeConfig
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
	Env          string `envconfig:"GREENGUARDIAN_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENGUARDIAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GREENGUARDIAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENGUARDIAN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GREENGUARDIAN_DB_DSN"`
	Driver string `envconfig:"GREENGUARDIAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GREENGUARDIAN_DB_HOST"`
	LegacyPort     int    `envconfig:"GREENGUARDIAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GREENGUARDIAN_DB_USER"`
	LegacyPassword string `envconfig:"GREENGUARDIAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"GREENGUARDIAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"GREENGUARDIAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENGUARDIAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GREENGUARDIAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GREENGUARDIAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENGUARDIAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENGUARDIAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENGUARDIAN_REDIS_ADDR"`
	Password     string        `envconfig:"GREENGUARDIAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENGUARDIAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENGUARDIAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENGUARDIAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENGUARDIAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENGUARDIAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENGUARDIAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GREENGUARDIAN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GREENGUARDIAN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GREENGUARDIAN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GREENGUARDIAN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GREENGUARDIAN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GREENGUARDIAN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GREENGUARDIAN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GREENGUARDIAN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GREENGUARDIAN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GREENGUARDIAN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GREENGUARDIAN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GREENGUARDIAN_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GREENGUARDIAN_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GREENGUARDIAN_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GREENGUARDIAN_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"GREENGUARDIAN_PUBSUB_DOMAIN_TOPIC" default:"gg-domain-events"`
	DomainSubscription string `envconfig:"GREENGUARDIAN_PUBSUB_DOMAIN_SUBSCRIPTION" default:"gg-domain-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GREENGUARDIAN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GREENGUARDIAN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GREENGUARDIAN_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"GREENGUARDIAN_CRON_INTERVAL" default:"1h"`
	LockTTL                   time.Duration `envconfig:"GREENGUARDIAN_CRON_LOCK_TTL" default:"55m"`
	NotificationRetentionDays int           `envconfig:"GREENGUARDIAN_NOTIFICATION_RETENTION_DAYS" default:"30"`
	AnnouncementRetentionDays int           `envconfig:"GREENGUARDIAN_ANNOUNCEMENT_RETENTION_DAYS" default:"7"`
	OutboxRetentionDays       int           `envconfig:"GREENGUARDIAN_OUTBOX_RETENTION_DAYS" default:"14"`
}

type PresenceConfig struct {
	OnlineWithin time.Duration `envconfig:"GREENGUARDIAN_PRESENCE_ONLINE_WITHIN" default:"60s"`
	AwayWithin   time.Duration `envconfig:"GREENGUARDIAN_PRESENCE_AWAY_WITHIN" default:"300s"`
	PruneAfter   time.Duration `envconfig:"GREENGUARDIAN_PRESENCE_PRUNE_AFTER" default:"30m"`
}

type ClassifierConfig struct {
	BaseURL              string        `envconfig:"GREENGUARDIAN_CLASSIFIER_BASE_URL"`
	APIKey               string        `envconfig:"GREENGUARDIAN_CLASSIFIER_API_KEY"`
	MinInterval          time.Duration `envconfig:"GREENGUARDIAN_CLASSIFIER_MIN_INTERVAL" default:"3s"`
	RequestTimeout       time.Duration `envconfig:"GREENGUARDIAN_CLASSIFIER_TIMEOUT" default:"30s"`
	MaxConsecutiveErrors int           `envconfig:"GREENGUARDIAN_CLASSIFIER_MAX_CONSECUTIVE_ERRORS" default:"3"`
}

type GeocodeConfig struct {
	BaseURL        string        `envconfig:"GREENGUARDIAN_GEOCODE_BASE_URL"`
	APIKey         string        `envconfig:"GREENGUARDIAN_GEOCODE_API_KEY"`
	RequestTimeout time.Duration `envconfig:"GREENGUARDIAN_GEOCODE_TIMEOUT" default:"10s"`
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
