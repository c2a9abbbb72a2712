package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Bootstrap     BootstrapConfig
	Labels        LabelsConfig
	Import        ImportConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SPOOL_APP_ENV" required:"true"`
	Port         string `envconfig:"SPOOL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPOOL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPOOL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SPOOL_DB_DSN"`
	Driver string `envconfig:"SPOOL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPOOL_DB_HOST"`
	LegacyPort     int    `envconfig:"SPOOL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPOOL_DB_USER"`
	LegacyPassword string `envconfig:"SPOOL_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPOOL_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPOOL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPOOL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPOOL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPOOL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPOOL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPOOL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPOOL_REDIS_ADDR"`
	Password     string        `envconfig:"SPOOL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPOOL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPOOL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPOOL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPOOL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPOOL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPOOL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SPOOL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SPOOL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SPOOL_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"SPOOL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPOOL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SPOOL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SPOOL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SPOOL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPOOL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SPOOL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"SPOOL_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SPOOL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// BootstrapConfig seeds the first admin account outside production.
type BootstrapConfig struct {
	AdminUsername string `envconfig:"SPOOL_BOOTSTRAP_ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"SPOOL_BOOTSTRAP_ADMIN_PASSWORD"`
}

// LabelsConfig controls the scannable QR labels printed for spools.
type LabelsConfig struct {
	// PublicBaseURL is the externally reachable root the QR payload points at.
	PublicBaseURL string `envconfig:"SPOOL_LABELS_PUBLIC_BASE_URL" default:"http://localhost:8080"`
	DefaultSize   int    `envconfig:"SPOOL_LABELS_DEFAULT_SIZE" default:"200"`
	MaxSize       int    `envconfig:"SPOOL_LABELS_MAX_SIZE" default:"1024"`
}

// ImportConfig tunes the bulk spreadsheet import heuristics.
type ImportConfig struct {
	// HeaderKeyword locates the tag column: the first header cell containing
	// this substring (case-insensitive) wins.
	HeaderKeyword  string `envconfig:"SPOOL_IMPORT_HEADER_KEYWORD" default:"isom"`
	HeaderScanRows int    `envconfig:"SPOOL_IMPORT_HEADER_SCAN_ROWS" default:"9"`
	MaxUploadMB    int    `envconfig:"SPOOL_IMPORT_MAX_UPLOAD_MB" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPOOL_AUTO_MIGRATE" default:"false"`
	// EnforceStageOrder turns the one-step stage monotonicity rule on. Off
	// reproduces the permissive legacy behavior where any jump is accepted.
	EnforceStageOrder bool `envconfig:"SPOOL_ENFORCE_STAGE_ORDER" default:"true"`
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
