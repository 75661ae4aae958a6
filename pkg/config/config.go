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
	FeatureFlags  FeatureFlagsConfig
	Booking       BookingConfig
	Bootstrap     BootstrapConfig
	Sheets        SheetsConfig
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
	Env          string `envconfig:"KERBSIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"KERBSIDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KERBSIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KERBSIDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KERBSIDE_DB_DSN"`
	Driver string `envconfig:"KERBSIDE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KERBSIDE_DB_HOST"`
	LegacyPort     int    `envconfig:"KERBSIDE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KERBSIDE_DB_USER"`
	LegacyPassword string `envconfig:"KERBSIDE_DB_PASSWORD"`
	LegacyName     string `envconfig:"KERBSIDE_DB_NAME"`
	LegacySSLMode  string `envconfig:"KERBSIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KERBSIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KERBSIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KERBSIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KERBSIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KERBSIDE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KERBSIDE_REDIS_ADDR"`
	Password     string        `envconfig:"KERBSIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"KERBSIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KERBSIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KERBSIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KERBSIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KERBSIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KERBSIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KERBSIDE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KERBSIDE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KERBSIDE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KERBSIDE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KERBSIDE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KERBSIDE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KERBSIDE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KERBSIDE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KERBSIDE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KERBSIDE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KERBSIDE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KERBSIDE_AUTO_MIGRATE" default:"false"`
}

// BookingConfig tunes reservation timing rules.
//
// GraceWindow is how far in the past a rental start may lie and still be
// accepted. CancelLockout is the minimum lead time before a rental start
// during which customers may no longer cancel.
type BookingConfig struct {
	GraceWindow     time.Duration `envconfig:"KERBSIDE_BOOKING_GRACE_WINDOW" default:"5m"`
	CancelLockout   time.Duration `envconfig:"KERBSIDE_BOOKING_CANCEL_LOCKOUT" default:"1h"`
	RestockOnCancel bool          `envconfig:"KERBSIDE_BOOKING_RESTOCK_ON_CANCEL" default:"true"`
}

// BootstrapConfig seeds the initial admin account on startup. Seeding is
// skipped unless both values are set.
type BootstrapConfig struct {
	AdminEmail    string `envconfig:"KERBSIDE_BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"KERBSIDE_BOOTSTRAP_ADMIN_PASSWORD"`
}

type SheetsConfig struct {
	SpreadsheetID   string `envconfig:"KERBSIDE_SHEETS_SPREADSHEET_ID"`
	CredentialsJSON string `envconfig:"KERBSIDE_SHEETS_CREDENTIALS_JSON"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"KERBSIDE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"KERBSIDE_SENDGRID_FROM_EMAIL"`
	AdminEmail  string `envconfig:"KERBSIDE_SENDGRID_ADMIN_EMAIL"`
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
