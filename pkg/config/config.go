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
	Notify        NotifyConfig
	Bootstrap     BootstrapConfig
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
	Env          string `envconfig:"POOJAKIT_APP_ENV" default:"dev"`
	Port         string `envconfig:"POOJAKIT_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"POOJAKIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POOJAKIT_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"POOJAKIT_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"POOJAKIT_DB_DSN"`

	Host     string `envconfig:"POOJAKIT_DB_HOST"`
	Port     int    `envconfig:"POOJAKIT_DB_PORT" default:"5432"`
	User     string `envconfig:"POOJAKIT_DB_USER"`
	Password string `envconfig:"POOJAKIT_DB_PASSWORD"`
	Name     string `envconfig:"POOJAKIT_DB_NAME"`
	SSLMode  string `envconfig:"POOJAKIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POOJAKIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POOJAKIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POOJAKIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POOJAKIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POOJAKIT_REDIS_URL"`
	Address      string        `envconfig:"POOJAKIT_REDIS_ADDR"`
	Password     string        `envconfig:"POOJAKIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"POOJAKIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POOJAKIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POOJAKIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POOJAKIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POOJAKIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POOJAKIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The API
// degrades to unthrottled auth endpoints when redis is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret         string `envconfig:"POOJAKIT_JWT_SECRET" required:"true"`
	Issuer         string `envconfig:"POOJAKIT_JWT_ISSUER" default:"poojakit"`
	ExpirationDays int    `envconfig:"POOJAKIT_JWT_EXPIRATION_DAYS" default:"7"`
}

// TTL returns the session token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(j.ExpirationDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POOJAKIT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POOJAKIT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POOJAKIT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POOJAKIT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POOJAKIT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit   int           `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit      int           `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow      time.Duration `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit  int           `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit     int           `envconfig:"POOJAKIT_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type NotifyConfig struct {
	// FormURL is an opaque form-submission endpoint (e.g. a Formspree form).
	// An empty value disables the relay.
	FormURL string        `envconfig:"POOJAKIT_NOTIFY_FORM_URL"`
	Timeout time.Duration `envconfig:"POOJAKIT_NOTIFY_TIMEOUT" default:"10s"`
}

type BootstrapConfig struct {
	// AdminEmail/AdminPassword seed the first-run admin account. These are
	// deployment-time secrets and MUST be rotated before production use.
	AdminEmail    string `envconfig:"POOJAKIT_BOOTSTRAP_ADMIN_EMAIL" default:"admin@poojakit.local"`
	AdminPassword string `envconfig:"POOJAKIT_BOOTSTRAP_ADMIN_PASSWORD" default:"admin-1234"`
	SeedProducts  bool   `envconfig:"POOJAKIT_BOOTSTRAP_SEED_PRODUCTS" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discrete[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
