package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for unannotated fields.
const EnvPrefix = "POOJAKIT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv    = "POOJAKIT_APP_ENV"
	EnvPort      = "POOJAKIT_APP_PORT"
	EnvDBDSN     = "POOJAKIT_DB_DSN"
	EnvDBHost    = "POOJAKIT_DB_HOST"
	EnvDBUser    = "POOJAKIT_DB_USER"
	EnvDBName    = "POOJAKIT_DB_NAME"
	EnvJWTSecret = "POOJAKIT_JWT_SECRET"
	EnvRedisURL  = "POOJAKIT_REDIS_URL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
