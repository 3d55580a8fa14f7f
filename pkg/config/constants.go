package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "MTG"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "MTG_APP_ENV"
	EnvPort       = "MTG_APP_PORT"
	EnvDBDSN      = "MTG_DB_DSN"
	EnvDBHost     = "MTG_DB_HOST"
	EnvDBUser     = "MTG_DB_USER"
	EnvDBName     = "MTG_DB_NAME"
	EnvRedisURL   = "MTG_REDIS_URL"
	EnvJWTSecret  = "MTG_JWT_SECRET"
	EnvJWTIssuer  = "MTG_JWT_ISSUER"
	EnvJWTExpMins = "MTG_JWT_EXPIRATION_MINUTES"
	EnvGCPProject = "MTG_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
