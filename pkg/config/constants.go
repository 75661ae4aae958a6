package config

// EnvPrefix is the envconfig prefix shared by all application settings.
const EnvPrefix = "KERBSIDE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "KERBSIDE_DB_DSN"
	EnvDBHost = "KERBSIDE_DB_HOST"
	EnvDBUser = "KERBSIDE_DB_USER"
	EnvDBName = "KERBSIDE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
