package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so it
// stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "QRMENU_DB_DSN"
	EnvDBHost = "QRMENU_DB_HOST"
	EnvDBUser = "QRMENU_DB_USER"
	EnvDBName = "QRMENU_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
