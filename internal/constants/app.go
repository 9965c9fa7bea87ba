package constants

// Application Information
const (
	AppName     = "auth-microservice"
	AppVersion  = "1.0.0"
	ServiceName = "auth-microservice"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Cache Key Prefixes
const (
	CacheKeyPrefix  = "auth:"
	CacheKeyRevoked = CacheKeyPrefix + "revoked:"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)
