// Package config supplies the demo application's environment-backed
// configuration.
package config

// Config is everything the demo host needs to run.
type Config interface {
	EnvConfig
	ProviderConfig
}

// EnvConfig covers the process-level settings.
type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

// ProviderConfig covers the auth provider wiring.
type ProviderConfig interface {
	GetClientID() string
	GetProviderBaseURL() string
	GetLoginBaseURL() string
	GetRedirectURI() string
	GetHostOrigin() string
	GetScopes() []string
}

type mainConfig struct {
	EnvVars
	Provider
}

func New() Config {
	return mainConfig{}
}
