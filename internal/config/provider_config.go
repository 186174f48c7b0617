package config

import "strings"

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetClientID() string {
	return GetEnv("CLIENT_ID", "demo-client")
}

func (Provider) GetProviderBaseURL() string {
	return GetEnv("PROVIDER_BASE_URL", "http://localhost:9000")
}

func (Provider) GetLoginBaseURL() string {
	return GetEnv("LOGIN_BASE_URL", "http://localhost:9000")
}

func (Provider) GetRedirectURI() string {
	return GetEnv("REDIRECT_URI", "http://localhost:8080/callback")
}

func (Provider) GetHostOrigin() string {
	return GetEnv("HOST_ORIGIN", "http://localhost:8080")
}

func (Provider) GetScopes() []string {
	scopes := GetEnv("SCOPES", "openid email profile")
	return strings.Fields(scopes)
}
