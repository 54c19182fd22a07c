package netpie

import (
	"github.com/relabs-tech/netpie/core/client"
)

// Config is the environment configuration shared by all entrypoints. Decode it
// with envdecode.
//
// use NETPIE_CLIENT_ID="..." NETPIE_TOKEN="..."
type Config struct {
	ClientID   string `env:"NETPIE_CLIENT_ID,required" description:"client ID of the NETPIE device"`
	Token      string `env:"NETPIE_TOKEN,required" description:"token of the NETPIE device"`
	Credential string `env:"NETPIE_CREDENTIAL,default=netpieApi" description:"the name hosts use for the device credential"`
	BaseURL    string `env:"NETPIE_BASE_URL,default=https://api.netpie.io/v2/device" description:"root of the NETPIE device API"`
	LogLevel   string `env:"LOG_LEVEL,default=info" description:"logrus log level"`
}

// Credentials returns a credential store holding the configured credential
func (c Config) Credentials() (StaticCredentials, error) {
	credential := Credential{ClientID: c.ClientID, Token: c.Token}
	if err := credential.Validate(); err != nil {
		return nil, err
	}
	name := c.Credential
	if name == "" {
		name = CredentialName
	}
	return StaticCredentials{name: credential}, nil
}

// NewExecutor returns an executor for the configured API and credential
func (c Config) NewExecutor() (*Executor, error) {
	credentials, err := c.Credentials()
	if err != nil {
		return nil, err
	}
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	dispatcher := NewAuthenticatedDispatcher(credentials, client.NewWithURL(baseURL))
	return NewExecutor(baseURL, dispatcher), nil
}
