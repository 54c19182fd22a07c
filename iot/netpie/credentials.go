package netpie

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CredentialName is the name under which hosts usually store the device credential
const CredentialName = "netpieApi"

// ErrUnknownCredential is returned by a CredentialStore for names it does not know
var ErrUnknownCredential = errors.New("unknown credential")

// Credential is a NETPIE device credential. The token is a secret and must
// never be logged.
type Credential struct {
	ClientID string `json:"clientId" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

// Authorization returns the value of the Authorization header for this credential
func (c Credential) Authorization() string {
	return "Device " + c.ClientID + ":" + c.Token
}

// String hides the token
func (c Credential) String() string {
	return "Device " + c.ClientID + ":***"
}

// CredentialStore resolves named credentials
type CredentialStore interface {
	Credential(ctx context.Context, name string) (Credential, error)
}

// StaticCredentials is a CredentialStore backed by a fixed map
type StaticCredentials map[string]Credential

var _ CredentialStore = StaticCredentials(nil)

// Credential returns the credential stored under name
func (s StaticCredentials) Credential(ctx context.Context, name string) (Credential, error) {
	credential, ok := s[name]
	if !ok {
		return Credential{}, fmt.Errorf("%w '%s'", ErrUnknownCredential, name)
	}
	return credential, nil
}

var credentialValidator = validator.New()

// Validate checks that client ID and token are present
func (c Credential) Validate() error {
	if err := credentialValidator.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return fmt.Errorf("credential %s is required", fieldErrors[0].Field())
		}
		return err
	}
	return nil
}
