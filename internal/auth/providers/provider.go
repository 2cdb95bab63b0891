// Package providers turns push authentication settings into go-git
// transport credentials.
package providers

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// AuthProvider builds credentials for one authentication type.
type AuthProvider interface {
	Type() config.AuthType

	// CreateAuth returns nil, nil when the remote needs no credentials.
	CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error)

	ValidateConfig(authCfg *config.AuthConfig) error
}

// Registry maps authentication types to their providers.
type Registry struct {
	providers map[config.AuthType]AuthProvider
}

// NewRegistry returns a registry holding the none, ssh, token and basic providers.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[config.AuthType]AuthProvider)}
	r.Register(NoneProvider{})
	r.Register(SSHProvider{})
	r.Register(TokenProvider{})
	r.Register(BasicProvider{})
	return r
}

func (r *Registry) Register(p AuthProvider) {
	r.providers[p.Type()] = p
}

// CreateAuth validates authCfg and builds its credentials. A nil or empty
// config means no authentication.
func (r *Registry) CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	if authCfg.IsZero() {
		return nil, nil
	}

	p, ok := r.providers[authCfg.Type]
	if !ok {
		return nil, errors.AuthError("unsupported authentication type").
			WithContext("type", string(authCfg.Type)).
			Fatal().
			Build()
	}
	if err := p.ValidateConfig(authCfg); err != nil {
		return nil, errors.AuthError("invalid authentication configuration").
			WithCause(err).
			WithContext("type", string(authCfg.Type)).
			Fatal().
			Build()
	}
	method, err := p.CreateAuth(authCfg)
	if err != nil {
		return nil, errors.AuthError("failed to create authentication").
			WithCause(err).
			WithContext("type", string(authCfg.Type)).
			Build()
	}
	return method, nil
}
