package providers

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/ncms/internal/config"
)

type BasicProvider struct{}

func (BasicProvider) Type() config.AuthType { return config.AuthTypeBasic }

func (BasicProvider) CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	return &http.BasicAuth{Username: authCfg.Username, Password: authCfg.Password}, nil
}

func (BasicProvider) ValidateConfig(authCfg *config.AuthConfig) error {
	if authCfg.Username == "" {
		return fmt.Errorf("basic authentication requires a username")
	}
	if authCfg.Password == "" {
		return fmt.Errorf("basic authentication requires a password")
	}
	return nil
}
