package providers

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/ncms/internal/config"
)

// TokenProvider sends an access token as HTTP basic auth. The username
// defaults to "token", which most hosting services accept.
type TokenProvider struct{}

func (TokenProvider) Type() config.AuthType { return config.AuthTypeToken }

func (TokenProvider) CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	user := authCfg.Username
	if user == "" {
		user = "token"
	}
	return &http.BasicAuth{Username: user, Password: authCfg.Token}, nil
}

func (TokenProvider) ValidateConfig(authCfg *config.AuthConfig) error {
	if authCfg.Token == "" {
		return fmt.Errorf("token authentication requires a token")
	}
	return nil
}
