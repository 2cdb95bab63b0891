// Package auth resolves git push credentials.
package auth

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/ncms/internal/auth/providers"
	"git.home.luguber.info/inful/ncms/internal/config"
)

var defaultRegistry = providers.NewRegistry()

// CreateAuth builds go-git credentials for authCfg using the standard providers.
func CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	return defaultRegistry.CreateAuth(authCfg)
}
