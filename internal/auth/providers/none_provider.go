package providers

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/ncms/internal/config"
)

// NoneProvider is used for remotes that accept anonymous pushes, such as
// local bare repositories.
type NoneProvider struct{}

func (NoneProvider) Type() config.AuthType { return config.AuthTypeNone }

func (NoneProvider) CreateAuth(*config.AuthConfig) (transport.AuthMethod, error) { return nil, nil }

func (NoneProvider) ValidateConfig(*config.AuthConfig) error { return nil }
