package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/ncms/internal/config"
)

// SSHProvider loads a private key file. An empty key path means ~/.ssh/id_rsa.
type SSHProvider struct{}

func (SSHProvider) Type() config.AuthType { return config.AuthTypeSSH }

func (SSHProvider) CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	keyPath := sshKeyPath(authCfg)
	keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
	}
	return keys, nil
}

func (SSHProvider) ValidateConfig(authCfg *config.AuthConfig) error {
	keyPath := sshKeyPath(authCfg)
	if _, err := os.Stat(keyPath); err != nil {
		return fmt.Errorf("SSH key file %s: %w", keyPath, err)
	}
	return nil
}

func sshKeyPath(authCfg *config.AuthConfig) string {
	if authCfg.KeyPath != "" {
		return authCfg.KeyPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ssh", "id_rsa")
}
