package publish

import (
	"fmt"
	"os"
	"path/filepath"

	xssh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// loadPrivateKeySigner reads an OpenSSH/PEM private key file without a
// passphrase and returns a signer for it.
func loadPrivateKeySigner(keyPath string) (xssh.Signer, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := xssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return signer, nil
}

// knownHostsCallback returns a strict host key callback backed by the given
// known_hosts file, creating an empty file first if needed.
func knownHostsCallback(path string) (xssh.HostKeyCallback, error) {
	if path == "" {
		return nil, fmt.Errorf("known_hosts path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("mkdir known_hosts dir: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(""), 0600); err != nil {
			return nil, fmt.Errorf("create known_hosts: %w", err)
		}
	}
	return knownhosts.New(path)
}
