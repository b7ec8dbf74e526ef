package remote

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// sshSigner authenticates HTTP requests by signing a per-request challenge
// with the user's SSH private key. The server verifies the signature against
// the presented public key and its own authorization list.
type sshSigner struct {
	signer    ssh.Signer
	publicB64 string
}

func newSSHSigner(keyPath string) (*sshSigner, error) {
	resolved, err := resolveKeyPath(keyPath)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read ssh key %q: %w", resolved, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %q: %w", resolved, err)
	}
	return &sshSigner{
		signer:    signer,
		publicB64: base64.StdEncoding.EncodeToString(signer.PublicKey().Marshal()),
	}, nil
}

// authorize signs "method\npath\ntimestamp" so a captured request cannot be
// replayed against a different endpoint.
func (s *sshSigner) authorize(req *http.Request) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	payload := req.Method + "\n" + req.URL.Path + "\n" + ts

	sig, err := s.signer.Sign(rand.Reader, []byte(payload))
	if err != nil {
		return fmt.Errorf("ssh sign request: %w", err)
	}

	req.Header.Set("X-Pocket-Auth", "ssh-v1")
	req.Header.Set("X-Pocket-Timestamp", ts)
	req.Header.Set("X-Pocket-Public-Key", s.publicB64)
	req.Header.Set("X-Pocket-Signature-Format", sig.Format)
	req.Header.Set("X-Pocket-Signature", base64.StdEncoding.EncodeToString(sig.Blob))
	return nil
}

func resolveKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		if strings.HasPrefix(path, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			path = filepath.Join(home, path[2:])
		}
		return filepath.Abs(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	for _, candidate := range []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	} {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no ssh key configured and no default key in ~/.ssh")
}
