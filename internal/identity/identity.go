package identity

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reelkeep/reelkeep/internal/domain"
)

const (
	idFileName = "user_id"
	idLength   = 12
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Provider stores the anonymous per-device user id in a file under the data
// directory. The id scopes every record store operation.
type Provider struct {
	dir string
}

func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// GetOrCreateUserID returns the stored id, generating one on first use.
// Creation uses O_EXCL so two processes racing on first run converge on a
// single id: the loser re-reads the winner's file.
func (p *Provider) GetOrCreateUserID() (string, error) {
	if p.dir == "" {
		return "", fmt.Errorf("%w: no data directory configured", domain.ErrIdentityUnavailable)
	}

	path := filepath.Join(p.dir, idFileName)

	if id, err := readID(path); err == nil {
		return id, nil
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}

	id, err := randomID(idLength)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			// Another process won the race; use its id
			if id, err := readID(path); err == nil {
				return id, nil
			}
		}
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	defer f.Close()

	if _, err := f.WriteString(id + "\n"); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	return id, nil
}

// Clear removes the stored id so the next call mints a fresh identity.
func (p *Provider) Clear() error {
	if p.dir == "" {
		return nil
	}
	err := os.Remove(filepath.Join(p.dir, idFileName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func readID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("empty id file")
	}
	return id, nil
}

// randomID draws n characters from a 36-symbol alphabet, giving 36^n
// possible ids.
func randomID(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
	}
	return b.String(), nil
}
