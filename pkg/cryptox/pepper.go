package cryptox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper reads the pepper from path, generating and persisting one when
// the file does not exist. An empty path installs a random in-memory pepper,
// which means hashes do not survive a restart.
func LoadPepper(path string) error {
	var (
		p   string
		err error
	)
	if path == "" {
		p, err = GenerateToken(keyLength)
	} else {
		p, err = loadOrGeneratePepper(path)
	}
	if err != nil {
		return err
	}

	pepperMu.Lock()
	pepper = p
	pepperMu.Unlock()
	return nil
}

// GetPepper returns the active pepper. If none was loaded an in-memory one is
// generated on first use.
func GetPepper() string {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper == "" {
		// A failing CSPRNG is not recoverable.
		pepper = MustGenerateToken(keyLength)
	}
	return pepper
}

func loadOrGeneratePepper(path string) (string, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		p := strings.TrimSpace(string(raw))
		if p == "" {
			return "", errors.New("cryptox: pepper file is empty")
		}
		return p, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	p, err := GenerateToken(keyLength)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(p), 0600); err != nil {
		return "", err
	}
	return p, nil
}

// MustGenerateToken is like GenerateToken but panics on error.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic("cryptox: " + err.Error())
	}
	return token
}
