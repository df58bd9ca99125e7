package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrEmptyMasterKey = errors.New("cryptox: master key file is empty")

// LoadMasterKey reads the master key material from path and derives the
// 32-byte AES-256 key used to seal signing keys at rest.
func LoadMasterKey(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("cryptox: read master key: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyMasterKey
	}

	hash := sha256.Sum256(data)
	return hash[:], nil
}

// SealKey encrypts a PEM-encoded private key with AES-256-GCM.
// The output format is: [12-byte nonce][encrypted data][16-byte auth tag]
func SealKey(master, pemData []byte) ([]byte, error) {
	gcm, err := newKeyAEAD(master)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	// gcm.Seal appends the ciphertext and auth tag to nonce
	return gcm.Seal(nonce, nonce, pemData, nil), nil
}

// OpenKey decrypts data sealed with SealKey.
func OpenKey(master, sealed []byte) ([]byte, error) {
	gcm, err := newKeyAEAD(master)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, errors.New("cryptox: sealed key too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("cryptox: open sealed key: %w", err)
	}
	return plaintext, nil
}

// LoadOrGenerateSealedEd25519Key is LoadOrGenerateEd25519Key for a key file
// sealed with master.
func LoadOrGenerateSealedEd25519Key(path string, master []byte) (ed25519.PrivateKey, error) {
	path = filepath.Clean(path)

	sealed, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		raw, err := GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		if sealed, err = SealKey(master, raw); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, sealed, 0600); err != nil {
			return nil, err
		}
		return ParseEd25519PrivateKey(raw)
	} else if err != nil {
		return nil, err
	}

	raw, err := OpenKey(master, sealed)
	if err != nil {
		return nil, err
	}
	return ParseEd25519PrivateKey(raw)
}

func newKeyAEAD(master []byte) (cipher.AEAD, error) {
	if len(master) != 32 {
		return nil, fmt.Errorf("cryptox: master key must be 32 bytes, got %d", len(master))
	}
	block, err := aes.NewCipher(master)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}
	return gcm, nil
}
