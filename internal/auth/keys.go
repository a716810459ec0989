package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Both token formats use a 256-bit symmetric key.
	keyLength    = 32
	keyHexLength = 64

	keyFileName = "auth.key"
)

// LoadOrGenerateKey loads the signing key from <dir>/auth.key, generating and saving
// a new one on first start. The file holds the key hex-encoded.
func LoadOrGenerateKey(dir string) ([]byte, error) {
	keyPath := filepath.Join(dir, keyFileName)

	//#nosec G304 -- key path is derived from the configured data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}

		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
		}
		return key, nil
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}

	return key, nil
}

// ResolveKey turns the configured secret into a 32-byte key.
// An empty secret falls back to the key file in dir. A 64-character hex secret is decoded;
// any other string is hashed with SHA-256 so operators can use a passphrase.
func ResolveKey(secret, dir string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return LoadOrGenerateKey(dir)
	}

	if len(secret) == keyHexLength {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}

	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}
