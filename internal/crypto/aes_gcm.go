package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidKeySize       = errors.New("invalid AES key size (must be 16, 24, or 32 bytes)")
	ErrInvalidCiphertext    = errors.New("ciphertext too short to contain nonce")
	ErrAuthenticationFailed = errors.New("ciphertext authentication failed")
	ErrSealedWithoutKey     = errors.New("config is encrypted but no encryption key is configured")
)

// NewAESGCM creates a new AES-GCM cipher block based on the key size.
func NewAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeySize, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}

// Encrypt encrypts plaintext using AES-GCM.
// It generates a random nonce and prepends it to the returned ciphertext.
func Encrypt(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertextWithNonce (which includes the prepended nonce) using AES-GCM.
func Decrypt(aead cipher.AEAD, ciphertextWithNonce []byte) ([]byte, error) {
	nonceSize := aead.NonceSize()
	if len(ciphertextWithNonce) < nonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce := ciphertextWithNonce[:nonceSize]
	ciphertext := ciphertextWithNonce[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	return plaintext, nil
}

// sealedConfig is the stored form of an encrypted connector config.
type sealedConfig struct {
	Encrypted string `json:"encrypted"`
}

// ConfigSealer encrypts connector configs before they reach the store.
// A sealer with a nil AEAD passes configs through unchanged.
type ConfigSealer struct {
	aead cipher.AEAD
}

// NewConfigSealer returns a sealer for key; an empty key disables encryption.
func NewConfigSealer(key []byte) (*ConfigSealer, error) {
	if len(key) == 0 {
		return &ConfigSealer{}, nil
	}
	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return &ConfigSealer{aead: aead}, nil
}

// Enabled reports whether configs are encrypted at rest.
func (s *ConfigSealer) Enabled() bool {
	return s != nil && s.aead != nil
}

// Seal returns the JSON to store for config.
func (s *ConfigSealer) Seal(config json.RawMessage) (json.RawMessage, error) {
	if !s.Enabled() {
		return config, nil
	}
	ciphertext, err := Encrypt(s.aead, config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sealedConfig{Encrypted: base64.StdEncoding.EncodeToString(ciphertext)})
}

// Open reverses Seal. Plain configs stored before a key was configured are returned as-is.
func (s *ConfigSealer) Open(stored json.RawMessage) (json.RawMessage, error) {
	var wrapper sealedConfig
	if err := json.Unmarshal(stored, &wrapper); err != nil || wrapper.Encrypted == "" {
		return stored, nil
	}
	if !s.Enabled() {
		return nil, ErrSealedWithoutKey
	}
	ciphertext, err := base64.StdEncoding.DecodeString(wrapper.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 config: %w", err)
	}
	return Decrypt(s.aead, ciphertext)
}
