package middleware

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/hbnb/pkg/ports"
)

// EnvelopeField holds the sealed object inside a persisted record.
const EnvelopeField = "__encrypted__"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	ErrKeySize         = fmt.Errorf("encryption key must be %d bytes (AES-256)", KeySize)
	ErrMissingEnvelope = errors.New("record is missing encrypted data envelope")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a record.
	// This enables key rotation: the next Save re-seals everything with ActiveKey.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.Backend
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals every object with AES-GCM.
// The persisted record keeps no attribute in clear text, only the envelope.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, ErrKeySize
		}
	}
	return func(next ports.Backend) ports.Backend {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, snapshot ports.Snapshot) error {
	sealed := make(ports.Snapshot, len(snapshot))
	for key, record := range snapshot {
		plainText, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal object %s: %w", key, err)
		}

		ciphertext, err := encrypt(plainText, m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt object %s: %w", key, err)
		}

		sealed[key] = map[string]any{
			EnvelopeField: base64.StdEncoding.EncodeToString(ciphertext),
		}
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context) (ports.Snapshot, error) {
	sealed, err := m.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap := make(ports.Snapshot, len(sealed))
	for key, envelope := range sealed {
		encryptedStr, ok := envelope[EnvelopeField].(string)
		if !ok {
			// Plain records are refused once encryption is configured.
			return nil, fmt.Errorf("%w: %s", ErrMissingEnvelope, key)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64 of %s: %w", key, err)
		}

		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt object %s: %w", key, err)
		}

		var record map[string]any
		dec := json.NewDecoder(bytes.NewReader(plainText))
		dec.UseNumber()
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decrypted object %s: %w", key, err)
		}
		snap[key] = record
	}
	return snap, nil
}

func (m *encryptionMiddleware) Close() error {
	return m.next.Close()
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
