package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/ports"
)

// envelopeKey is the only lead key stored by the encryption middleware.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables key rotation without rewriting the journal.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.Journal
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals lead values with AES-GCM.
// Outcome, reason and timestamps stay readable for monitoring.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.Journal) ports.Journal {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Record(ctx context.Context, entry domain.JournalEntry) error {
	plainText, err := json.Marshal(entry.Lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt lead: %w", err)
	}

	entry.Lead = domain.LeadRecord{envelopeKey: base64.StdEncoding.EncodeToString(ciphertext)}
	return m.next.Record(ctx, entry)
}

func (m *encryptionMiddleware) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	entries, err := m.next.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		lead, err := m.open(entries[i].Lead)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entries[i].ID, err)
		}
		entries[i].Lead = lead
	}
	return entries, nil
}

func (m *encryptionMiddleware) open(envelope domain.LeadRecord) (domain.LeadRecord, error) {
	encoded, ok := envelope[envelopeKey]
	if !ok {
		// Fail secure: a plain entry in an encrypted journal is not expected.
		return nil, errors.New("lead is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt lead: %w", err)
	}

	var lead domain.LeadRecord
	if err := json.Unmarshal(plainText, &lead); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted lead: %w", err)
	}
	return lead, nil
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
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
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
