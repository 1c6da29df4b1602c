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

	"github.com/acopio/formflow/pkg/domain"
	"github.com/acopio/formflow/pkg/ports"
)

// envelopeID marks a stored document as an opaque encrypted envelope.
const envelopeID = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SchemaStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts stored
// schema documents using AES-GCM (envelope encryption). The backend only
// ever sees an opaque single-instruction envelope.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SchemaStore) ports.SchemaStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) SaveSchema(ctx context.Context, formID string, doc *domain.Document) (string, error) {
	plainText, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt schema: %w", err)
	}

	// The envelope is a structurally valid document so backends that
	// validate before writing still accept it, but it carries nothing of
	// the real graph.
	envelope := &domain.Document{
		InstructionStart: envelopeID,
		ModuleID:         doc.ModuleID,
		Instructions: []domain.Instruction{
			{
				ID: envelopeID,
				Inputs: []domain.SchemaInput{
					{
						Name:  "payload",
						Type:  domain.InputText,
						Value: base64.StdEncoding.EncodeToString(ciphertext),
					},
				},
			},
		},
	}

	return m.next.SaveSchema(ctx, formID, envelope)
}

func (m *encryptionMiddleware) LoadSchema(ctx context.Context, formID string) (*domain.Document, error) {
	envelope, err := m.next.LoadSchema(ctx, formID)
	if err != nil {
		return nil, err
	}

	// Fail secure: with encryption configured, a plain document in the
	// backend is treated as corrupt rather than passed through.
	if len(envelope.Instructions) != 1 || envelope.Instructions[0].ID != envelopeID {
		return nil, errors.New("stored schema is missing the encrypted envelope")
	}
	in := envelope.Instructions[0]
	if len(in.Inputs) != 1 {
		return nil, errors.New("stored schema envelope has no payload")
	}
	encoded, ok := in.Inputs[0].Value.(string)
	if !ok {
		return nil, errors.New("stored schema envelope payload is not a string")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt schema: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(plainText, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted schema: %w", err)
	}
	return &doc, nil
}

func (m *encryptionMiddleware) DeleteSchema(ctx context.Context, formID string) error {
	return m.next.DeleteSchema(ctx, formID)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, payload := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, payload, nil)
}

// decryptWithRotation tries the active key first, then each fallback key
// in order. This keeps old envelopes readable across a key rotation.
func decryptWithRotation(ciphertext []byte, active []byte, fallbacks [][]byte) ([]byte, error) {
	plain, err := decrypt(ciphertext, active)
	if err == nil {
		return plain, nil
	}

	for _, key := range fallbacks {
		if plain, ferr := decrypt(ciphertext, key); ferr == nil {
			return plain, nil
		}
	}
	return nil, err
}
