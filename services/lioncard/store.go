package lioncard

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"io"

	_ "modernc.org/sqlite"
)

// Credentials is the portal username/password pair. Secret, never logged.
type Credentials struct {
	Username string
	Password string
}

// CredentialStore persists the active credentials encrypted at rest
// with AES-256-GCM. One pair at most is stored at a time, a save
// replaces any previous pair.
type CredentialStore struct {
	db   *sql.DB
	aead cipher.AEAD
}

func NewCredentialStore(db *sql.DB, key []byte) (*CredentialStore, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{db: db, aead: aead}, nil
}

func (s *CredentialStore) seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *CredentialStore) open(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	nonceSize := s.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Save replaces any stored pair in a single statement, a reader never
// observes a partially written pair.
func (s *CredentialStore) Save(ctx context.Context, creds Credentials) error {
	username, err := s.seal(creds.Username)
	if err != nil {
		return err
	}
	password, err := s.seal(creds.Password)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO credentials (id, username, password) VALUES (0, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password`,
		username, password,
	)
	return err
}

// Load returns (nil, nil) when no credentials are stored.
func (s *CredentialStore) Load(ctx context.Context) (*Credentials, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT username, password FROM credentials WHERE id = 0`,
	)

	var username, password string
	err := row.Scan(&username, &password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	creds := Credentials{}
	creds.Username, err = s.open(username)
	if err != nil {
		return nil, fmt.Errorf("decrypt username: %w", err)
	}
	creds.Password, err = s.open(password)
	if err != nil {
		return nil, fmt.Errorf("decrypt password: %w", err)
	}
	return &creds, nil
}

// Clear removes the stored pair entirely. Clearing an empty store is
// a no-op.
func (s *CredentialStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = 0`)
	return err
}
