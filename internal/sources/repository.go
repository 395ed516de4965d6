// Package sources manages the API keys that identify where lead
// submissions come from. Every intake request authenticates with a key,
// and the key's name becomes the lead's source label.
package sources

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAPIKeyNotFound = errors.New("intake API key not found")

// APIKey represents an intake API key stored in the database.
type APIKey struct {
	ID             uuid.UUID
	Name           string
	KeyHash        string
	KeyPrefix      string
	AllowedDomains []string
	IsActive       bool
	LastUsedAt     *time.Time
	CreatedAt      time.Time
}

// Repository provides data access for intake API keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new sources repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key
// and its hash. The plaintext key is returned only once; only the hash is
// stored.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}
	plaintext = "src_" + hex.EncodeToString(bytes)
	h := sha256.Sum256([]byte(plaintext))
	hash = hex.EncodeToString(h[:])
	prefix = plaintext[:12] // "src_" + 8 hex chars
	return plaintext, hash, prefix, nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

const apiKeyColumns = `id, name, key_hash, key_prefix, allowed_domains, is_active, last_used_at, created_at`

func scanAPIKey(row pgx.Row) (APIKey, error) {
	var key APIKey
	err := row.Scan(
		&key.ID,
		&key.Name,
		&key.KeyHash,
		&key.KeyPrefix,
		&key.AllowedDomains,
		&key.IsActive,
		&key.LastUsedAt,
		&key.CreatedAt,
	)
	return key, err
}

// Create stores a new API key record.
func (r *Repository) Create(ctx context.Context, name, keyHash, keyPrefix string, allowedDomains []string) (APIKey, error) {
	query := `
		INSERT INTO intake_api_keys (name, key_hash, key_prefix, allowed_domains)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + apiKeyColumns

	return scanAPIKey(r.pool.QueryRow(ctx, query, name, keyHash, keyPrefix, allowedDomains))
}

// GetByHash retrieves an active API key by its hash.
func (r *Repository) GetByHash(ctx context.Context, keyHash string) (APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM intake_api_keys WHERE key_hash = $1 AND is_active = true`

	key, err := scanAPIKey(r.pool.QueryRow(ctx, query, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	return key, err
}

// List returns all API keys, newest first.
func (r *Repository) List(ctx context.Context) ([]APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM intake_api_keys ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Revoke deactivates an API key.
func (r *Repository) Revoke(ctx context.Context, keyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE intake_api_keys SET is_active = false WHERE id = $1
	`, keyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// TouchLastUsed records that the key authenticated a request.
func (r *Repository) TouchLastUsed(ctx context.Context, keyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE intake_api_keys SET last_used_at = now() WHERE id = $1
	`, keyID)
	return err
}
