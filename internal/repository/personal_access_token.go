package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"hub3-slips/internal/domain"
)

const userTokenableType = "user"

type PersonalAccessTokenRepository struct {
	db *sql.DB
}

func NewPersonalAccessTokenRepository(db *sql.DB) *PersonalAccessTokenRepository {
	return &PersonalAccessTokenRepository{db: db}
}

// splitToken splits an "<id>|<secret>" token. Tokens without an id prefix
// are returned whole.
func splitToken(plainToken string) (*int64, string) {
	idx := strings.Index(plainToken, "|")
	if idx <= 0 {
		return nil, plainToken
	}
	id, err := strconv.ParseInt(plainToken[:idx], 10, 64)
	if err != nil {
		return nil, plainToken[idx+1:]
	}
	return &id, plainToken[idx+1:]
}

func hashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func (r *PersonalAccessTokenRepository) FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	tokenID, secret := splitToken(plainToken)
	hash := hashToken(secret)

	var pat domain.PersonalAccessToken

	if tokenID != nil {
		query := `
			SELECT id, token, tokenable_id, abilities, expires_at
			FROM personal_access_tokens
			WHERE id = $1
			  AND tokenable_type = $2
			  AND (expires_at IS NULL OR expires_at > $3)
		`
		err := r.db.QueryRowContext(ctx, query, *tokenID, userTokenableType, time.Now()).Scan(
			&pat.ID,
			&pat.TokenHash,
			&pat.UserID,
			&pat.Abilities,
			&pat.ExpiresAt,
		)
		switch {
		case err == nil && pat.TokenHash == hash:
			return &pat, nil
		case err == nil:
			log.Printf("[TOKEN] hash mismatch for token id=%d", pat.ID)
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("lookup token %d: %w", *tokenID, err)
		}
	}

	query := `
		SELECT id, token, tokenable_id, abilities, expires_at
		FROM personal_access_tokens
		WHERE tokenable_type = $1
		  AND token = $2
		  AND (expires_at IS NULL OR expires_at > $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRowContext(ctx, query, userTokenableType, hash, time.Now()).Scan(
		&pat.ID,
		&pat.TokenHash,
		&pat.UserID,
		&pat.Abilities,
		&pat.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("token not found")
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	return &pat, nil
}
