package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"catalog-backend/internal/domains/user/model"
	"catalog-backend/pkg/cache"
	"catalog-backend/pkg/database"
	"catalog-backend/pkg/logger"
)

const sessionCacheKeyPrefix = "session:"

// sessionEntry là value lưu dưới session:<hash>
// Revoked = true là tombstone ghi lúc logout, chặn read-through ghi lại username
type sessionEntry struct {
	Username string `json:"username,omitempty"`
	Revoked  bool   `json:"revoked,omitempty"`
}

// sessionRepository đọc qua Redis cache trước, miss thì query PostgreSQL
// Lỗi cache chỉ được log, không làm fail request
type sessionRepository struct {
	db       database.DB
	cache    cache.Cache
	cacheTTL time.Duration

	// token hash đã logout nhưng không ghi được tombstone (Redis lỗi)
	// entry cũ trong cache có thể còn sống tới hết TTL nên không được tin
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessionRepository(db database.DB, c cache.Cache, cacheTTL time.Duration) SessionRepository {
	return &sessionRepository{
		db:       db,
		cache:    c,
		cacheTTL: cacheTTL,
		revoked:  map[string]time.Time{},
	}
}

func sessionCacheKey(tokenHash string) string {
	return sessionCacheKeyPrefix + tokenHash
}

func (r *sessionRepository) CreateSession(ctx context.Context, username, tokenHash string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRow(ctx,
		`INSERT INTO sessions (username, token_hash) VALUES ($1, $2) RETURNING id, username, token_hash, created_at`,
		username, tokenHash,
	).Scan(&s.ID, &s.Username, &s.TokenHash, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &s, nil
}

func (r *sessionRepository) FindUsername(ctx context.Context, tokenHash string) (string, error) {
	if r.isRevokedLocally(tokenHash) {
		return "", model.ErrSessionNotFound
	}

	key := sessionCacheKey(tokenHash)

	var entry sessionEntry
	found, err := r.cache.Get(ctx, key, &entry)
	switch {
	case err != nil:
		logger.Warn("session cache read failed", map[string]interface{}{"error": err.Error()})
	case found && entry.Revoked:
		return "", model.ErrSessionNotFound
	case found && entry.Username != "":
		return entry.Username, nil
	}

	var username string
	err = r.db.QueryRow(ctx, `SELECT username FROM sessions WHERE token_hash = $1`, tokenHash).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find session: %w", err)
	}

	// SET NX: logout chen vào giữa SELECT và bước này thì tombstone đã có sẵn
	stored, err := r.cache.SetNX(ctx, key, sessionEntry{Username: username}, r.cacheTTL)
	if err != nil {
		logger.Warn("session cache write failed", map[string]interface{}{"error": err.Error()})
		return username, nil
	}
	if !stored {
		var current sessionEntry
		if found, err := r.cache.Get(ctx, key, &current); err == nil && found && current.Revoked {
			return "", model.ErrSessionNotFound
		}
	}
	return username, nil
}

// DeleteSession xóa row trước, sau đó ghi tombstone đè lên entry cũ trong cache
func (r *sessionRepository) DeleteSession(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if !deleted {
		return false, nil
	}

	// tombstone sống bằng cacheTTL, đủ lâu để phủ entry dương ghi trước đó
	key := sessionCacheKey(tokenHash)
	if err := r.cache.Set(ctx, key, sessionEntry{Revoked: true}, r.cacheTTL); err != nil {
		logger.Warn("session tombstone write failed", map[string]interface{}{"error": err.Error()})
		r.revokeLocally(tokenHash)
	}
	return true, nil
}

func (r *sessionRepository) revokeLocally(tokenHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for hash, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, hash)
		}
	}
	r.revoked[tokenHash] = now.Add(r.cacheTTL)
}

func (r *sessionRepository) isRevokedLocally(tokenHash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[tokenHash]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(r.revoked, tokenHash)
		return false
	}
	return true
}
