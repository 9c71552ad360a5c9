package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "acta"

type CacheService interface {
	// Rendered invoice documents. Invoices are immutable once created, so
	// entries only go away on delete or expiry.
	GetInvoicePDF(ctx context.Context, invoiceID uuid.UUID, revision string) ([]byte, error)
	SetInvoicePDF(ctx context.Context, invoiceID uuid.UUID, revision string, pdf []byte, ttl time.Duration) error
	// DeleteInvoicePDF drops every cached revision of the invoice.
	DeleteInvoicePDF(ctx context.Context, invoiceID uuid.UUID) error
	CountInvoicePDFs(ctx context.Context) (int64, error)

	// Token revocation
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeUserTokens(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	UserTokensRevokedAt(ctx context.Context, userID uuid.UUID) (time.Time, error)

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient accepts host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if password != "" {
			opts.Password = password
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), nil
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func pdfKey(invoiceID uuid.UUID, revision string) string {
	return fmt.Sprintf("%s:invoice_pdf:%s:%s", keyPrefix, invoiceID.String(), revision)
}

func revokedTokenKey(tokenID string) string {
	return fmt.Sprintf("%s:revoked:token:%s", keyPrefix, tokenID)
}

func revokedUserKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:revoked:user:%s", keyPrefix, userID.String())
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
}

// GetInvoicePDF returns nil, nil on a miss.
func (r *redisCacheService) GetInvoicePDF(ctx context.Context, invoiceID uuid.UUID, revision string) ([]byte, error) {
	data, err := r.client.Get(ctx, pdfKey(invoiceID, revision)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (r *redisCacheService) SetInvoicePDF(ctx context.Context, invoiceID uuid.UUID, revision string, pdf []byte, ttl time.Duration) error {
	return r.client.Set(ctx, pdfKey(invoiceID, revision), pdf, ttl).Err()
}

func (r *redisCacheService) DeleteInvoicePDF(ctx context.Context, invoiceID uuid.UUID) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pdfKey(invoiceID, "*"), 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *redisCacheService) CountInvoicePDFs(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+":invoice_pdf:*", 500).Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// RevokeToken keeps the marker only as long as the token could be used.
func (r *redisCacheService) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *redisCacheService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := r.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return exists > 0, nil
}

// RevokeUserTokens invalidates every token issued to the user up to now. The
// marker is stored in Unix milliseconds.
func (r *redisCacheService) RevokeUserTokens(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	return r.client.Set(ctx, revokedUserKey(userID), time.Now().UnixMilli(), ttl).Err()
}

// UserTokensRevokedAt returns the zero time when no marker exists.
func (r *redisCacheService) UserTokensRevokedAt(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	ts, err := r.client.Get(ctx, revokedUserKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.UnixMilli(ts), nil
}

// IsRateLimited counts one attempt and reports whether the limit is exceeded.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}
	return count > limit, nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
