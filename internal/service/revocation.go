package service

import (
	"context"
	"time"

	"github.com/looking-sharp/User-Authentication-Microservice/internal/repository"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/database"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/metrics"
)

// RevocationCache is an optional read-through layer in front of the store.
// The store stays authoritative; only positive results are cached.
type RevocationCache interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
}

type RevocationService struct {
	repo    repository.RevokedTokenRepository
	cache   RevocationCache
	metrics *metrics.Metrics
	now     func() time.Time
}

type RevocationOption func(*RevocationService)

func WithRevocationCache(cache RevocationCache) RevocationOption {
	return func(s *RevocationService) {
		s.cache = cache
	}
}

func WithRevocationMetrics(m *metrics.Metrics) RevocationOption {
	return func(s *RevocationService) {
		s.metrics = m
	}
}

func WithRevocationClock(now func() time.Time) RevocationOption {
	return func(s *RevocationService) {
		s.now = now
	}
}

func NewRevocationService(repo repository.RevokedTokenRepository, opts ...RevocationOption) *RevocationService {
	s := &RevocationService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revoke records jti until expiresAt. Revoking twice is not an error; created
// reports whether this call inserted the row. Inside a transaction the cache
// is not touched; call Remember once the transaction has committed.
func (s *RevocationService) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Revoke")

	created, err := s.repo.Insert(ctx, jti, expiresAt)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to record revocation").
			Err(err).
			Log()
		return false, err
	}

	logger.DebugWithContext(ctx, "Revocation recorded").
		Bool("created", created).
		Time("expires_at", expiresAt).
		Log()

	return created, nil
}

// Remember pushes a committed revocation into the cache
func (s *RevocationService) Remember(ctx context.Context, jti string, expiresAt time.Time) {
	if s.cache == nil {
		return
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}

	if err := s.cache.MarkRevoked(ctx, jti, ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to cache revocation").
			Err(err).
			Log()
	}
}

// IsRevoked prunes expired rows, then asks the cache, then the store
func (s *RevocationService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "IsRevoked")

	s.Sweep(ctx)

	if s.cache != nil {
		revoked, err := s.cache.IsRevoked(ctx, jti)
		switch {
		case err != nil:
			s.metrics.RecordCache("error")
			logger.WarnWithContext(ctx, "Revocation cache unavailable, using store").
				Err(err).
				Log()
		case revoked:
			s.metrics.RecordCache("hit")
			return true, nil
		default:
			s.metrics.RecordCache("miss")
		}
	}

	row, err := s.repo.Find(ctx, jti)
	if err != nil {
		if database.IsNotFound(err) {
			return false, nil
		}
		logger.ErrorWithContext(ctx, "Failed to check revocation").
			Err(err).
			Log()
		return false, err
	}

	s.Remember(ctx, jti, row.ExpiresAt)
	return true, nil
}

// Prune deletes revocations whose expires_at is at or before now
func (s *RevocationService) Prune(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	s.metrics.AddPruned(deleted)
	return deleted, nil
}

// Sweep prunes with the current time. Failures are logged and otherwise ignored.
func (s *RevocationService) Sweep(ctx context.Context) {
	deleted, err := s.Prune(ctx, s.now())
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to prune expired revocations").
			Err(err).
			Log()
		return
	}

	if deleted > 0 {
		logger.DebugWithContext(ctx, "Pruned expired revocations").
			Int64("deleted", deleted).
			Log()
	}
}
