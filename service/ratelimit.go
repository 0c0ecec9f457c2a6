package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"skeb-gate-service/conf"
	"skeb-gate-service/domain"
)

type WindowRepo interface {
	Increment(ctx context.Context, identity string, window time.Duration) (int, error)
}

type RateLimit struct {
	repo        WindowRepo
	maxRequests int
	window      time.Duration
}

func NewRateLimit(repo WindowRepo, config conf.RateLimit) RateLimit {
	return RateLimit{
		repo:        repo,
		maxRequests: config.MaxRequests,
		window:      time.Duration(config.WindowInSec) * time.Second,
	}
}

func (s RateLimit) Allow(ctx context.Context, identity string) (*domain.RateLimitResult, error) {
	count, err := s.repo.Increment(ctx, identity, s.window)
	if err != nil {
		return nil, errors.WithMessage(err, "increment window")
	}

	remaining := s.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return &domain.RateLimitResult{
		Allow:     count <= s.maxRequests,
		Remaining: remaining,
	}, nil
}
