// Package modelselector picks the AI provider and model for a user based
// on profile country and subscription tier.
package modelselector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/overmind-app/overmind/internal/lib/sl"
	"github.com/overmind-app/overmind/internal/models"
)

// Tier keys used in the priority table. FREE maps to basic.
const (
	TierKeyBasic   = "basic"
	TierKeyPremium = "premium"
)

// DefaultProvider applies when no priority row exists at all.
const DefaultProvider = models.ProviderOpenAI

const cacheTTL = time.Hour

// Repository is the storage contract the selector needs.
type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	GetModelPriority(ctx context.Context, country, tier string) (*models.ModelPriority, error)
}

// PriorityCache caches priority rows between requests. Satisfied by
// cache.Cache; may be nil.
type PriorityCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Selector resolves (provider, model) pairs per user.
type Selector struct {
	log   *slog.Logger
	repo  Repository
	cache PriorityCache
}

// New creates a selector. cache may be nil to disable caching.
func New(log *slog.Logger, repo Repository, cache PriorityCache) *Selector {
	return &Selector{log: log, repo: repo, cache: cache}
}

// CacheKey returns the cache key of a (country, tier) priority row. The
// admin service invalidates these keys on priority updates.
func CacheKey(country, tier string) string {
	return fmt.Sprintf("ai_priority:%s:%s", country, tier)
}

// SelectForUser returns the provider and model to use for a user's AI call.
// Lookup order: (country, tier) row, then ("WW", tier) row, then the
// hardcoded default provider. Only priority_1 of a row is consulted;
// priority_2/3 are stored for future failover.
func (s *Selector) SelectForUser(ctx context.Context, userID int64) (provider, model string, err error) {
	const op = "modelselector.SelectForUser"

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	country := models.CountryWorldwide
	if profile != nil && profile.Country != nil && *profile.Country != "" {
		country = *profile.Country
	}

	subscription, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	tier := TierKeyBasic
	if subscription != nil && subscription.Tier == models.TierPremium {
		tier = TierKeyPremium
	}

	priority, err := s.priority(ctx, country, tier)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if priority == nil && country != models.CountryWorldwide {
		priority, err = s.priority(ctx, models.CountryWorldwide, tier)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", op, err)
		}
	}

	provider = DefaultProvider
	if priority != nil {
		provider = priority.Priority1
	}
	return provider, modelFor(provider, tier), nil
}

func (s *Selector) priority(ctx context.Context, country, tier string) (*models.ModelPriority, error) {
	key := CacheKey(country, tier)
	if s.cache != nil {
		var cached models.ModelPriority
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("priority cache read failed", sl.Err(err))
		} else if found {
			return &cached, nil
		}
	}

	priority, err := s.repo.GetModelPriority(ctx, country, tier)
	if err != nil {
		return nil, err
	}
	if priority != nil && s.cache != nil {
		if err := s.cache.Set(key, priority, cacheTTL); err != nil {
			s.log.Warn("priority cache write failed", sl.Err(err))
		}
	}
	return priority, nil
}

// DefaultModel returns the basic-tier default model of a provider. Used
// where a caller names a provider without a model.
func DefaultModel(provider string) string {
	return modelFor(provider, TierKeyBasic)
}

// modelFor maps a provider to its default model for the tier.
func modelFor(provider, tier string) string {
	premium := tier == TierKeyPremium
	switch provider {
	case models.ProviderOpenAI:
		if premium {
			return "gpt-4o"
		}
		return "gpt-4o-mini"
	case models.ProviderGoogleAI:
		return "gemini-2.0-flash-exp"
	case models.ProviderClaude:
		if premium {
			return "claude-opus-4-5-20251101"
		}
		return "claude-haiku-4-5"
	default:
		return "gpt-4o-mini"
	}
}
