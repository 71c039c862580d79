package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/osvita-dev/kids-registry-api/internal/models"
)

const preferenceKeyPrefix = "prefs:filters:"

// PreferenceRepository persists each operator's filter preferences as one
// keyed JSON blob, read at startup and rewritten on every change.
type PreferenceRepository struct {
	client *redis.Client
}

// NewPreferenceRepository constructs a PreferenceRepository.
func NewPreferenceRepository(client *redis.Client) *PreferenceRepository {
	return &PreferenceRepository{client: client}
}

// Load returns the stored preferences, or zero-value defaults when none
// have been saved yet.
func (r *PreferenceRepository) Load(ctx context.Context, operator string) (models.FilterPreferences, error) {
	var prefs models.FilterPreferences
	raw, err := r.client.Get(ctx, preferenceKeyPrefix+operator).Bytes()
	if err != nil {
		if err == redis.Nil {
			return prefs, nil
		}
		return prefs, fmt.Errorf("redis get preferences for %s: %w", operator, err)
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return models.FilterPreferences{}, fmt.Errorf("unmarshal preferences for %s: %w", operator, err)
	}
	return prefs, nil
}

// Save overwrites the stored preferences. Preferences have no expiry.
func (r *PreferenceRepository) Save(ctx context.Context, operator string, prefs models.FilterPreferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences for %s: %w", operator, err)
	}
	if err := r.client.Set(ctx, preferenceKeyPrefix+operator, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set preferences for %s: %w", operator, err)
	}
	return nil
}

// Clear removes the stored preferences.
func (r *PreferenceRepository) Clear(ctx context.Context, operator string) error {
	if err := r.client.Del(ctx, preferenceKeyPrefix+operator).Err(); err != nil {
		return fmt.Errorf("redis delete preferences for %s: %w", operator, err)
	}
	return nil
}
