package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/store"
)

const configKeyPrefix = "config:"

// ErrNotFound is returned when no config exists for a slug.
var ErrNotFound = errors.New("property config not found")

// Directory reads tenant configs from the property directory and writes
// back counter updates. Counter writes are plain puts; concurrent requests
// for the same tenant are last-writer-wins, accepted because the counters
// are advisory.
type Directory struct {
	store store.Store
}

func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// Get loads the config for a slug. ErrNotFound is distinct from a store
// failure so the caller can map them to different responses.
func (d *Directory) Get(ctx context.Context, slug string) (*property_models.PropertyConfig, error) {
	raw, err := d.store.Get(ctx, configKeyPrefix+slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read property config for %q: %w", slug, err)
	}

	var cfg property_models.PropertyConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("corrupt property config for %q: %w", slug, err)
	}
	if cfg.Slug == "" {
		cfg.Slug = slug
	}
	return &cfg, nil
}

// Save persists a config back to the directory. Config records never expire.
func (d *Directory) Save(ctx context.Context, cfg *property_models.PropertyConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode property config for %q: %w", cfg.Slug, err)
	}
	if err := d.store.Put(ctx, configKeyPrefix+cfg.Slug, string(raw), 0); err != nil {
		return fmt.Errorf("failed to save property config for %q: %w", cfg.Slug, err)
	}
	return nil
}
