package forward

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/store"
)

const workspaceKeyPrefix = "workspace:"

// Route is a resolved sink destination for one tenant.
type Route struct {
	Endpoint  string
	Partition string
}

type workspaceRecord struct {
	Endpoint  string `json:"endpoint"`
	Partition string `json:"partition"`
	Disabled  bool   `json:"disabled"`
}

// Registry shards tenants across sink endpoints. Tenants without a
// workspace record, or with a disabled one, fall back to the default
// endpoint and partition.
type Registry struct {
	store            store.Store
	defaultEndpoint  string
	defaultPartition string
}

func NewRegistry(s store.Store, defaultEndpoint, defaultPartition string) *Registry {
	return &Registry{
		store:            s,
		defaultEndpoint:  defaultEndpoint,
		defaultPartition: defaultPartition,
	}
}

// Resolve returns the sink route for a tenant. Lookup failures fall back to
// the default route rather than failing the booking.
func (r *Registry) Resolve(ctx context.Context, slug string) Route {
	fallback := Route{Endpoint: r.defaultEndpoint, Partition: r.defaultPartition}

	raw, err := r.store.Get(ctx, workspaceKeyPrefix+slug)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.ErrorLogger.Errorf("Workspace lookup failed for %q, using default sink: %v", slug, err)
		}
		return fallback
	}

	var rec workspaceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		logger.ErrorLogger.Errorf("Corrupt workspace record for %q, using default sink: %v", slug, err)
		return fallback
	}
	if rec.Disabled || rec.Endpoint == "" {
		return fallback
	}

	route := Route{Endpoint: rec.Endpoint, Partition: rec.Partition}
	if route.Partition == "" {
		route.Partition = r.defaultPartition
	}
	return route
}
