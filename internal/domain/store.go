package domain

import (
	"context"
	"time"
)

// Store is one merchant storefront in the platform, addressed either by a
// subdomain under one of the platform root domains or by a custom domain.
type Store struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Subdomain      *string    `json:"subdomain,omitempty"`
	CustomDomain   *string    `json:"customDomain,omitempty"`
	OrganizationID string     `json:"organizationId"`
	DeletedAt      *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// StoreRef carries the public-safe subset of a store record that the tenant
// resolver caches and exposes to downstream handlers.
type StoreRef struct {
	ID             string  `json:"id"`
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	Subdomain      *string `json:"subdomain"`
	CustomDomain   *string `json:"customDomain"`
	OrganizationID string  `json:"organizationId"`
}

func (s *Store) Ref() StoreRef {
	return StoreRef{
		ID:             s.ID,
		Slug:           s.Slug,
		Name:           s.Name,
		Subdomain:      s.Subdomain,
		CustomDomain:   s.CustomDomain,
		OrganizationID: s.OrganizationID,
	}
}

type StoreRepository interface {
	// Lookup returns the single non-deleted store matching the subdomain
	// label (when non-empty) or the exact custom domain. Returns
	// ErrNotFound when nothing matches.
	Lookup(ctx context.Context, subdomain, host string) (*Store, error)
	FindBySlug(ctx context.Context, slug string) (*Store, error)
}
