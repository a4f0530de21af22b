package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/identity"
)

// Request headers carrying the resolved store identity to downstream
// handlers. The store name is URL-escaped for header transport.
const (
	HeaderStoreID             = "x-store-id"
	HeaderStoreSlug           = "x-store-slug"
	HeaderStoreName           = "x-store-name"
	HeaderStoreOrganizationID = "x-store-organization-id"
)

type Action int

const (
	ActionPassThrough Action = iota
	ActionRedirect
	ActionRewrite
)

// Decision is the resolver's verdict for one request. It is a plain value so
// the routing logic stays testable without a running server; the middleware
// adapter applies it to the transport.
type Decision struct {
	Action Action

	// Location is the redirect target, set when Action is ActionRedirect.
	Location string

	// Path and Query describe the internal rewrite target, set when
	// Action is ActionRewrite.
	Path  string
	Query string

	// Store is the resolved tenant, set on storefront rewrites and absent
	// on the not-found rewrite.
	Store *domain.StoreRef
}

// Request is the slice of an inbound HTTP request the resolver inspects.
type Request struct {
	Host         string
	Path         string
	RawQuery     string
	SessionToken string
}

// Directory is the tenant directory collaborator: it resolves a subdomain
// label or custom-domain hostname to a live store record.
type Directory interface {
	Lookup(ctx context.Context, subdomain, host string) (*domain.Store, error)
}

// ResolutionCache holds successful host resolutions. Implementations must be
// safe for concurrent use; expiry is the implementation's concern and expired
// entries simply read as absent. Negative results are never cached.
type ResolutionCache interface {
	Get(host string) (domain.StoreRef, bool)
	Set(host string, ref domain.StoreRef)
	Invalidate(host string)
}

// Config carries the resolution surface. All fields come from application
// configuration so that environment differences (dev suffix, root domains)
// stay a data concern.
type Config struct {
	RootDomains       []string
	DevSuffix         string
	ReservedSubdomain string
	ProtectedPrefixes []string
	ExemptPrefixes    []string
	BypassPrefixes    []string
	StorePathPrefix   string
	NotFoundPath      string
	LoginPath         string
}

// Resolver classifies the inbound host, resolves it to a store through the
// cache and the directory, and decides how the request proceeds.
type Resolver struct {
	cfg       Config
	cache     ResolutionCache
	directory Directory
	verifier  identity.Verifier
	logger    *slog.Logger
}

func NewResolver(cfg Config, cache ResolutionCache, directory Directory, verifier identity.Verifier, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:       cfg,
		cache:     cache,
		directory: directory,
		verifier:  verifier,
		logger:    logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, req Request) Decision {
	path := req.Path

	// Static assets and framework-internal paths bypass tenant logic
	// entirely. A dot in the path is treated as a file reference.
	if hasAnyPrefix(path, r.cfg.BypassPrefixes) || strings.Contains(path, ".") {
		return Decision{Action: ActionPassThrough}
	}

	if hasAnyPrefix(path, r.cfg.ProtectedPrefixes) {
		return r.checkProtected(ctx, req, path)
	}

	info := ClassifyHost(req.Host, r.cfg.RootDomains, r.cfg.DevSuffix)

	// Root site, reserved www label, and already tenant-scoped or
	// tenant-agnostic paths all pass through untouched.
	if info.Subdomain == "" && !info.CustomDomain {
		return Decision{Action: ActionPassThrough}
	}
	if info.Subdomain == r.cfg.ReservedSubdomain {
		return Decision{Action: ActionPassThrough}
	}
	if hasAnyPrefix(path, r.cfg.ExemptPrefixes) {
		return Decision{Action: ActionPassThrough}
	}

	ref, ok := r.lookup(ctx, info)
	if !ok {
		return Decision{
			Action: ActionRewrite,
			Path:   r.cfg.NotFoundPath,
			Query:  "domain=" + url.QueryEscape(info.Host),
		}
	}

	// vendor1.stormcom.app/products -> /store/<slug>/products. The root
	// path contributes no suffix so the canonical path has no trailing
	// slash. The query string travels verbatim.
	storePath := path
	if storePath == "/" {
		storePath = ""
	}

	return Decision{
		Action: ActionRewrite,
		Path:   r.cfg.StorePathPrefix + "/" + ref.Slug + storePath,
		Query:  req.RawQuery,
		Store:  &ref,
	}
}

func (r *Resolver) checkProtected(ctx context.Context, req Request, path string) Decision {
	principal, err := r.verifier.Verify(ctx, req.SessionToken)
	if err != nil {
		r.logger.Warn("session verification failed", "path", path, "error", err)
	}
	if principal == nil {
		return Decision{
			Action:   ActionRedirect,
			Location: r.cfg.LoginPath + "?callbackUrl=" + url.QueryEscape(path),
		}
	}
	return Decision{Action: ActionPassThrough}
}

// lookup consults the cache and falls back to the directory. Directory
// failures degrade to "not found" so a directory outage shows tenants the
// not-found page instead of an opaque 500. Concurrent requests for the same
// uncached host may each hit the directory; the last write wins.
func (r *Resolver) lookup(ctx context.Context, info HostInfo) (domain.StoreRef, bool) {
	if ref, ok := r.cache.Get(info.Host); ok {
		return ref, true
	}

	store, err := r.directory.Lookup(ctx, info.Subdomain, info.Host)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("store lookup failed", "host", info.Host, "error", err)
		}
		return domain.StoreRef{}, false
	}

	ref := store.Ref()
	r.cache.Set(info.Host, ref)
	return ref, true
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
