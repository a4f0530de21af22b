package tenant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/identity"
)

type fakeDirectory struct {
	stores map[string]*domain.Store
	err    error
	calls  int
}

func (d *fakeDirectory) Lookup(_ context.Context, subdomain, host string) (*domain.Store, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if subdomain != "" {
		if s, ok := d.stores[subdomain]; ok {
			return s, nil
		}
	}
	if s, ok := d.stores[host]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

type fakeCache struct {
	entries map[string]domain.StoreRef
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.StoreRef)}
}

func (c *fakeCache) Get(host string) (domain.StoreRef, bool) {
	ref, ok := c.entries[host]
	return ref, ok
}

func (c *fakeCache) Set(host string, ref domain.StoreRef) {
	c.entries[host] = ref
}

func (c *fakeCache) Invalidate(host string) {
	delete(c.entries, host)
}

type fakeVerifier struct {
	principal *identity.Principal
	err       error
}

func (v *fakeVerifier) Verify(context.Context, string) (*identity.Principal, error) {
	return v.principal, v.err
}

func testConfig() Config {
	return Config{
		RootDomains:       []string{"stormcom.app", "stormcom.com", "localhost"},
		DevSuffix:         ".localhost",
		ReservedSubdomain: "www",
		ProtectedPrefixes: []string{"/dashboard", "/settings", "/team", "/projects", "/products"},
		ExemptPrefixes: []string{
			"/login", "/signup", "/verify-email", "/api",
			"/store", "/store-not-found", "/onboarding", "/checkout",
		},
		BypassPrefixes:  []string{"/_next", "/favicon.ico", "/api/auth"},
		StorePathPrefix: "/store",
		NotFoundPath:    "/store-not-found",
		LoginPath:       "/login",
	}
}

func acmeStore() *domain.Store {
	subdomain := "acme"
	return &domain.Store{
		ID:             "a9f4c2d8-0000-0000-0000-000000000001",
		Slug:           "acme-store",
		Name:           "Acme & Co",
		Subdomain:      &subdomain,
		OrganizationID: "b1e2d3c4-0000-0000-0000-000000000002",
	}
}

func newTestResolver(directory *fakeDirectory, cache *fakeCache, verifier *fakeVerifier) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(testConfig(), cache, directory, verifier, logger)
}

func TestResolveRewritesSubdomainHost(t *testing.T) {
	directory := &fakeDirectory{stores: map[string]*domain.Store{"acme": acmeStore()}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{
		Host:     "acme.stormcom.app",
		Path:     "/collections",
		RawQuery: "page=2&sort=price",
	})

	if d.Action != ActionRewrite {
		t.Fatalf("Action = %v, want ActionRewrite", d.Action)
	}
	if d.Path != "/store/acme-store/collections" {
		t.Errorf("Path = %q, want %q", d.Path, "/store/acme-store/collections")
	}
	if d.Query != "page=2&sort=price" {
		t.Errorf("Query = %q, want preserved query", d.Query)
	}
	if d.Store == nil {
		t.Fatal("Store = nil, want resolved store")
	}
	if d.Store.Slug != "acme-store" || d.Store.OrganizationID != "b1e2d3c4-0000-0000-0000-000000000002" {
		t.Errorf("Store = %+v, want acme-store ref", d.Store)
	}
}

func TestResolveRootPathHasNoTrailingSegment(t *testing.T) {
	directory := &fakeDirectory{stores: map[string]*domain.Store{"acme": acmeStore()}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "acme.stormcom.app", Path: "/"})

	if d.Action != ActionRewrite {
		t.Fatalf("Action = %v, want ActionRewrite", d.Action)
	}
	if d.Path != "/store/acme-store" {
		t.Errorf("Path = %q, want %q", d.Path, "/store/acme-store")
	}
}

func TestResolveCustomDomainHost(t *testing.T) {
	store := acmeStore()
	customDomain := "acme.shop"
	store.Subdomain = nil
	store.CustomDomain = &customDomain
	directory := &fakeDirectory{stores: map[string]*domain.Store{"acme.shop": store}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "acme.shop", Path: "/"})

	if d.Action != ActionRewrite || d.Path != "/store/acme-store" {
		t.Errorf("got (%v, %q), want rewrite to /store/acme-store", d.Action, d.Path)
	}
}

func TestResolveUnknownHostRewritesToNotFound(t *testing.T) {
	directory := &fakeDirectory{stores: map[string]*domain.Store{}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "unknown.stormcom.app:443", Path: "/collections"})

	if d.Action != ActionRewrite {
		t.Fatalf("Action = %v, want ActionRewrite", d.Action)
	}
	if d.Path != "/store-not-found" {
		t.Errorf("Path = %q, want /store-not-found", d.Path)
	}
	if d.Query != "domain=unknown.stormcom.app" {
		t.Errorf("Query = %q, want domain=unknown.stormcom.app", d.Query)
	}
	if d.Store != nil {
		t.Errorf("Store = %+v, want nil", d.Store)
	}
}

func TestResolveDirectoryErrorDegradesToNotFound(t *testing.T) {
	directory := &fakeDirectory{err: errors.New("connection refused")}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "acme.stormcom.app", Path: "/"})

	if d.Action != ActionRewrite || d.Path != "/store-not-found" {
		t.Errorf("got (%v, %q), want rewrite to /store-not-found", d.Action, d.Path)
	}
}

func TestResolvePassThrough(t *testing.T) {
	tests := []struct {
		name string
		host string
		path string
	}{
		{"root domain", "stormcom.app", "/"},
		{"www subdomain", "www.stormcom.app", "/pricing"},
		{"bare localhost", "localhost:3000", "/"},
		{"framework assets", "acme.stormcom.app", "/_next/static/chunk"},
		{"favicon", "acme.stormcom.app", "/favicon.ico"},
		{"static file by extension", "acme.stormcom.app", "/logo.png"},
		{"auth callback", "acme.stormcom.app", "/api/auth/callback"},
		{"login on tenant host", "acme.stormcom.app", "/login"},
		{"checkout on tenant host", "acme.stormcom.app", "/checkout/cart"},
		{"api namespace on tenant host", "acme.stormcom.app", "/api/orders"},
		{"already rewritten store path", "acme.stormcom.app", "/store/acme-store"},
		{"onboarding", "acme.stormcom.app", "/onboarding"},
		{"single label host", "intranet", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := &fakeDirectory{stores: map[string]*domain.Store{"acme": acmeStore()}}
			r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

			d := r.Resolve(context.Background(), Request{Host: tt.host, Path: tt.path})

			if d.Action != ActionPassThrough {
				t.Errorf("Action = %v, want ActionPassThrough", d.Action)
			}
			if directory.calls != 0 {
				t.Errorf("directory calls = %d, want 0", directory.calls)
			}
		})
	}
}

func TestResolveProtectedRouteRedirectsWithoutSession(t *testing.T) {
	r := newTestResolver(&fakeDirectory{}, newFakeCache(), &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "stormcom.app", Path: "/dashboard/settings"})

	if d.Action != ActionRedirect {
		t.Fatalf("Action = %v, want ActionRedirect", d.Action)
	}
	if d.Location != "/login?callbackUrl=%2Fdashboard%2Fsettings" {
		t.Errorf("Location = %q, want /login?callbackUrl=%%2Fdashboard%%2Fsettings", d.Location)
	}
}

func TestResolveProtectedRouteWithSessionPassesThrough(t *testing.T) {
	verifier := &fakeVerifier{principal: &identity.Principal{UserID: "user-1"}}
	directory := &fakeDirectory{}
	r := newTestResolver(directory, newFakeCache(), verifier)

	d := r.Resolve(context.Background(), Request{
		Host:         "stormcom.app",
		Path:         "/dashboard/settings",
		SessionToken: "valid",
	})

	if d.Action != ActionPassThrough {
		t.Errorf("Action = %v, want ActionPassThrough", d.Action)
	}
	if directory.calls != 0 {
		t.Errorf("directory calls = %d, want 0", directory.calls)
	}
}

func TestResolveProtectedRouteVerifierErrorRedirects(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("secret unavailable")}
	r := newTestResolver(&fakeDirectory{}, newFakeCache(), verifier)

	d := r.Resolve(context.Background(), Request{
		Host:         "stormcom.app",
		Path:         "/dashboard",
		SessionToken: "token",
	})

	if d.Action != ActionRedirect {
		t.Errorf("Action = %v, want ActionRedirect", d.Action)
	}
}

func TestResolveCachesSuccessfulLookup(t *testing.T) {
	directory := &fakeDirectory{stores: map[string]*domain.Store{"acme": acmeStore()}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	first := r.Resolve(context.Background(), Request{Host: "acme.stormcom.app", Path: "/"})
	second := r.Resolve(context.Background(), Request{Host: "acme.stormcom.app", Path: "/about-us"})

	if directory.calls != 1 {
		t.Errorf("directory calls = %d, want 1", directory.calls)
	}
	if first.Store == nil || second.Store == nil || *first.Store != *second.Store {
		t.Errorf("cached resolution differs: %+v vs %+v", first.Store, second.Store)
	}
}

func TestResolveSkipsDirectoryOnCacheHit(t *testing.T) {
	directory := &fakeDirectory{}
	cache := newFakeCache()
	cache.Set("acme.stormcom.app", acmeStore().Ref())
	r := newTestResolver(directory, cache, &fakeVerifier{})

	d := r.Resolve(context.Background(), Request{Host: "acme.stormcom.app", Path: "/"})

	if d.Action != ActionRewrite {
		t.Fatalf("Action = %v, want ActionRewrite", d.Action)
	}
	if directory.calls != 0 {
		t.Errorf("directory calls = %d, want 0", directory.calls)
	}
}

// Deployments that serve a storefront catalog under /products shrink the
// protected list to the dashboard sections; the rewrite then owns the path.
func TestResolveProductsPathWithNarrowProtectedList(t *testing.T) {
	cfg := testConfig()
	cfg.ProtectedPrefixes = []string{"/dashboard", "/settings"}
	directory := &fakeDirectory{stores: map[string]*domain.Store{"acme": acmeStore()}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewResolver(cfg, newFakeCache(), directory, &fakeVerifier{}, logger)

	d := r.Resolve(context.Background(), Request{
		Host:     "acme.stormcom.app",
		Path:     "/products",
		RawQuery: "category=shoes",
	})

	if d.Action != ActionRewrite {
		t.Fatalf("Action = %v, want ActionRewrite", d.Action)
	}
	if d.Path != "/store/acme-store/products" {
		t.Errorf("Path = %q, want /store/acme-store/products", d.Path)
	}
	if d.Query != "category=shoes" {
		t.Errorf("Query = %q, want category=shoes", d.Query)
	}
}

func TestResolveDoesNotCacheNegativeLookups(t *testing.T) {
	directory := &fakeDirectory{stores: map[string]*domain.Store{}}
	r := newTestResolver(directory, newFakeCache(), &fakeVerifier{})

	r.Resolve(context.Background(), Request{Host: "ghost.stormcom.app", Path: "/"})
	r.Resolve(context.Background(), Request{Host: "ghost.stormcom.app", Path: "/"})

	if directory.calls != 2 {
		t.Errorf("directory calls = %d, want 2 (unknown hosts are never cached)", directory.calls)
	}
}
