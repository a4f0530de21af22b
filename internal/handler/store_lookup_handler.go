package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/response"
	"github.com/CodeStorm-Hub/stormcom/internal/tenant"
)

const internalRequestHeader = "x-internal-request"

// StoreLookupHandler serves the internal store-lookup API and the matching
// cache invalidation hook. Both are for platform components (edge workers,
// the dashboard's domain-settings flow), never for end users, hence the
// internal-request guard.
type StoreLookupHandler struct {
	stores domain.StoreRepository
	cache  tenant.ResolutionCache
	logger *slog.Logger
}

func NewStoreLookupHandler(stores domain.StoreRepository, cache tenant.ResolutionCache, logger *slog.Logger) *StoreLookupHandler {
	return &StoreLookupHandler{
		stores: stores,
		cache:  cache,
		logger: logger,
	}
}

func (h *StoreLookupHandler) Register(app *fiber.App) {
	app.Get("/api/stores/lookup", h.Lookup)
	app.Post("/api/stores/cache/invalidate", h.InvalidateCache)
}

// Lookup resolves a subdomain label or custom-domain hostname to minimal
// store data.
//
// GET /api/stores/lookup?subdomain=vendor1&host=vendor1.stormcom.app
func (h *StoreLookupHandler) Lookup(c *fiber.Ctx) error {
	if c.Get(internalRequestHeader) != "true" {
		return response.Unauthorized(c, "internal endpoint")
	}

	subdomain := c.Query("subdomain")
	host := stripPort(c.Query("host"))

	if subdomain == "" && host == "" {
		return response.BadRequest(c, "subdomain or host parameter required")
	}

	store, err := h.stores.Lookup(c.Context(), subdomain, host)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "store not found")
		}
		h.logger.Error("store lookup failed", "host", host, "subdomain", subdomain, "error", err)
		return response.InternalError(c)
	}

	return response.OK(c, store.Ref())
}

type invalidateCacheRequest struct {
	Hostname string `json:"hostname"`
}

// InvalidateCache evicts one hostname from the resolution cache. The
// dashboard calls this after a subdomain or custom-domain change so the old
// mapping does not linger for a full TTL.
func (h *StoreLookupHandler) InvalidateCache(c *fiber.Ctx) error {
	if c.Get(internalRequestHeader) != "true" {
		return response.Unauthorized(c, "internal endpoint")
	}

	var req invalidateCacheRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	host := stripPort(req.Hostname)
	if host == "" {
		return response.BadRequest(c, "hostname required")
	}

	h.cache.Invalidate(host)
	h.logger.Info("resolution cache invalidated", "host", host)

	return response.NoContent(c)
}

func stripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		return host[:i]
	}
	return host
}
