package middleware

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/CodeStorm-Hub/stormcom/internal/tenant"
)

// TenantMiddleware applies the resolver's decision to the transport: it
// passes requests through, redirects unauthenticated dashboard traffic, or
// rewrites storefront hosts onto the canonical /store/<slug> route. The
// rewrite is internal; the client's address bar never changes.
type TenantMiddleware struct {
	resolver          *tenant.Resolver
	sessionCookieName string
	logger            *slog.Logger
}

type TenantMiddlewareConfig struct {
	Resolver          *tenant.Resolver
	SessionCookieName string
	Logger            *slog.Logger
}

func NewTenantMiddleware(cfg TenantMiddlewareConfig) *TenantMiddleware {
	return &TenantMiddleware{
		resolver:          cfg.Resolver,
		sessionCookieName: cfg.SessionCookieName,
		logger:            cfg.Logger,
	}
}

func (m *TenantMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := m.resolver.Resolve(c.Context(), tenant.Request{
			Host:         string(c.Request().Host()),
			Path:         c.Path(),
			RawQuery:     string(c.Request().URI().QueryString()),
			SessionToken: m.sessionToken(c),
		})

		switch decision.Action {
		case tenant.ActionRedirect:
			return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)

		case tenant.ActionRewrite:
			if store := decision.Store; store != nil {
				c.Request().Header.Set(tenant.HeaderStoreID, store.ID)
				c.Request().Header.Set(tenant.HeaderStoreSlug, store.Slug)
				c.Request().Header.Set(tenant.HeaderStoreName, url.QueryEscape(store.Name))
				c.Request().Header.Set(tenant.HeaderStoreOrganizationID, store.OrganizationID)

				m.logger.Debug("resolved store host",
					"host", string(c.Request().Host()),
					"slug", store.Slug,
					"path", decision.Path,
				)
			}

			c.Request().URI().SetQueryString(decision.Query)
			c.Path(decision.Path)

			// Re-run routing against the rewritten path. The rewrite
			// targets are tenant-exempt, so resolution runs once.
			return c.RestartRouting()

		default:
			return c.Next()
		}
	}
}

func (m *TenantMiddleware) sessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(m.sessionCookieName); token != "" {
		return token
	}
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
