package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/CodeStorm-Hub/stormcom/internal/domain"
	"github.com/CodeStorm-Hub/stormcom/internal/response"
	"github.com/CodeStorm-Hub/stormcom/internal/tenant"
)

// StorefrontHandler owns the canonical tenant routes the resolver rewrites
// to: /store/<slug>[/...] and the store-not-found page.
type StorefrontHandler struct {
	stores domain.StoreRepository
}

func NewStorefrontHandler(stores domain.StoreRepository) *StorefrontHandler {
	return &StorefrontHandler{stores: stores}
}

func (h *StorefrontHandler) Register(app *fiber.App) {
	app.Get("/store-not-found", h.NotFound)
	app.Get("/store/:slug", h.Storefront)
	app.Get("/store/:slug/*", h.Storefront)
}

type storefrontData struct {
	Store domain.StoreRef `json:"store"`
	Path  string          `json:"path"`
}

// Storefront answers the rewritten tenant request. When the resolver already
// attached the store identity the headers are authoritative; direct visits to
// the canonical path fall back to a slug lookup.
func (h *StorefrontHandler) Storefront(c *fiber.Ctx) error {
	ref, ok := storeFromHeaders(c)
	if !ok || ref.Slug != c.Params("slug") {
		store, err := h.stores.FindBySlug(c.Context(), c.Params("slug"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return response.NotFound(c, "store not found")
			}
			return response.InternalError(c)
		}
		ref = store.Ref()
	}

	return response.OK(c, storefrontData{
		Store: ref,
		Path:  "/" + c.Params("*"),
	})
}

type notFoundData struct {
	Domain string `json:"domain"`
}

func (h *StorefrontHandler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(response.Envelope{
		Success: false,
		Data:    notFoundData{Domain: c.Query("domain")},
		Error: &response.ErrorInfo{
			Code:    response.ErrCodeNotFound,
			Message: "store not found",
		},
	})
}

func storeFromHeaders(c *fiber.Ctx) (domain.StoreRef, bool) {
	id := c.Get(tenant.HeaderStoreID)
	slug := c.Get(tenant.HeaderStoreSlug)
	if id == "" || slug == "" {
		return domain.StoreRef{}, false
	}

	name, err := url.QueryUnescape(c.Get(tenant.HeaderStoreName))
	if err != nil {
		name = c.Get(tenant.HeaderStoreName)
	}

	return domain.StoreRef{
		ID:             id,
		Slug:           slug,
		Name:           name,
		OrganizationID: c.Get(tenant.HeaderStoreOrganizationID),
	}, true
}
