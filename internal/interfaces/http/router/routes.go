package router

import (
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/handler"
	"github.com/farmacia/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every API handler
type Handlers struct {
	Order        *handler.OrderHandler
	Gamification *handler.GamificationHandler
	Promotion    *handler.PromotionHandler
	Address      *handler.AddressHandler
	Catalog      *handler.CatalogHandler
	Ledger       *handler.LedgerHandler
	Report       *handler.ReportHandler
}

// Groups returns the route groups of the storefront API. Ownership checks
// happen in the services; the groups only gate by role.
func (h Handlers) Groups() []*DomainGroup {
	backOffice := middleware.RequireBackOffice()

	orders := NewDomainGroup("orders", "/orders").
		POST("", middleware.RequireRoles(shared.RoleCustomer), h.Order.Create).
		GET("", h.Order.List).
		GET("/:id", h.Order.Get).
		POST("/:id/confirm", h.Order.Confirm).
		DELETE("/:id", h.Order.Cancel).
		GET("/:id/tracking", h.Order.Track).
		POST("/:id/payment-intent", h.Order.CreatePaymentIntent)

	missions := NewDomainGroup("missions", "/missions").
		GET("/active", h.Gamification.ActiveMissions)

	me := NewDomainGroup("me", "/users/me").
		GET("/missions", h.Gamification.MyMissions).
		GET("/gamification", h.Gamification.MyProfile)

	promotions := NewDomainGroup("promotions", "/promotions").
		GET("", h.Promotion.ListActive).
		GET("/:id", h.Promotion.Get).
		GET("/product/:id", h.Promotion.ListByProduct).
		GET("/category/:id", h.Promotion.ListByCategory).
		POST("", backOffice, h.Promotion.Create).
		PUT("/:id", backOffice, h.Promotion.Update).
		DELETE("/:id", backOffice, h.Promotion.Deactivate)

	addresses := NewDomainGroup("addresses", "/addresses").
		GET("", h.Address.List).
		POST("", h.Address.Create).
		DELETE("/:id", h.Address.Delete)

	products := NewDomainGroup("products", "/products").
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct).
		POST("/:id/image-upload-url", backOffice, h.Catalog.CreateImageUploadURL)

	categories := NewDomainGroup("categories", "/categories").
		GET("", h.Catalog.ListCategories)

	ledger := NewDomainGroup("ledger", "/ledger").Use(backOffice).
		GET("/financial", h.Ledger.ListFinancial).
		GET("/stock", h.Ledger.ListStock)

	admin := NewDomainGroup("admin", "/admin").Use(middleware.RequireRoles(shared.RoleAdmin)).
		GET("/summary", h.Report.AdminSummary)

	return []*DomainGroup{orders, missions, me, promotions, addresses, products, categories, ledger, admin}
}

// RegisterAPI registers every storefront group on r
func RegisterAPI(r *Router, h Handlers) *Router {
	for _, g := range h.Groups() {
		r.Register(g)
	}
	return r
}
