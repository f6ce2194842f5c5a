package main

import (
	"time"

	"postnet-delivery/internal/core/config"
	"postnet-delivery/internal/core/security"
	"postnet-delivery/internal/core/server"
	checkouthandler "postnet-delivery/internal/features/checkout/handler"
	dispatchhandler "postnet-delivery/internal/features/dispatch/handler"
	feehandler "postnet-delivery/internal/features/fees/handler"
	mapshandler "postnet-delivery/internal/features/maps/handler"
	orderhandler "postnet-delivery/internal/features/orders/handler"
	rateshandler "postnet-delivery/internal/features/rates/handler"
	settingshandler "postnet-delivery/internal/features/settings/handler"
	storehandler "postnet-delivery/internal/features/stores/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type handlers struct {
	nonces   *security.Nonces
	stores   *storehandler.StoreHandler
	settings *settingshandler.SettingsHandler
	fees     *feehandler.FeeHandler
	orders   *orderhandler.OrderHandler
	shipping *orderhandler.ShippingHandler
	rates    *rateshandler.RatesHandler
	checkout *checkouthandler.CheckoutHandler
	dispatch *dispatchhandler.DispatchHandler
	maps     *mapshandler.MapsHandler
}

func registerRoutes(srv *server.Server, cfg *config.AppConfig, h handlers) {
	app := srv.App
	admin := security.RequireAdmin(cfg.Security.AdminToken)
	host := security.RequireHost(cfg.Security.HostToken)

	// Browser-facing ajax actions
	ajax := app.Group("/ajax", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return security.AjaxError(c, fiber.StatusTooManyRequests, "Too many requests.")
		},
	}))
	ajax.Get("/nonce", security.IssueNonce(h.nonces, security.ActionDelivery))
	ajax.Post("/wc_postnet_delivery_stores", security.RequireNonce(h.nonces, security.ActionDelivery), h.stores.ListStores)
	ajax.Post("/wc_postnet_delivery_store_details", security.RequireNonce(h.nonces, security.ActionDelivery), h.stores.StoreDetails)
	ajax.Post("/wc_postnet_delivery_validate_google_api_key",
		admin,
		security.RequireNonce(h.nonces, security.ActionGoogleKey),
		h.maps.ValidateKey,
	)

	// Checkout widget
	app.Post("/checkout/sessions", h.checkout.CreateSession)
	app.Get("/checkout/sessions/:id", h.checkout.GetSession)
	app.Put("/checkout/sessions/:id/method", h.checkout.SelectMethod)
	app.Put("/checkout/sessions/:id/store", h.checkout.ChooseStore)

	// Shop host hooks, called server to server
	app.Post("/shipping/rates", host, h.rates.RewriteRates)
	app.Post("/checkout/validate", host, h.checkout.Validate)
	app.Post("/checkout/orders/:id/destination", host, h.checkout.CaptureDestination)
	app.Post("/orders/:id/received", host, h.dispatch.OrderReceived)
	app.Get("/orders/:id/postnet", host, h.orders.GetPostNetDetails)

	// Store manager
	adm := app.Group("/admin", admin)
	adm.Get("/nonce", security.IssueNonce(h.nonces,
		security.ActionCSV,
		security.ActionConfigureShipping,
		security.ActionGoogleKey,
		security.ActionDelivery,
	))
	adm.Get("/settings", h.settings.GetSettings)
	adm.Put("/settings", h.settings.SaveSettings)
	adm.Post("/shipping/configure", security.RequireNonce(h.nonces, security.ActionConfigureShipping), h.shipping.ConfigureShipping)
	adm.Get("/products/:id/fees", h.fees.GetProductFees)
	adm.Put("/products/:id/fees", h.fees.UpdateProductFees)
	adm.Get("/fees/export", h.fees.ExportFees)
	adm.Post("/fees/import", security.RequireNonce(h.nonces, security.ActionCSV, "postnet_delivery_nonce"), h.fees.ImportFees)
	adm.Get("/orders/:id/postnet", h.orders.AdminGetPostNetDetails)
}
