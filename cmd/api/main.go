package main

import (
	"context"
	"log"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/core/config"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/mongodb"
	"postnet-delivery/internal/core/security"
	"postnet-delivery/internal/core/server"
	checkoutadapter "postnet-delivery/internal/features/checkout/adapters"
	checkouthandler "postnet-delivery/internal/features/checkout/handler"
	checkoutservice "postnet-delivery/internal/features/checkout/service"
	dispatchadapter "postnet-delivery/internal/features/dispatch/adapters"
	dispatchhandler "postnet-delivery/internal/features/dispatch/handler"
	dispatchservice "postnet-delivery/internal/features/dispatch/service"
	feeadapter "postnet-delivery/internal/features/fees/adapters"
	feehandler "postnet-delivery/internal/features/fees/handler"
	feeports "postnet-delivery/internal/features/fees/ports"
	feeservice "postnet-delivery/internal/features/fees/service"
	mapsadapter "postnet-delivery/internal/features/maps/adapters"
	mapshandler "postnet-delivery/internal/features/maps/handler"
	orderadapter "postnet-delivery/internal/features/orders/adapters"
	orderhandler "postnet-delivery/internal/features/orders/handler"
	orderservice "postnet-delivery/internal/features/orders/service"
	rateshandler "postnet-delivery/internal/features/rates/handler"
	ratesservice "postnet-delivery/internal/features/rates/service"
	regionadapter "postnet-delivery/internal/features/region/adapters"
	settingsadapter "postnet-delivery/internal/features/settings/adapters"
	settingshandler "postnet-delivery/internal/features/settings/handler"
	settingsservice "postnet-delivery/internal/features/settings/service"
	storeadapter "postnet-delivery/internal/features/stores/adapters"
	storehandler "postnet-delivery/internal/features/stores/handler"
	storeservice "postnet-delivery/internal/features/stores/service"

	"go.uber.org/zap"
)

// @title PostNet Delivery API
// @version 1.0
// @description PostNet courier delivery for WooCommerce: rate rewriting, store selection, product fees and order dispatch.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
// @securityDefinitions.apikey HostToken
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithFile(cfg.Environment, cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("fee_store", cfg.Storage.FeeStore),
	)

	ctx := context.Background()

	redisCache, err := cache.NewRedisAdapter(cfg.Storage.RedisURL)
	if err != nil {
		l.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	wcAdapter := orderadapter.NewWooCommerceAdapter(cfg.WooCommerce)
	if err := wcAdapter.HealthCheck(ctx); err != nil {
		l.Fatal("WooCommerce Health Check Failed", zap.Error(err))
	}
	l.Info("WooCommerce connection verified")

	srv := server.New(cfg)
	srv.AddHealthCheck("redis", redisCache.Ping)
	srv.AddHealthCheck("woocommerce", wcAdapter.HealthCheck)

	var feeRepo feeports.FeeRepository
	switch cfg.Storage.FeeStore {
	case "mongo":
		mongoClient, err := mongodb.Connect(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase)
		if err != nil {
			l.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Close(closeCtx)
		}()
		feeRepo = feeadapter.NewMongoFeeRepository(mongoClient.Database())
		srv.AddHealthCheck("mongo", mongoClient.Ping)
	default:
		feeRepo = feeadapter.NewRedisFeeRepository(redisCache)
	}

	// Stores
	directory := storeadapter.NewPostNetDirectory(cfg.PostNet, cfg.PostNet.DirectoryTimeout())
	storeSvc := storeservice.NewStoreService(directory, redisCache, cfg.PostNet.StoresCacheTTL())

	// Settings
	settingsSvc := settingsservice.NewSettingsService(settingsadapter.NewRedisSettingsRepository(redisCache), storeSvc)

	// Orders and shipping zones
	orderSvc := orderservice.NewOrderService(wcAdapter)
	shippingSvc := orderservice.NewShippingService(wcAdapter, redisCache)

	// Fees and rates
	feeSvc := feeservice.NewFeeService(feeRepo, wcAdapter, settingsSvc)
	classifier := regionadapter.NewPostNetClassifier(cfg.PostNet.IsMainURL, cfg.PostNet.ClassifierTimeout())
	rewriter := ratesservice.NewRewriter(classifier, feeSvc)

	// Checkout and dispatch
	checkoutSvc := checkoutservice.NewCheckoutService(checkoutadapter.NewRedisSessionRepository(redisCache), shippingSvc, wcAdapter)
	courier := dispatchadapter.NewPostNetCourier(cfg.PostNet.DispatchURL, cfg.PostNet.DispatchTimeout())
	dispatcher := dispatchservice.NewDispatcher(wcAdapter, wcAdapter, shippingSvc, checkoutSvc, settingsSvc, classifier, courier, cfg.SiteName)

	h := handlers{
		nonces:   security.NewNonces(redisCache, cfg.Security.NonceTTL()),
		stores:   storehandler.NewStoreHandler(storeSvc),
		settings: settingshandler.NewSettingsHandler(settingsSvc),
		fees:     feehandler.NewFeeHandler(feeSvc),
		orders:   orderhandler.NewOrderHandler(orderSvc),
		shipping: orderhandler.NewShippingHandler(shippingSvc),
		rates:    rateshandler.NewRatesHandler(rewriter, settingsSvc),
		checkout: checkouthandler.NewCheckoutHandler(checkoutSvc),
		dispatch: dispatchhandler.NewDispatchHandler(dispatcher),
		maps:     mapshandler.NewMapsHandler(mapsadapter.NewGoogleGeocoder(cfg.Maps.GeocodeURL, 10*time.Second)),
	}
	registerRoutes(srv, cfg, h)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
