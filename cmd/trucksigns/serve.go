package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trucksigns/truck-signs-api/app/cache"
	"github.com/trucksigns/truck-signs-api/app/catalog"
	"github.com/trucksigns/truck-signs-api/app/categories"
	"github.com/trucksigns/truck-signs-api/app/comments"
	"github.com/trucksigns/truck-signs-api/app/config"
	"github.com/trucksigns/truck-signs-api/app/database"
	"github.com/trucksigns/truck-signs-api/app/metrics"
	"github.com/trucksigns/truck-signs-api/app/ordering"
	"github.com/trucksigns/truck-signs-api/app/orders"
	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/app/server"
	"github.com/trucksigns/truck-signs-api/app/storage"
	"github.com/trucksigns/truck-signs-api/models"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := cfg.Log.Logger()
	slog.SetDefault(logger)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ids, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	blobs, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	ttl := models.CacheTTLs{List: cfg.Cache.ListTTL, Static: cfg.Cache.StaticTTL}
	catalogRepo := models.NewCatalogRepository(db, ids, ttl)

	if cfg.Payments.StripeSecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is not set, payments will fail")
	}
	gateway := payments.NewStripeGateway(payments.StripeConfig{
		SecretKey: cfg.Payments.StripeSecretKey,
		BaseURL:   cfg.Payments.StripeBaseURL,
		Timeout:   cfg.Payments.Timeout,
	})

	orderingCfg := ordering.Config{
		Currency:    cfg.Payments.Currency,
		ColorPolicy: ordering.PermissiveColor,
		ClaimTTL:    cfg.Payments.ClaimTTL,
	}
	if cfg.Ordering.StrictColor {
		orderingCfg.ColorPolicy = ordering.StrictColor
	}
	service := ordering.NewService(catalogRepo, models.NewOrdersRepository(db), gateway, orderingCfg, logger)

	router := server.NewRouter(server.Handlers{
		Catalog:    catalog.NewCatalogHandler(catalogRepo),
		Upload:     catalog.NewUploadHandler(catalogRepo, blobs, cfg.Storage.MediaURL, cfg.Storage.MaxUploadBytes),
		Categories: categories.NewCategoryHandler(catalogRepo),
		Orders:     orders.NewOrdersHandler(service),
		Comments:   comments.NewCommentsHandler(models.NewCommentsRepository(db, ids, ttl)),
		Metrics:    metrics.NewRecorder(),
	}, logger)

	logger.Info("truck signs api ready",
		"version", Version,
		"database", cfg.Database.Driver,
		"cache", cfg.Cache.Backend,
		"storage", cfg.Storage.Backend,
		"color_policy", orderingCfg.ColorPolicy.String(),
	)
	return server.Run(ctx, server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)
}

func openCache(ctx context.Context, cfg config.Cache, logger *slog.Logger) (*cache.IDCache, func(), error) {
	keys := cache.NewKeyBuilder(cfg.Namespace)

	switch cfg.Backend {
	case config.CacheNone:
		return nil, func() {}, nil
	case config.CacheRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is never authoritative; start anyway and fall back to the database.
			logger.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
		return cache.NewIDCache(cache.NewRedisStore(client), keys, logger), func() { _ = client.Close() }, nil
	default:
		return cache.NewIDCache(cache.NewMemoryStore(cfg.ListTTL), keys, logger), func() {}, nil
	}
}

func openStorage(ctx context.Context, cfg config.Storage) (storage.BlobStore, func(), error) {
	if cfg.Backend != config.StorageGridFS {
		store, err := storage.NewDiskStore(cfg.MediaRoot)
		return store, func() {}, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	disconnect := func() { _ = client.Disconnect(context.Background()) }

	store, err := storage.NewGridFSStore(client.Database(cfg.MongoDatabase), cfg.GridFSBucket)
	if err != nil {
		disconnect()
		return nil, nil, err
	}
	return store, disconnect, nil
}
