package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	apimiddleware "storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/api/router"
	"storefront/internal/adapter/repository"
	"storefront/internal/adapter/repository/memory"
	domainrepo "storefront/internal/domain/repository"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/mailer"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/internal/infrastructure/storage"
	"storefront/internal/usecase"
	"storefront/pkg/config"
	"storefront/pkg/logger"
	"storefront/pkg/response"
)

type repositories struct {
	savedLists domainrepo.SavedListRepository
	carts      domainrepo.CartRepository
	products   domainrepo.ProductRepository
	addresses  domainrepo.AddressRepository
	orders     domainrepo.OrderRepository
	reviews    domainrepo.ReviewRepository
}

func firestoreRepositories(client *firestore.Client, maxAttempts int) repositories {
	return repositories{
		savedLists: repository.NewFirestoreSavedListRepository(client, maxAttempts),
		carts:      repository.NewFirestoreCartRepository(client, maxAttempts),
		products:   repository.NewFirestoreProductRepository(client),
		addresses:  repository.NewFirestoreAddressRepository(client, maxAttempts),
		orders:     repository.NewFirestoreOrderRepository(client, maxAttempts),
		reviews:    repository.NewFirestoreReviewRepository(client, maxAttempts),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		savedLists: store.SavedLists(),
		carts:      store.Carts(),
		products:   store.Products(),
		addresses:  store.Addresses(),
		orders:     store.Orders(),
		reviews:    store.Reviews(),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := firebase.CredentialsOption(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to resolve Firebase credentials: %v", err)
	}
	var clientOpts []option.ClientOption
	if opt != nil {
		clientOpts = append(clientOpts, opt)
	}

	firebaseApp, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	var repos repositories
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using the in-memory store, data is lost on restart")
		repos = memoryRepositories()
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, clientOpts...)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		repos = firestoreRepositories(firestoreClient, cfg.TxMaxAttempts)
	}

	var images usecase.ImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, clientOpts...)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		images = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET is not set, review image uploads are disabled")
	}

	cacheStore := cache.New(cfg.CacheTTL)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)
	limiter.StartCleanupRoutine(ctx.Done())

	savedListUseCase := usecase.NewSavedListUseCase(repos.savedLists, repos.products, cacheStore, cfg.MaxSavedLists, cfg.CacheTTL)
	cartUseCase := usecase.NewCartUseCase(repos.carts, repos.products)
	productUseCase := usecase.NewProductUseCase(repos.products, cacheStore, cfg.CacheTTL)
	addressUseCase := usecase.NewAddressUseCase(repos.addresses, cfg.MaxAddresses)
	reviewUseCase := usecase.NewReviewUseCase(repos.reviews, images, cacheStore)
	orderUseCase := usecase.NewOrderUseCase(
		repos.orders,
		repos.carts,
		repos.products,
		repos.addresses,
		mailer.New(cfg.SendGridAPIKey, cfg.MailFrom),
		cacheStore,
		usecase.Pricing{
			ShippingFlatFee:       cfg.ShippingFlatFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			Currency:              cfg.Currency,
		},
	)

	e := echo.New()

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.ErrorHandler

	guests := apimiddleware.NewGuestMiddleware(cfg.GuestCookieName, cfg.GuestCookieTTL, cfg.IsProduction())

	router.Setup(e, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.StoreDriver),
		Product:   handler.NewProductHandler(productUseCase),
		Review:    handler.NewReviewHandler(reviewUseCase),
		SavedList: handler.NewSavedListHandler(savedListUseCase),
		Cart:      handler.NewCartHandler(cartUseCase, guests),
		Address:   handler.NewAddressHandler(addressUseCase),
		Order:     handler.NewOrderHandler(orderUseCase),
	}, router.Middlewares{
		Auth:      apimiddleware.NewAuthMiddleware(firebase.NewFirebaseAuthClient(authClient)),
		Guest:     guests,
		RateLimit: apimiddleware.NewRateLimitMiddleware(limiter),
	})

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
