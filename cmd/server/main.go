package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/kit-rental/internal/booking"
	"github.com/iliyamo/kit-rental/internal/catalog"
	"github.com/iliyamo/kit-rental/internal/config"
	"github.com/iliyamo/kit-rental/internal/database"
	"github.com/iliyamo/kit-rental/internal/handler"
	"github.com/iliyamo/kit-rental/internal/idgen"
	"github.com/iliyamo/kit-rental/internal/logging"
	"github.com/iliyamo/kit-rental/internal/model"
	"github.com/iliyamo/kit-rental/internal/payment"
	"github.com/iliyamo/kit-rental/internal/pricing"
	"github.com/iliyamo/kit-rental/internal/queue"
	"github.com/iliyamo/kit-rental/internal/repository"
	"github.com/iliyamo/kit-rental/internal/repository/badgerstore"
	"github.com/iliyamo/kit-rental/internal/repository/memory"
	"github.com/iliyamo/kit-rental/internal/router"
	"github.com/iliyamo/kit-rental/internal/service"
	"github.com/iliyamo/kit-rental/internal/session"
)

// stores is the system of record selected by STORAGE_DRIVER.
type stores struct {
	bookings booking.Repository
	users    service.UserRepository
	close    func() error
}

func openStores(ctx context.Context, cfg config.Config, logger *logrus.Logger) (stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return stores{}, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, err
		}
		return stores{bookings: repository.NewBookingRepo(db), users: repository.NewUserRepo(db), close: db.Close}, nil
	case config.DriverBadger:
		st, err := badgerstore.Open(cfg.Storage.BadgerDir, logger)
		if err != nil {
			return stores{}, err
		}
		return stores{bookings: st.Bookings(), users: st.Users(), close: st.Close}, nil
	default:
		logger.Warn("using in-memory storage; bookings are lost on restart")
		return stores{bookings: memory.NewBookingRepo(), users: memory.NewUserRepo(), close: func() error { return nil }}, nil
	}
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logger := logging.New(cfg.Env)

	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		logger.WithError(err).Fatalf("invalid APP_TIMEZONE %q", cfg.Location)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).WithField("driver", cfg.Storage.Driver).Fatal("failed to open storage")
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	rdb := config.NewRedisClient()
	var drafts session.Store = session.NewMemoryStore(cfg.Booking.DraftTTL)
	if rdb != nil {
		drafts = session.NewRedisStore(rdb, "draft", cfg.Booking.DraftTTL)
		defer rdb.Close()
	} else {
		logger.Warn("redis unavailable; drafts kept in memory, cache and rate limit disabled")
	}

	ids, err := idgen.New(cfg.Booking.IDStrategy, cfg.Booking.IDPrefix)
	if err != nil {
		logger.WithError(err).Fatal("invalid booking id configuration")
	}

	opts := []booking.Option{booking.WithLogger(logger)}
	if cfg.Queue.NotifyEnabled {
		opts = append(opts, booking.WithNotifier(service.NewQueueNotifier(cfg.Queue.URL, logger)))

		consumer := queue.NewConsumer(cfg.Queue.URL, logger)
		consumer.LogDir = cfg.Queue.LogDir
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("notification consumer stopped")
			}
		}()
	}
	mgr := booking.NewManager(st.bookings, ids, nil, opts...)

	cat := catalog.Default()
	rule := pricing.LoyaltyRule{
		Threshold:         cfg.Booking.LoyaltyThreshold,
		Discount:          model.Rupees(int64(cfg.Booking.LoyaltyDiscount)),
		PointsCost:        cfg.Booking.LoyaltyThreshold,
		DecrementOnRedeem: cfg.Booking.DecrementOnRedeem,
	}

	auth := service.NewAuthService(st.users, cfg.BcryptCost, nil, logger)
	checkout := service.NewCheckoutService(service.CheckoutDeps{
		Catalog:  cat,
		Drafts:   drafts,
		Bookings: mgr,
		Users:    st.users,
		Gateway:  payment.NewMockGateway(cfg.Booking.PaymentDelay),
		Loyalty:  rule,
		Location: loc,
		Logger:   logger,
	})

	if err := auth.EnsureAdmin(ctx, service.AdminSeed{Email: cfg.Booking.AdminEmail, Password: cfg.Booking.AdminPassword}); err != nil {
		logger.WithError(err).Fatal("failed to seed admin user")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(auth, checkout, cfg.JWTSecret, cfg.AccessTTLMin),
		Catalog:  handler.NewCatalogHandler(cat, checkout),
		Draft:    handler.NewDraftHandler(checkout),
		Checkout: handler.NewCheckoutHandler(checkout, mgr),
		Admin:    handler.NewAdminHandler(mgr),
	}, router.Options{
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: cfg.Env == "prod",
		Cache:         config.LoadCacheConfig(),
		RateLimit:     config.LoadRateLimitConfig(),
		Redis:         rdb,
		Logger:        logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "storage": cfg.Storage.Driver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	mgr.Wait()
}
