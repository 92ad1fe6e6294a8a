package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonyadjei/devcamper-api/internal/auth"
	"github.com/tonyadjei/devcamper-api/internal/bootcamps"
	"github.com/tonyadjei/devcamper-api/internal/cache"
	"github.com/tonyadjei/devcamper-api/internal/config"
	"github.com/tonyadjei/devcamper-api/internal/courses"
	"github.com/tonyadjei/devcamper-api/internal/db"
	"github.com/tonyadjei/devcamper-api/internal/geocode"
	"github.com/tonyadjei/devcamper-api/internal/metrics"
	"github.com/tonyadjei/devcamper-api/internal/middleware"
	"github.com/tonyadjei/devcamper-api/internal/notifications"
	"github.com/tonyadjei/devcamper-api/internal/reviews"
	"github.com/tonyadjei/devcamper-api/internal/transport"
	"github.com/tonyadjei/devcamper-api/internal/uploads"
	"github.com/tonyadjei/devcamper-api/internal/users"
	"github.com/tonyadjei/devcamper-api/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	jwtManager := &auth.Manager{
		Secret: []byte(cfg.JWTSecret),
		TTL:    time.Duration(cfg.JWTExpireMinutes) * time.Minute,
		Issuer: "devcamper-api",
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	geocoder := geocode.NewCached(geocode.NewMapQuest(cfg.GeocoderURL, cfg.GeocoderAPIKey), cacheStore)
	val := validation.New()
	photoStore := &uploads.Store{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes}
	cookieTTL := time.Duration(cfg.CookieExpireDays) * 24 * time.Hour

	usersRepo := users.NewRepository(cols.Users)
	authService := users.NewAuthService(usersRepo, jwtManager, mailer, logger)
	authHandler := users.NewAuthHandler(authService, val, logger, cfg.PublicURL, cookieTTL, cfg.CookieSecure)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(usersService, val, logger)

	bootcampsRepo := bootcamps.NewRepository(cols.Bootcamps, cols.Courses, cols.Reviews)
	bootcampsService := bootcamps.NewService(bootcampsRepo, geocoder, logger)
	bootcampsHandler := bootcamps.NewHandler(bootcampsService, photoStore, val, logger)

	coursesRepo := courses.NewRepository(cols.Courses, cols.Bootcamps)
	coursesService := courses.NewService(coursesRepo, bootcampsRepo, logger)
	coursesHandler := courses.NewHandler(coursesService, val, logger)

	reviewsRepo := reviews.NewRepository(cols.Reviews, cols.Bootcamps)
	reviewsService := reviews.NewService(reviewsRepo, bootcampsRepo, logger)
	reviewsHandler := reviews.NewHandler(reviewsService, val, logger)

	lookup := func(ctx context.Context, id string) (middleware.Principal, error) {
		user, err := usersRepo.GetByID(ctx, id)
		if err != nil {
			return middleware.Principal{}, err
		}
		return middleware.Principal{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
	}
	protect := middleware.Protect(jwtManager, lookup)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.With(authLimiter.Middleware).Post("/register", authHandler.Register)
			ar.With(authLimiter.Middleware).Post("/login", authHandler.Login)
			ar.Get("/logout", authHandler.Logout)
			ar.With(authLimiter.Middleware).Post("/forgotpassword", authHandler.ForgotPassword)
			ar.Put("/resetpassword/{token}", authHandler.ResetPassword)

			ar.Group(func(protected chi.Router) {
				protected.Use(protect)
				protected.Get("/me", authHandler.Me)
				protected.Put("/updatedetails", authHandler.UpdateDetails)
				protected.Put("/updatepassword", authHandler.UpdatePassword)
			})
		})

		api.Route("/bootcamps", func(br chi.Router) {
			br.Get("/", bootcampsHandler.List)
			br.Get("/radius/{zipcode}/{distance}", bootcampsHandler.Radius)
			br.Get("/{id}", bootcampsHandler.Get)
			br.Get("/{bootcampId}/courses", coursesHandler.List)
			br.Get("/{bootcampId}/reviews", reviewsHandler.List)

			br.Group(func(protected chi.Router) {
				protected.Use(protect, middleware.Authorize(users.RolePublisher, users.RoleAdmin))
				protected.Post("/", bootcampsHandler.Create)
				protected.Put("/{id}", bootcampsHandler.Update)
				protected.Delete("/{id}", bootcampsHandler.Delete)
				protected.Put("/{id}/photo", bootcampsHandler.Photo)
				protected.Post("/{bootcampId}/courses", coursesHandler.Create)
			})

			br.With(protect, middleware.Authorize(users.RoleUser, users.RoleAdmin)).
				Post("/{bootcampId}/reviews", reviewsHandler.Create)
		})

		api.Route("/courses", func(cr chi.Router) {
			cr.Get("/", coursesHandler.List)
			cr.Get("/{id}", coursesHandler.Get)

			cr.Group(func(protected chi.Router) {
				protected.Use(protect, middleware.Authorize(users.RolePublisher, users.RoleAdmin))
				protected.Put("/{id}", coursesHandler.Update)
				protected.Delete("/{id}", coursesHandler.Delete)
			})
		})

		api.Route("/reviews", func(rr chi.Router) {
			rr.Get("/", reviewsHandler.List)
			rr.Get("/{id}", reviewsHandler.Get)

			rr.Group(func(protected chi.Router) {
				protected.Use(protect, middleware.Authorize(users.RoleUser, users.RoleAdmin))
				protected.Put("/{id}", reviewsHandler.Update)
				protected.Delete("/{id}", reviewsHandler.Delete)
			})
		})

		api.Route("/users", func(ur chi.Router) {
			ur.Use(protect, middleware.Authorize(users.RoleAdmin))
			ur.Get("/", usersHandler.List)
			ur.Post("/", usersHandler.Create)
			ur.Get("/{id}", usersHandler.Get)
			ur.Put("/{id}", usersHandler.Update)
			ur.Delete("/{id}", usersHandler.Delete)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
