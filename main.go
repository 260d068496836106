package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/blobstore"
	"github.com/vjbravo123/portfolio-cms/internal/config"
	"github.com/vjbravo123/portfolio-cms/internal/handlers"
	appmiddleware "github.com/vjbravo123/portfolio-cms/internal/middleware"
	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/services"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
	"github.com/vjbravo123/portfolio-cms/internal/storage/postgres"
)

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("schema setup failed")
	}

	var images blobstore.ObjectStore
	if cfg.AWSBucket != "" {
		s3store, err := blobstore.NewS3Store(cfg.AWSBucket, cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Fatal("s3 setup failed")
		}
		images = s3store
	} else {
		log.Warn("AWS_BUCKET_NAME not set, cover uploads stay in process memory")
		images = blobstore.NewMemory()
	}

	blogService := services.NewBlogService(store, images, log)
	userService := services.NewUserService(store)
	dashboardService := services.NewDashboardService(store)

	seedAdmin(ctx, store, userService, cfg, log)

	postsHandler := handlers.NewPostsHandler(blogService, log)
	usersHandler := handlers.NewUsersHandler(userService, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, log)
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		// 5 login attempts per minute per IP
		loginLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
		r.With(loginLimiter.Limit).Post("/login", authHandler.Login)

		// 30 requests per minute per IP on the public reads
		publicLimiter := appmiddleware.NewRateLimiter(30, time.Minute)
		r.Group(func(r chi.Router) {
			r.Use(publicLimiter.Limit)
			r.Get("/posts", postsHandler.Recent)
			r.Get("/posts/featured", postsHandler.Featured)
			r.Get("/categories", postsHandler.Categories)
			r.Get("/post/{slug}", postsHandler.BySlug)
			r.Post("/posts/{id}/like", postsHandler.Like)
			r.Post("/posts/{id}/view", postsHandler.View)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmiddleware.JWTAuth(cfg.JWTSecret))
			r.Use(appmiddleware.RequireRole(models.RoleAuthor, models.RoleAdmin))

			r.Get("/posts", postsHandler.List)
			r.Post("/posts", postsHandler.Create)
			r.Get("/posts/{id}", postsHandler.Get)
			r.Put("/posts/{id}", postsHandler.Update)
			r.Delete("/posts/{id}", postsHandler.Delete)

			r.Get("/dashboard/overview", dashboardHandler.Overview)
			r.Get("/dashboard/recent", dashboardHandler.Recent)
			r.Get("/dashboard/chart", dashboardHandler.Chart)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(models.RoleAdmin))
				r.Get("/users", usersHandler.List)
				r.Post("/users", usersHandler.Create)
				r.Put("/users/{id}", usersHandler.Update)
				r.Delete("/users/{id}", usersHandler.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

// seedAdmin creates the configured admin account when the users table is
// empty, so a fresh deployment has a way to log in.
func seedAdmin(ctx context.Context, store storage.Store, users *services.UserService, cfg config.Config, log *logrus.Entry) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	if _, err := store.FirstUser(ctx); !errors.Is(err, storage.ErrNotFound) {
		return
	}
	_, err := users.CreateUser(ctx, services.UserInput{
		Name:     "Admin",
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	})
	if err != nil {
		log.WithError(err).Warn("admin seed failed")
		return
	}
	log.WithField("email", cfg.AdminEmail).Info("seeded admin account")
}
