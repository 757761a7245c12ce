package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/config"
	"github.com/username/tradejournal/src/database"
	"github.com/username/tradejournal/src/handlers"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/security"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

const sessionPurgeInterval = 15 * time.Minute

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Requested-With, Cookie, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag, X-Request-ID")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func purgeExpiredSessions(sessions services.SessionService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		n, err := sessions.PurgeExpired()
		if err != nil {
			logger.L.Error("Failed to purge expired sessions", "error", err)
			continue
		}
		if n > 0 {
			logger.L.Info("Purged expired sessions", "count", n)
		}
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Trading journal dashboard starting...")

	sealer, err := security.NewTokenSealer(config.Cfg.SessionSecret)
	if err != nil {
		logger.L.Error("SESSION_SECRET configuration invalid.", "error", err)
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations()

	api, err := apiclient.New(apiclient.Config{
		BaseURL:   config.Cfg.APIBaseURL,
		Timeout:   config.Cfg.APITimeout,
		RateLimit: config.Cfg.APIRateLimitRPS,
		Burst:     config.Cfg.APIRateBurst,
	})
	if err != nil {
		logger.L.Error("Failed to create Trading API client", "error", err)
		os.Exit(1)
	}

	sessionCache := cache.New(services.SessionCacheTTL, services.SessionCacheCleanup)
	dashboardCache := cache.New(config.Cfg.DashboardCacheTTL, 2*config.Cfg.DashboardCacheTTL)

	sessionService := services.NewSessionService(database.DB, api, sealer, sessionCache, config.Cfg.SessionExpiry)
	dashboardService := services.NewDashboardService(api, dashboardCache, config.Cfg.DashboardCacheTTL)
	tradeService := services.NewTradeService(database.DB, api, dashboardService, config.Cfg.MaxUploadSizeBytes)
	userService := services.NewUserService(api, dashboardService)
	assistantService := services.NewAssistantService(api)

	go purgeExpiredSessions(sessionService)

	csrf := handlers.NewCSRF(config.Cfg.CSRFAuthKey, config.Cfg.SecureCookies)
	authHandler := handlers.NewAuthHandler(sessionService, handlers.CookieConfig{
		Name:   config.Cfg.SessionCookieName,
		Secure: config.Cfg.SecureCookies,
	})
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	uploadHandler := handlers.NewUploadHandler(tradeService, config.Cfg.MaxUploadSizeBytes)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	accountHandler := handlers.NewAccountHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	spa := handlers.SPAHandler(config.Cfg.StaticDir)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS(config.Cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.DB.PingContext(r.Context()); err != nil {
			utils.SendJSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/csrf", csrf.GetCSRFToken)

		r.Group(func(r chi.Router) {
			r.Use(csrf.Middleware)
			r.Post("/auth/login", authHandler.LoginHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(csrf.Middleware)
			r.Use(authHandler.RequireSession)

			r.Post("/auth/logout", authHandler.LogoutHandler)
			r.Get("/auth/session", authHandler.SessionHandler)

			r.Get("/dashboard", dashboardHandler.HandleGetDashboard)

			r.Get("/trades", tradeHandler.HandleListTrades)
			r.Post("/trades", tradeHandler.HandleCreateTrade)
			r.Post("/trades/import", uploadHandler.HandleImport)
			r.Get("/trades/export.csv", uploadHandler.HandleExport)
			r.Put("/trades/{id}", tradeHandler.HandleUpdateTrade)
			r.Delete("/trades/{id}", tradeHandler.HandleDeleteTrade)
			r.Get("/view-state/trades", tradeHandler.HandleGetViewState)
			r.Put("/view-state/trades", tradeHandler.HandlePutViewState)

			r.Post("/ai/ask", assistantHandler.HandleAsk)

			r.Get("/me", accountHandler.HandleGetMe)
			r.Put("/profile", accountHandler.HandleUpdateProfile)
			r.Post("/profile/password", accountHandler.HandleChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(authHandler.AdminOnly)
				r.Get("/users", userHandler.HandleListUsers)
				r.Post("/users", userHandler.HandleCreateUser)
				r.Put("/users/{id}", userHandler.HandleUpdateUser)
			})
		})
	})

	// Dashboard pages: the frontend is served only to signed-in users.
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireSession)
		r.Handle("/", spa)
		r.Handle("/trades", spa)
		r.Handle("/ai", spa)
		r.Handle("/profile", spa)
		r.With(authHandler.AdminOnly).Handle("/users", spa)
	})
	r.Handle(handlers.SignInPath, spa)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Not found", Code: "not_found"}, http.StatusNotFound)
			return
		}
		spa.ServeHTTP(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr, "remoteAPI", config.Cfg.APIBaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
