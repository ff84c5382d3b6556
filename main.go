package main

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/imalexduke/outline/authenticator"
	"github.com/imalexduke/outline/controllers"
	"github.com/imalexduke/outline/database"
	"github.com/imalexduke/outline/middleware"
	"github.com/imalexduke/outline/repositories"
	"github.com/imalexduke/outline/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger, err := zap.NewProduction()
	if os.Getenv("DEBUG") == "true" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "outline.db"
	}
	if err := database.InitializeDatabase(dbPath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()

	// Get database connection
	db := database.GetDB()

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Initialize OIDC provider
	cfg, err := authenticator.ConfigFromEnv()
	if err != nil {
		logger.Fatal("failed to load OIDC configuration", zap.Error(err))
	}
	auth, err := authenticator.NewOIDCProvider(cfg)
	if err != nil {
		logger.Fatal("failed to initialize OIDC provider", zap.Error(err))
	}

	// Initialize services
	srvs := services.NewServices(db, repos, auth, cfg, logger)

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs, logger)

	// Set up router
	r, err := setupRouter(ctrl, auth, srvs, repos, logger)
	if err != nil {
		logger.Fatal("failed to setup router", zap.Error(err))
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting",
		zap.String("port", port),
		zap.String("database", dbPath),
	)

	logger.Fatal("server stopped", zap.Error(http.ListenAndServe(":"+port, r)))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, auth authenticator.Provider, srvs *services.Services, repos *repositories.Repositories, logger *zap.Logger) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second)) // 60 second timeout for OAuth callbacks
	r.Use(chimiddleware.Compress(5))

	// Determine if we should use secure cookies (HTTPS)
	useSecureCookies := os.Getenv("USE_HTTPS") == "true"

	// Session middleware
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "outline_session",
		// The cookie must cover tenant subdomains too: logins start on a
		// tenant host but the provider calls back on the apex host.
		Domain:      cookieDomain(),
		Secure:      useSecureCookies,
		Gclifetime:  3600, // Session lifetime in seconds
		Maxlifetime: 3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// Resolve the tenant from the request host
	r.Use(middleware.Tenant(srvs.Team, baseHost(), logger))

	// Record mutating requests
	r.Use(middleware.AuditLogger(repos.Audit, logger))

	// PUBLIC ROUTES (no authentication required)
	r.Get("/auth/oidc", ctrl.Auth.Login(auth))
	r.Get("/auth/oidc.callback", ctrl.Auth.Callback(auth))
	r.Get("/logout", ctrl.Auth.Logout)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// The team count doubles as a database reachability check
		teams, err := srvs.Team.GetTeamCount(r.Context())
		if err != nil {
			logger.Error("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status": "unhealthy"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "outline", "teams": %d}`, teams)
	})

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/me", ctrl.User.Me)
	})

	return r, nil
}

// cookieDomain returns the apex host without its port, the domain the
// session cookie is scoped to.
func cookieDomain() string {
	host := baseHost()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// baseHost extracts the apex host from the configured public URL
func baseHost() string {
	publicURL := os.Getenv("URL")
	if publicURL == "" {
		return ""
	}
	u, err := url.Parse(publicURL)
	if err != nil {
		return ""
	}
	return u.Host
}
