package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/voice/internal/adapters/handler/http"
	"github.com/vncsmyrnk/voice/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/voice/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/voice/internal/config"
	"github.com/vncsmyrnk/voice/internal/core/services"
)

const sweepInterval = time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DB.ConnString())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Initialize Repositories
	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewRefreshTokenRepository(db)
	allowListRepo := postgres.NewAllowListRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	tallyRepo := postgres.NewTallyRepository(db)

	// Initialize Services
	provider := google.NewProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)
	authService := services.NewAuthService(userRepo, authRepo, google.NewVerifier(), provider, cfg.JWTSecret, cfg.GoogleClientID)
	tallyService := services.NewTallyService(tallyRepo)
	registry := services.NewSessionRegistry(allowListRepo, voteRepo, tallyService, provider)

	cookies := http.CookieOptions{
		Domain:   cfg.CookieDomain,
		SameSite: http.ParseSameSite(cfg.CookieSameSite),
		Secure:   cfg.CookieSecure,
	}
	handler := http.NewHandler(http.Handlers{
		Session: http.NewSessionMiddleware(registry, authService, cookies),
		Auth:    http.NewAuthHandler(authService, cfg.FrontendURL, cookies),
		Poll:    http.NewPollHandler(services.NewPollService(cfg.PollTitle, cfg.PollClosesAt)),
		User:    http.NewUserHandler(),
		Ballot:  http.NewBallotHandler(),
		Results: http.NewResultsHandler(tallyService),
		Admin:   http.NewAdminHandler(services.NewAdminService(voteRepo), cfg.Timezone),
		Health:  http.NewHealthHandler(db),
	}, cfg.CORSOrigins)

	server := &stdhttp.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessionsCtx, stopSessions := context.WithCancel(context.Background())
	defer stopSessions()
	sessionsDone := make(chan struct{})
	go func() {
		defer close(sessionsDone)
		registry.Run(sessionsCtx, sweepInterval, cfg.SessionIdleTimeout)
	}()

	go func() {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := shutdown(shutdownCtx, server, stopSessions, sessionsDone); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdown drains in-flight requests before the session registry closes the gates they use.
func shutdown(ctx context.Context, server shutdowner, stopSessions context.CancelFunc, sessionsDone <-chan struct{}) error {
	err := server.Shutdown(ctx)
	stopSessions()
	<-sessionsDone
	return err
}
