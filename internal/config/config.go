package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (d Database) ConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type Config struct {
	Port int
	DB   Database

	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	FrontendURL        string

	CookieDomain   string
	CookieSameSite string
	CookieSecure   bool
	CORSOrigins    []string

	PollTitle          string
	PollClosesAt       *time.Time
	Timezone           string
	SessionIdleTimeout time.Duration
}

// DatabaseFlags registers the POSTGRES_* settings on fs, defaulting to the environment.
func DatabaseFlags(fs *flag.FlagSet, db *Database) {
	fs.StringVar(&db.Host, "db-host", envOr("POSTGRES_HOST", "localhost"), "Database host")
	fs.StringVar(&db.Port, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&db.User, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&db.Password, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&db.Name, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
}

// Load parses args with environment variables as defaults. Flags win over the environment.
func Load(args []string) (Config, error) {
	var cfg Config
	var port, closesAt, idle, origins string

	fs := flag.NewFlagSet("voice", flag.ContinueOnError)
	fs.StringVar(&port, "port", envOr("PORT", "8080"), "HTTP port")
	DatabaseFlags(fs, &cfg.DB)

	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Access token signing secret (prefer env)")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", os.Getenv("GOOGLE_CLIENT_ID"), "Google OAuth client id")
	fs.StringVar(&cfg.GoogleClientSecret, "google-client-secret", os.Getenv("GOOGLE_CLIENT_SECRET"), "Google OAuth client secret (prefer env)")
	fs.StringVar(&cfg.OAuthRedirectURL, "oauth-redirect-url", envOr("OAUTH_REDIRECT_URL", "http://localhost:8080/oauth/callback"), "OAuth callback URL registered with Google")
	fs.StringVar(&cfg.FrontendURL, "frontend-url", envOr("FRONTEND_URL", "http://localhost:3000"), "Where the browser lands after sign-in")

	fs.StringVar(&cfg.CookieDomain, "cookie-domain", os.Getenv("COOKIE_DOMAIN"), "Cookie domain")
	fs.StringVar(&cfg.CookieSameSite, "cookie-samesite", envOr("COOKIE_SAMESITE", "lax"), "Cookie SameSite mode: lax, strict or none")
	fs.BoolVar(&cfg.CookieSecure, "cookie-secure", envOr("COOKIE_SECURE", "true") != "false", "Mark cookies Secure")
	fs.StringVar(&origins, "cors-origins", envOr("CORS_ORIGINS", "http://localhost:3000"), "Comma-separated allowed origins")

	fs.StringVar(&cfg.PollTitle, "poll-title", envOr("POLL_TITLE", "Vote for the new website theme"), "Poll title")
	fs.StringVar(&closesAt, "poll-closes-at", os.Getenv("POLL_CLOSES_AT"), "Poll closing time, RFC3339")
	fs.StringVar(&cfg.Timezone, "timezone", envOr("TIMEZONE", "Asia/Bangkok"), "Timezone of the admin listing")
	fs.StringVar(&idle, "session-idle-timeout", envOr("SESSION_IDLE_TIMEOUT", "30m"), "Idle time before a browser session is dropped")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return Config{}, fmt.Errorf("invalid port %q", port)
	}
	cfg.Port = p

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.GoogleClientID == "" {
		return Config{}, errors.New("GOOGLE_CLIENT_ID required")
	}
	if cfg.DB.Name == "" || cfg.DB.User == "" {
		return Config{}, errors.New("POSTGRES_DB and POSTGRES_USER required")
	}

	if closesAt != "" {
		t, err := time.Parse(time.RFC3339, closesAt)
		if err != nil {
			return Config{}, fmt.Errorf("invalid POLL_CLOSES_AT: %w", err)
		}
		cfg.PollClosesAt = &t
	}

	cfg.SessionIdleTimeout, err = time.ParseDuration(idle)
	if err != nil || cfg.SessionIdleTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT %q", idle)
	}

	cfg.CORSOrigins = splitOrigins(origins)
	return cfg, nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, p := range strings.Split(value, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
