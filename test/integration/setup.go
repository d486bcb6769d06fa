package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/voice/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/voice/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/voice/internal/core/ports"
	"github.com/vncsmyrnk/voice/internal/core/services"
)

const jwtSecret = "test-secret"

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Registry    *services.SessionRegistry
	DBContainer testcontainers.Container

	// sessionIDs pins each access token to one browser session across calls.
	sessionIDs map[string]string
}

// MockVerifier accepts tokens of the form "valid:<email>".
type MockVerifier struct{}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	email, ok := strings.CutPrefix(token, "valid:")
	if !ok {
		return nil, assert.AnError
	}
	return &ports.TokenPayload{Email: email, Name: "Test " + email}, nil
}

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (stubProvider) Exchange(ctx context.Context, code string) (string, error) {
	return "valid:" + code, nil
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupDB(t *testing.T) (*sql.DB, testcontainers.Container) {
	t.Helper()

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	require.NoError(t, applyMigrations(db))
	return db, dbContainer
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	db, dbContainer := setupDB(t)

	userRepo := repo.NewUserRepository(db)
	authRepo := repo.NewRefreshTokenRepository(db)
	voteRepo := repo.NewVoteRepository(db)
	tallySvc := services.NewTallyService(repo.NewTallyRepository(db))

	authSvc := services.NewAuthService(userRepo, authRepo, &MockVerifier{}, stubProvider{}, jwtSecret, "client-id")
	registry := services.NewSessionRegistry(repo.NewAllowListRepository(db), voteRepo, tallySvc, stubProvider{})

	cookies := handler.CookieOptions{SameSite: http.SameSiteLaxMode}
	router := handler.NewHandler(handler.Handlers{
		Session: handler.NewSessionMiddleware(registry, authSvc, cookies),
		Auth:    handler.NewAuthHandler(authSvc, "https://example.com/redirect", cookies),
		Poll:    handler.NewPollHandler(services.NewPollService("Integration poll", nil)),
		User:    handler.NewUserHandler(),
		Ballot:  handler.NewBallotHandler(),
		Results: handler.NewResultsHandler(tallySvc),
		Admin:   handler.NewAdminHandler(services.NewAdminService(voteRepo), "Asia/Bangkok"),
		Health:  handler.NewHealthHandler(db),
	}, []string{"*"})

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Registry:    registry,
		DBContainer: dbContainer,
		sessionIDs:  make(map[string]string),
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.Registry.Shutdown()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func allowEmail(t *testing.T, db *sql.DB, email, fullName string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO allowed_emails (email, full_name) VALUES ($1, $2)", email, fullName)
	require.NoError(t, err)
}

func createUser(t *testing.T, db *sql.DB, email string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, "User "+email)
	require.NoError(t, err)
	return userID
}

func createUserAndToken(t *testing.T, db *sql.DB, email string) string {
	t.Helper()

	userID := createUser(t, db, email)
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signedToken
}
