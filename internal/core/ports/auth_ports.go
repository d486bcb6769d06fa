package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) (int64, error)
}

type TokenPayload struct {
	Email   string
	Name    string
	Picture string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string, clientID string) (*TokenPayload, error)
}

// FederatedProvider drives the browser side of the third-party sign-in.
type FederatedProvider interface {
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the provider's ID token.
	Exchange(ctx context.Context, code string) (string, error)
}

type AuthService interface {
	LoginWithGoogle(ctx context.Context, googleToken string) (string, string, error) // returns access_token, refresh_token, error
	ExchangeCode(ctx context.Context, code string) (string, string, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseAccessToken(token string) (*domain.Identity, error)
}
