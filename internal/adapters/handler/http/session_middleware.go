package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
	"github.com/vncsmyrnk/voice/internal/core/services"
)

type contextKey string

const sessionKey contextKey = "session"

const (
	sessionCookie     = "sid"
	accessTokenCookie = "access_token"
)

// SessionMiddleware attaches the browser session to the request and reports the signed-in
// identity to its gate.
type SessionMiddleware struct {
	registry    *services.SessionRegistry
	authService ports.AuthService
	cookies     CookieOptions
}

func NewSessionMiddleware(registry *services.SessionRegistry, authService ports.AuthService, cookies CookieOptions) *SessionMiddleware {
	return &SessionMiddleware{
		registry:    registry,
		authService: authService,
		cookies:     cookies,
	}
}

// WithSession resolves the sid cookie to a registry session, issuing a new sid when needed.
func (m *SessionMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				sid = cookie.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, m.cookies.cookie(sessionCookie, sid, 0))
		}

		session := m.registry.Get(sid)
		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity reads the access token and passes the identity, or its absence, to the gate.
// An expired token is rejected without touching the gate so the client can refresh first.
func (m *SessionMiddleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFrom(r)
		if !ok {
			writeError(w, http.StatusInternalServerError, "missing session")
			return
		}

		var identity *domain.Identity
		if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
			identity, err = m.authService.ParseAccessToken(cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrSessionExpired.Error())
				return
			}
		}

		session.Gate.Observe(r.Context(), identity)
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) (*services.Session, bool) {
	session, ok := r.Context().Value(sessionKey).(*services.Session)
	return session, ok && session != nil
}

// requireIdentity returns the signed-in identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*services.Session, *domain.Identity, bool) {
	session, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "missing session")
		return nil, nil, false
	}
	identity := session.Gate.Status().Identity
	if identity == nil {
		writeError(w, http.StatusUnauthorized, domain.ErrNotSignedIn.Error())
		return nil, nil, false
	}
	return session, identity, true
}
