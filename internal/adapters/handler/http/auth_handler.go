package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

const (
	refreshTokenCookie = "refresh_token"
	stateCookie        = "oauth_state"
	returnToCookie     = "oauth_return_to"
	googleCSRFCookie   = "g_csrf_token"
)

type AuthHandler struct {
	authService ports.AuthService
	redirectURL string
	cookies     CookieOptions
}

func NewAuthHandler(authService ports.AuthService, redirectURL string, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		redirectURL: redirectURL,
		cookies:     cookies,
	}
}

// Login starts the provider redirect for the current browser session. The gate is untouched
// until the provider reports back.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "missing session")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, h.cookies.cookie(stateCookie, state, 10*60))
	if returnTo := r.URL.Query().Get("return_to"); isLocalPath(returnTo) {
		http.SetCookie(w, h.cookies.cookie(returnToCookie, returnTo, 10*60))
	}

	http.Redirect(w, r, session.Gate.SignIn(state), http.StatusFound)
}

// CodeCallback completes the authorization-code flow.
func (h *AuthHandler) CodeCallback(w http.ResponseWriter, r *http.Request) {
	if msg := r.URL.Query().Get("error"); msg != "" {
		writeError(w, http.StatusUnauthorized, "sign-in failed: "+msg)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	accessToken, refreshToken, err := h.authService.ExchangeCode(r.Context(), code)
	if err != nil {
		slog.Warn("sign-in failed", "error", err)
		writeError(w, http.StatusUnauthorized, "authentication failed: "+err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.cookies.expire(w, stateCookie)
	http.Redirect(w, r, h.returnTo(w, r), http.StatusSeeOther)
}

// GoogleCallback accepts the credential posted by Google Identity Services.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	credential := r.FormValue("credential")
	if credential == "" {
		writeError(w, http.StatusBadRequest, "missing credential")
		return
	}

	if csrf, err := r.Cookie(googleCSRFCookie); err == nil {
		if csrf.Value == "" || csrf.Value != r.FormValue(googleCSRFCookie) {
			writeError(w, http.StatusBadRequest, "failed to verify double submit cookie")
			return
		}
	}

	accessToken, refreshToken, err := h.authService.LoginWithGoogle(r.Context(), credential)
	if err != nil {
		slog.Warn("sign-in failed", "error", err)
		writeError(w, http.StatusUnauthorized, "authentication failed: "+err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	http.Redirect(w, r, h.returnTo(w, r), http.StatusSeeOther)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshAccessToken(r.Context(), cookie.Value)
	if err != nil {
		h.cookies.expire(w, accessTokenCookie, refreshTokenCookie)
		writeError(w, http.StatusUnauthorized, "refresh failed: "+err.Error())
		return
	}

	http.SetCookie(w, h.cookies.cookie(accessTokenCookie, accessToken, 15*60))

	// If refresh token was rotated, update it too
	if refreshToken != "" && refreshToken != cookie.Value {
		http.SetCookie(w, h.cookies.cookie(refreshTokenCookie, refreshToken, 7*24*60*60))
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout revokes the refresh token and resets the session gate.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			slog.Warn("failed to revoke refresh token", "error", err)
		}
	}

	if session, ok := sessionFrom(r); ok {
		session.Gate.SignOut()
	}

	h.cookies.expire(w, accessTokenCookie, refreshTokenCookie)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.cookies.cookie(accessTokenCookie, accessToken, 15*60))
	http.SetCookie(w, h.cookies.cookie(refreshTokenCookie, refreshToken, 7*24*60*60))
}

func (h *AuthHandler) returnTo(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(returnToCookie)
	if err != nil || !isLocalPath(cookie.Value) {
		return h.redirectURL
	}
	h.cookies.expire(w, returnToCookie)
	return strings.TrimRight(h.redirectURL, "/") + cookie.Value
}

// isLocalPath rejects absolute and protocol-relative URLs so return_to cannot leave the site.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
