package http

import (
	"net/http"
	"strings"
)

type CookieOptions struct {
	Domain   string
	SameSite http.SameSite
	Secure   bool
}

// ParseSameSite accepts lax, strict or none. Anything else falls back to lax.
func ParseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (o CookieOptions) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
		MaxAge:   maxAge,
	}
}

func (o CookieOptions) expire(w http.ResponseWriter, names ...string) {
	for _, name := range names {
		http.SetCookie(w, o.cookie(name, "", -1))
	}
}
