package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/voice/internal/core/ports"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// Provider runs the authorization-code flow against Google.
type Provider struct {
	config *oauth2.Config
}

func NewProvider(clientID, clientSecret, redirectURL string) ports.FederatedProvider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *Provider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("id_token missing from token response")
	}
	return idToken, nil
}
