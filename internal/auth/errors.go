package auth

import (
	"fmt"

	"github.com/desertthunder/statify/internal/shared"
)

// ConfigurationError reports a missing or placeholder client id. Login cannot start until it is fixed.
type ConfigurationError struct {
	ClientID string
}

func (e *ConfigurationError) Error() string {
	if e.ClientID == "" {
		return "spotify client id is empty: set credentials.spotify.client_id or SPOTIFY_CLIENT_ID"
	}
	return fmt.Sprintf("spotify client id %q is a placeholder: set credentials.spotify.client_id or SPOTIFY_CLIENT_ID", e.ClientID)
}

func (e *ConfigurationError) Unwrap() error { return shared.ErrConfiguration }

// TokenExchangeError is a non-success answer from the token endpoint.
type TokenExchangeError struct {
	Status      int
	Code        string
	Description string
}

func (e *TokenExchangeError) Error() string {
	switch {
	case e.Description != "":
		return "token exchange failed: " + e.Description
	case e.Code != "":
		return "token exchange failed: " + e.Code
	default:
		return fmt.Sprintf("token exchange failed with status %d", e.Status)
	}
}

func (e *TokenExchangeError) Unwrap() error { return shared.ErrTokenExchange }

// AuthorizationDeniedError is returned when the provider redirects back with an error instead of a code,
// most commonly because the user declined consent.
type AuthorizationDeniedError struct {
	Reason      string
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization denied: %s (%s)", e.Reason, e.Description)
	}
	return "authorization denied: " + e.Reason
}

func (e *AuthorizationDeniedError) Unwrap() error { return shared.ErrAuthorizationDenied }
