package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrConfiguration = fmt.Errorf("spotify client id is not configured")

	// Authentication errors
	ErrLoginFailed           = fmt.Errorf("login failed")
	ErrMissingVerifier       = fmt.Errorf("code verifier not found")
	ErrInvalidVerifierLength = fmt.Errorf("code verifier length must be between 43 and 128")
	ErrStateMismatch         = fmt.Errorf("authorization state mismatch")
	ErrAuthorizationDenied   = fmt.Errorf("authorization denied")
	ErrTokenExchange         = fmt.Errorf("token exchange failed")
	ErrNotAuthenticated      = fmt.Errorf("not authenticated")
	ErrSessionExpired        = fmt.Errorf("session expired")
	ErrTimeout               = fmt.Errorf("operation timed out")

	// API and data errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrEmptyResult        = fmt.Errorf("no results")
	ErrTooManySeeds       = fmt.Errorf("too many recommendation seeds")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
