package auth

import "context"

// AuthService defines the authentication surface: password login, token
// rotation and the optional Google OAuth flow.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	// GoogleLoginURL returns the redirect URL and the state it embeds, so
	// the handler can pin the state in a cookie for the callback check.
	GoogleLoginURL(ctx context.Context, userAgent string) (url string, state string, err error)
	// GoogleCallback exchanges the OAuth code for tokens of a known user.
	GoogleCallback(ctx context.Context, code string) (TokenResponse, error)
}
